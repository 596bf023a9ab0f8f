package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otcheredev/hms-console/internal/middleware"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	"github.com/otcheredev/hms-console/internal/services"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

type BillHandler struct {
	billingService *services.BillingService
}

func NewBillHandler(billingService *services.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	writePage(w, h.billingService.List(r.Context(), repository.BillQuery{}, pageParams(r)))
}

func (h *BillHandler) ByPatient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "patientId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, h.billingService.List(r.Context(), repository.BillQuery{PatientID: id}, pageParams(r)))
}

func (h *BillHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.PaymentStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		writeError(w, r, apperrors.NewValidationError("Invalid status", map[string]string{"status": "unknown payment status"}))
		return
	}
	writePage(w, h.billingService.List(r.Context(), repository.BillQuery{Status: status}, pageParams(r)))
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.billingService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BillHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	b, err := h.billingService.GetByNumber(r.Context(), chi.URLParam(r, "billNumber"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BillHandler) Unpaid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.billingService.Unpaid(r.Context()))
}

func (h *BillHandler) RevenueStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.billingService.RevenueStats(r.Context()))
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.BillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	b, err := h.billingService.Create(r.Context(), claims, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BillHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.billingService.RecordPayment(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

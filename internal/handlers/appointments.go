package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otcheredev/hms-console/internal/middleware"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	"github.com/otcheredev/hms-console/internal/services"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repository.AppointmentQuery{})
}

func (h *AppointmentHandler) ByDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "doctorId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.list(w, r, repository.AppointmentQuery{DoctorID: id})
}

func (h *AppointmentHandler) ByPatient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "patientId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.list(w, r, repository.AppointmentQuery{PatientID: id})
}

func (h *AppointmentHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.AppointmentStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		writeError(w, r, apperrors.NewValidationError("Invalid status", map[string]string{"status": "unknown appointment status"}))
		return
	}
	h.list(w, r, repository.AppointmentQuery{Status: status})
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request, q repository.AppointmentQuery) {
	writePage(w, h.appointmentService.List(r.Context(), q, pageParams(r)))
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.appointmentService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AppointmentHandler) Today(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.appointmentService.Today(r.Context(), 0))
}

func (h *AppointmentHandler) TodayByDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "doctorId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.appointmentService.Today(r.Context(), id))
}

func (h *AppointmentHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.Local)
	if err != nil {
		writeError(w, r, apperrors.NewValidationError("Invalid date", map[string]string{"date": "must be YYYY-MM-DD"}))
		return
	}
	writeJSON(w, http.StatusOK, h.appointmentService.OnDate(r.Context(), day, 0))
}

func (h *AppointmentHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req models.AppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	a, err := h.appointmentService.Schedule(r.Context(), claims, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.AppointmentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.appointmentService.UpdateStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

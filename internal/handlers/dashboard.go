package handlers

import (
	"net/http"

	"github.com/otcheredev/hms-console/internal/middleware"
	"github.com/otcheredev/hms-console/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboardService.Admin(r.Context()))
}

func (h *DashboardHandler) Doctor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "doctorId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.doctor(w, r, id)
}

// MyDoctor answers for the signed-in doctor
func (h *DashboardHandler) MyDoctor(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	h.doctor(w, r, claims.UserID)
}

func (h *DashboardHandler) doctor(w http.ResponseWriter, r *http.Request, id int64) {
	d, err := h.dashboardService.Doctor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DashboardHandler) Billing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboardService.Billing(r.Context()))
}

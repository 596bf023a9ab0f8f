package handlers

import (
	"net/http"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/services"
)

type RecordHandler struct {
	recordService *services.RecordService
}

func NewRecordHandler(recordService *services.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	writePage(w, h.recordService.List(r.Context(), 0, pageParams(r)))
}

func (h *RecordHandler) ByDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "doctorId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, h.recordService.List(r.Context(), id, pageParams(r)))
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.recordService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *RecordHandler) PatientHistory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "patientId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.recordService.PatientHistory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MedicalRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.recordService.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.MedicalRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.recordService.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

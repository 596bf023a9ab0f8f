package client

import (
	"context"
	"net/http"

	"github.com/otcheredev/hms-console/internal/models"
)

// MedicalRecordsAPI covers clinical notes
type MedicalRecordsAPI struct {
	c *Client
}

// List returns one page of records, optionally limited to one doctor
func (m *MedicalRecordsAPI) List(ctx context.Context, filter models.MedicalRecordFilter, page models.PageRequest) (*models.PagedResult[models.MedicalRecord], error) {
	if filter.DoctorID > 0 {
		return listPage[models.MedicalRecord](ctx, m.c, "medical-records", idPath("/medical-records/by-doctor/%d", filter.DoctorID), nil, page)
	}
	return listPage[models.MedicalRecord](ctx, m.c, "medical-records", "/medical-records", nil, page)
}

// Get fetches a record
func (m *MedicalRecordsAPI) Get(ctx context.Context, id int64) (*models.MedicalRecord, error) {
	return getOne[models.MedicalRecord](ctx, m.c, "medical-records", idPath("/medical-records/%d", id))
}

// PatientHistory lists every record for a patient
func (m *MedicalRecordsAPI) PatientHistory(ctx context.Context, patientID int64) ([]models.MedicalRecord, error) {
	return getList[models.MedicalRecord](ctx, m.c, "medical-records", idPath("/medical-records/patient/%d", patientID), nil)
}

// Create writes a record
func (m *MedicalRecordsAPI) Create(ctx context.Context, req models.MedicalRecordRequest) (*models.MedicalRecord, error) {
	return send[models.MedicalRecord](ctx, m.c, "medical-records", http.MethodPost, "/medical-records", req)
}

// Update replaces a record
func (m *MedicalRecordsAPI) Update(ctx context.Context, id int64, req models.MedicalRecordRequest) (*models.MedicalRecord, error) {
	return send[models.MedicalRecord](ctx, m.c, "medical-records", http.MethodPut, idPath("/medical-records/%d", id), req)
}

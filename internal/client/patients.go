package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/otcheredev/hms-console/internal/models"
)

// PatientsAPI covers patient profiles
type PatientsAPI struct {
	c *Client
}

// List returns one page of patients; a non-empty query switches to search
func (p *PatientsAPI) List(ctx context.Context, filter models.PatientFilter, page models.PageRequest) (*models.PagedResult[models.Patient], error) {
	if q := strings.TrimSpace(filter.Query); q != "" {
		return listPage[models.Patient](ctx, p.c, "patients", "/patients/search", url.Values{"query": {q}}, page)
	}
	return listPage[models.Patient](ctx, p.c, "patients", "/patients", nil, page)
}

// Get fetches a patient with recent appointments and records
func (p *PatientsAPI) Get(ctx context.Context, id int64) (*models.Patient, error) {
	return getOne[models.Patient](ctx, p.c, "patients", idPath("/patients/%d", id))
}

// GetByPatientID fetches a patient by the hospital patient code
func (p *PatientsAPI) GetByPatientID(ctx context.Context, patientID string) (*models.Patient, error) {
	return getOne[models.Patient](ctx, p.c, "patients", "/patients/by-patient-id/"+url.PathEscape(patientID))
}

// Create registers a patient
func (p *PatientsAPI) Create(ctx context.Context, req models.PatientRequest) (*models.Patient, error) {
	return send[models.Patient](ctx, p.c, "patients", http.MethodPost, "/patients", req)
}

// Update replaces a patient profile
func (p *PatientsAPI) Update(ctx context.Context, id int64, req models.PatientRequest) (*models.Patient, error) {
	return send[models.Patient](ctx, p.c, "patients", http.MethodPut, idPath("/patients/%d", id), req)
}

// Delete removes a patient
func (p *PatientsAPI) Delete(ctx context.Context, id int64) error {
	return p.c.do(ctx, call{resource: "patients", method: http.MethodDelete, path: idPath("/patients/%d", id)}, nil)
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
)

// CreatePatient stores a patient, assigning its id and hospital patient code
func (r *Repository) CreatePatient(ctx context.Context, p models.Patient) models.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p.ID = r.nextID("patient")
	p.PatientID = fmt.Sprintf("P%06d", p.ID)
	p.CreatedAt = now
	p.UpdatedAt = now
	p.RecentAppointments = nil
	p.MedicalRecords = nil
	stored := p
	r.patients[p.ID] = &stored
	return p
}

// SavePatient replaces an existing patient
func (r *Repository) SavePatient(ctx context.Context, p models.Patient) (models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[p.ID]
	if !ok {
		return models.Patient{}, ErrNotFound
	}
	p.PatientID = existing.PatientID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	p.RecentAppointments = nil
	p.MedicalRecords = nil
	stored := p
	r.patients[p.ID] = &stored
	return p, nil
}

// DeletePatient removes a patient
func (r *Repository) DeletePatient(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

// PatientByID finds a patient
func (r *Repository) PatientByID(ctx context.Context, id int64) (*models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

// PatientByCode finds a patient by hospital patient code
func (r *Repository) PatientByCode(ctx context.Context, code string) (*models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patients {
		if strings.EqualFold(p.PatientID, code) {
			out := *p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// PatientByPhone finds a patient by phone number
func (r *Repository) PatientByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patients {
		if p.Phone == phone {
			out := *p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func newestPatientFirst(a, b *models.Patient) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmpInt64(b.ID, a.ID)
}

// ListPatients returns patients newest first
func (r *Repository) ListPatients(ctx context.Context, page models.PageRequest) Page[models.Patient] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.patients, nil, newestPatientFirst, page)
}

// SearchPatients matches query against name, patient code and phone
func (r *Repository) SearchPatients(ctx context.Context, query string, page models.PageRequest) Page[models.Patient] {
	q := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.patients, func(p *models.Patient) bool {
		return strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) ||
			strings.Contains(strings.ToLower(p.PatientID), q) ||
			strings.Contains(p.Phone, q)
	}, newestPatientFirst, page)
}

// CountPatients returns the number of registered patients
func (r *Repository) CountPatients(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients)
}

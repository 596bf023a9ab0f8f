package repository

import (
	"context"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
)

func latestVisitFirst(a, b *models.MedicalRecord) int {
	if c := b.VisitDate.Compare(a.VisitDate); c != 0 {
		return c
	}
	return cmpInt64(b.ID, a.ID)
}

// CreateRecord stores a medical record and assigns its id
func (r *Repository) CreateRecord(ctx context.Context, m models.MedicalRecord) models.MedicalRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	m.ID = r.nextID("record")
	m.CreatedAt = now
	m.UpdatedAt = now
	stored := m
	r.records[m.ID] = &stored
	return m
}

// SaveRecord replaces an existing record
func (r *Repository) SaveRecord(ctx context.Context, m models.MedicalRecord) (models.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[m.ID]
	if !ok {
		return models.MedicalRecord{}, ErrNotFound
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now()
	stored := m
	r.records[m.ID] = &stored
	return m, nil
}

// RecordByID finds a record
func (r *Repository) RecordByID(ctx context.Context, id int64) (*models.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m
	return &out, nil
}

// ListRecords returns records, optionally for one doctor, latest visit first
func (r *Repository) ListRecords(ctx context.Context, doctorID int64, page models.PageRequest) Page[models.MedicalRecord] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keep func(*models.MedicalRecord) bool
	if doctorID > 0 {
		keep = func(m *models.MedicalRecord) bool { return m.Doctor.ID == doctorID }
	}
	return collect(r.records, keep, latestVisitFirst, page)
}

// RecordsForPatient returns a patient's full history, latest visit first
func (r *Repository) RecordsForPatient(ctx context.Context, patientID int64) []models.MedicalRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return all(r.records, func(m *models.MedicalRecord) bool { return m.Patient.ID == patientID }, latestVisitFirst)
}

// CountRecords counts records written by a doctor, or all records for doctorID 0
func (r *Repository) CountRecords(ctx context.Context, doctorID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return count(r.records, func(m *models.MedicalRecord) bool { return doctorID == 0 || m.Doctor.ID == doctorID })
}

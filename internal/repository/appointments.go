package repository

import (
	"context"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
)

// AppointmentQuery selects appointments; zero fields match everything
type AppointmentQuery struct {
	DoctorID  int64
	PatientID int64
	Status    models.AppointmentStatus
	From, To  time.Time
}

func (q AppointmentQuery) match(a *models.Appointment) bool {
	if q.DoctorID > 0 && a.Doctor.ID != q.DoctorID {
		return false
	}
	if q.PatientID > 0 && a.Patient.ID != q.PatientID {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if !q.From.IsZero() && a.AppointmentDate.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !a.AppointmentDate.Before(q.To) {
		return false
	}
	return true
}

func latestAppointmentFirst(a, b *models.Appointment) int {
	if c := b.AppointmentDate.Compare(a.AppointmentDate); c != 0 {
		return c
	}
	return cmpInt64(b.ID, a.ID)
}

func earliestAppointmentFirst(a, b *models.Appointment) int {
	return latestAppointmentFirst(b, a)
}

// CreateAppointment stores an appointment and assigns its id
func (r *Repository) CreateAppointment(ctx context.Context, a models.Appointment) models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	a.ID = r.nextID("appointment")
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := a
	r.appointments[a.ID] = &stored
	return a
}

// UpdateAppointment applies fn to the stored appointment under the write lock, so
// that a check and the change it guards happen together. An error from fn leaves the
// appointment unchanged.
func (r *Repository) UpdateAppointment(ctx context.Context, id int64, fn func(*models.Appointment) error) (models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.appointments[id]
	if !ok {
		return models.Appointment{}, ErrNotFound
	}
	next := *existing
	if err := fn(&next); err != nil {
		return models.Appointment{}, err
	}
	next.UpdatedAt = time.Now()
	r.appointments[id] = &next
	return next, nil
}

// AppointmentByID finds an appointment
func (r *Repository) AppointmentByID(ctx context.Context, id int64) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

// ListAppointments returns matching appointments, latest first
func (r *Repository) ListAppointments(ctx context.Context, q AppointmentQuery, page models.PageRequest) Page[models.Appointment] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.appointments, q.match, latestAppointmentFirst, page)
}

// AppointmentsInRange returns matching appointments, earliest first
func (r *Repository) AppointmentsInRange(ctx context.Context, q AppointmentQuery) []models.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return all(r.appointments, q.match, earliestAppointmentFirst)
}

// CountAppointments counts matching appointments
func (r *Repository) CountAppointments(ctx context.Context, q AppointmentQuery) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return count(r.appointments, q.match)
}

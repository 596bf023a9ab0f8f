package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
	"github.com/otcheredev/hms-console/pkg/logger"
)

// AppointmentService schedules visits and moves them through their lifecycle
type AppointmentService struct {
	repo   *repository.Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewAppointmentService creates an appointment service
func NewAppointmentService(repo *repository.Repository) *AppointmentService {
	return &AppointmentService{
		repo:   repo,
		logger: logger.Component("appointment_service"),
		now:    time.Now,
	}
}

// Schedule books a future appointment with a doctor
func (s *AppointmentService) Schedule(ctx context.Context, actor *models.JWTClaims, req models.AppointmentRequest) (*models.Appointment, error) {
	if fields := req.Validate(s.now()); len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields)
	}

	patient, err := s.repo.PatientByID(ctx, req.PatientID)
	if err != nil {
		return nil, notFound("Patient", err)
	}
	doctor, err := s.repo.UserByID(ctx, req.DoctorID)
	if err != nil {
		return nil, notFound("Doctor", err)
	}
	if doctor.Role != models.RoleDoctor {
		return nil, apperrors.NewValidationError("Selected user is not a doctor", map[string]string{
			"doctorId": "Selected user is not a doctor",
		})
	}

	a := s.repo.CreateAppointment(ctx, models.Appointment{
		Patient:         s.patientRef(*patient),
		Doctor:          doctorRef(doctor),
		AppointmentDate: req.AppointmentDate,
		Status:          models.AppointmentScheduled,
		Reason:          strings.TrimSpace(req.Reason),
		Notes:           req.Notes,
		CreatedByName:   s.actorName(ctx, actor),
	})
	s.logger.Info().
		Int64("appointment_id", a.ID).
		Int64("patient_id", patient.ID).
		Int64("doctor_id", doctor.ID).
		Msg("Appointment scheduled")
	return &a, nil
}

// UpdateStatus moves an appointment. Completed and cancelled appointments are final.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id int64, req models.AppointmentStatusRequest) (*models.Appointment, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields)
	}

	var from models.AppointmentStatus
	a, err := s.repo.UpdateAppointment(ctx, id, func(a *models.Appointment) error {
		from = a.Status
		switch a.Status {
		case models.AppointmentCompleted:
			return apperrors.NewConflictError("Cannot modify completed appointment")
		case models.AppointmentCancelled:
			return apperrors.NewConflictError("Cannot modify cancelled appointment")
		}
		a.Status = req.Status
		if req.Notes != "" {
			a.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, notFound("Appointment", err)
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Str("from", string(from)).
		Str("to", string(a.Status)).
		Msg("Appointment status updated")
	return &a, nil
}

// Get returns one appointment
func (s *AppointmentService) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	a, err := s.repo.AppointmentByID(ctx, id)
	if err != nil {
		return nil, notFound("Appointment", err)
	}
	return a, nil
}

// List returns matching appointments, latest first
func (s *AppointmentService) List(ctx context.Context, q repository.AppointmentQuery, page models.PageRequest) repository.Page[models.Appointment] {
	return s.repo.ListAppointments(ctx, q, page)
}

// Today returns today's appointments in time order, optionally for one doctor
func (s *AppointmentService) Today(ctx context.Context, doctorID int64) []models.Appointment {
	return s.OnDate(ctx, s.now(), doctorID)
}

// OnDate returns the appointments on the calendar day of day, in time order
func (s *AppointmentService) OnDate(ctx context.Context, day time.Time, doctorID int64) []models.Appointment {
	start := startOfDay(day)
	return s.repo.AppointmentsInRange(ctx, repository.AppointmentQuery{
		DoctorID: doctorID,
		From:     start,
		To:       start.AddDate(0, 0, 1),
	})
}

func (s *AppointmentService) patientRef(p models.Patient) models.PatientRef {
	ref := repository.PatientRefOf(p)
	ref.Age = ageOn(p.DateOfBirth, s.now())
	return ref
}

func (s *AppointmentService) actorName(ctx context.Context, actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	if u, err := s.repo.UserByID(ctx, actor.UserID); err == nil {
		return u.FullName
	}
	return actor.Username
}

func doctorRef(u *repository.User) models.DoctorRef {
	return models.DoctorRef{ID: u.ID, Name: u.FullName, Email: u.Email, Phone: u.Phone}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

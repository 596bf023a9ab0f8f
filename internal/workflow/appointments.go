package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// AppointmentGateway is the remote side of the appointment lifecycle
type AppointmentGateway interface {
	Schedule(ctx context.Context, req models.AppointmentRequest) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, req models.AppointmentStatusRequest) (*models.Appointment, error)
}

var appointmentEdges = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentScheduled: {models.AppointmentCompleted, models.AppointmentCancelled},
}

// CanTransition reports whether from→to is a legal appointment edge
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, s := range appointmentEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s
func NextStatuses(s models.AppointmentStatus) []models.AppointmentStatus {
	return append([]models.AppointmentStatus(nil), appointmentEdges[s]...)
}

// Appointments runs scheduling and status changes
type Appointments struct {
	gw      AppointmentGateway
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAppointments creates the appointment workflow
func NewAppointments(gw AppointmentGateway, m *metrics.Metrics) *Appointments {
	if m == nil {
		m = metrics.Noop()
	}
	return &Appointments{
		gw:      gw,
		metrics: m,
		logger:  log.Logger.With().Str("component", "workflow").Str("entity", "appointment").Logger(),
		now:     time.Now,
	}
}

// Schedule validates and creates an appointment
func (a *Appointments) Schedule(ctx context.Context, req models.AppointmentRequest) (*models.Appointment, error) {
	if fields := req.Validate(a.now()); len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid appointment", fields)
	}
	appt, err := a.gw.Schedule(ctx, req)
	if err != nil {
		return nil, err
	}
	a.logger.Info().Int64("appointment_id", appt.ID).Int64("doctor_id", req.DoctorID).Msg("Appointment scheduled")
	return appt, nil
}

// Transition moves appt to the target status. Illegal edges fail before any request.
// The returned appointment is the server's confirmed state; appt itself is never
// modified.
func (a *Appointments) Transition(ctx context.Context, appt *models.Appointment, to models.AppointmentStatus, notes string) (*models.Appointment, error) {
	if !CanTransition(appt.Status, to) {
		a.metrics.TransitionDenied.WithLabelValues("appointment").Inc()
		return nil, apperrors.NewInvalidTransitionError(string(appt.Status), string(to))
	}

	req := models.AppointmentStatusRequest{Status: to, Notes: notes}
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid status change", fields)
	}

	updated, err := a.gw.UpdateStatus(ctx, appt.ID, req)
	if err != nil {
		a.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Str("to", string(to)).Msg("Status change failed")
		return nil, err
	}

	a.metrics.Transitions.WithLabelValues("appointment", string(updated.Status)).Inc()
	a.logger.Info().
		Int64("appointment_id", appt.ID).
		Str("from", string(appt.Status)).
		Str("to", string(updated.Status)).
		Msg("Appointment status changed")
	return updated, nil
}

// Complete marks a scheduled appointment as held
func (a *Appointments) Complete(ctx context.Context, appt *models.Appointment, notes string) (*models.Appointment, error) {
	return a.Transition(ctx, appt, models.AppointmentCompleted, notes)
}

// Cancel calls off a scheduled appointment
func (a *Appointments) Cancel(ctx context.Context, appt *models.Appointment, notes string) (*models.Appointment, error) {
	return a.Transition(ctx, appt, models.AppointmentCancelled, notes)
}

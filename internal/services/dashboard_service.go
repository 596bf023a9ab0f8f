package services

import (
	"context"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// DashboardService computes the per-role summary counters
type DashboardService struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewDashboardService creates a dashboard service
func NewDashboardService(repo *repository.Repository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// Admin returns hospital-wide counters
func (s *DashboardService) Admin(ctx context.Context) *models.AdminDashboard {
	today := startOfDay(s.now())
	d := &models.AdminDashboard{
		TotalPatients: int64(s.repo.CountPatients(ctx)),
		TodayAppointments: int64(s.repo.CountAppointments(ctx, repository.AppointmentQuery{
			From: today, To: today.AddDate(0, 0, 1),
		})),
		ScheduledAppointments: int64(s.repo.CountAppointments(ctx, repository.AppointmentQuery{Status: models.AppointmentScheduled})),
		CompletedAppointments: int64(s.repo.CountAppointments(ctx, repository.AppointmentQuery{Status: models.AppointmentCompleted})),
		CancelledAppointments: int64(s.repo.CountAppointments(ctx, repository.AppointmentQuery{Status: models.AppointmentCancelled})),
		TotalDoctors:          int64(len(s.repo.ActiveUsersByRole(ctx, models.RoleDoctor))),
		TotalNurses:           int64(len(s.repo.ActiveUsersByRole(ctx, models.RoleNurse))),
		TotalBillingStaff:     int64(len(s.repo.ActiveUsersByRole(ctx, models.RoleBilling))),
	}
	for _, b := range s.repo.AllBills(ctx, repository.BillQuery{}) {
		if b.PaymentStatus == models.PaymentPending {
			d.PendingBills++
		}
		d.TotalRevenue += b.PaidAmount
		d.OutstandingAmount += b.OutstandingAmount
	}
	d.TotalRevenue = models.RoundMoney(d.TotalRevenue)
	d.OutstandingAmount = models.RoundMoney(d.OutstandingAmount)
	return d
}

// Doctor returns counters for one doctor
func (s *DashboardService) Doctor(ctx context.Context, doctorID int64) (*models.DoctorDashboard, error) {
	doctor, err := s.repo.UserByID(ctx, doctorID)
	if err != nil || doctor.Role != models.RoleDoctor {
		return nil, apperrors.NewNotFoundError("Doctor not found")
	}

	now := s.now()
	today := startOfDay(now)
	mine := repository.AppointmentQuery{DoctorID: doctorID}

	d := &models.DoctorDashboard{
		MedicalRecordsCreated: int64(s.repo.CountRecords(ctx, doctorID)),
	}
	treated := make(map[int64]struct{})
	for _, a := range s.repo.AppointmentsInRange(ctx, mine) {
		if !a.AppointmentDate.Before(today) && a.AppointmentDate.Before(today.AddDate(0, 0, 1)) {
			d.TodayAppointments++
		}
		switch a.Status {
		case models.AppointmentScheduled:
			if a.AppointmentDate.After(now) {
				d.UpcomingAppointments++
			}
		case models.AppointmentCompleted:
			d.CompletedAppointments++
			treated[a.Patient.ID] = struct{}{}
		}
	}
	d.TotalPatientsTreated = int64(len(treated))
	return d, nil
}

// Billing returns revenue counters
func (s *DashboardService) Billing(ctx context.Context) *models.BillingDashboard {
	now := s.now()
	today := startOfDay(now)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	d := &models.BillingDashboard{}
	for _, b := range s.repo.AllBills(ctx, repository.BillQuery{}) {
		d.TotalBills++
		switch b.PaymentStatus {
		case models.PaymentPaid:
			d.PaidBills++
		case models.PaymentPending:
			d.PendingBills++
		case models.PaymentPartial:
			d.PartialBills++
		}
		d.TotalRevenue += b.PaidAmount
		d.OutstandingAmount += b.OutstandingAmount
		if b.PaymentDate != nil {
			if !b.PaymentDate.Before(today) {
				d.RevenueToday += b.PaidAmount
			}
			if !b.PaymentDate.Before(month) {
				d.RevenueThisMonth += b.PaidAmount
			}
		}
	}
	d.TotalRevenue = models.RoundMoney(d.TotalRevenue)
	d.OutstandingAmount = models.RoundMoney(d.OutstandingAmount)
	d.RevenueToday = models.RoundMoney(d.RevenueToday)
	d.RevenueThisMonth = models.RoundMoney(d.RevenueThisMonth)
	return d
}

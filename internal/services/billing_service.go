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

// BillingService issues bills and records payments against them
type BillingService struct {
	repo   *repository.Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewBillingService creates a billing service
func NewBillingService(repo *repository.Repository) *BillingService {
	return &BillingService{
		repo:   repo,
		logger: logger.Component("billing_service"),
		now:    time.Now,
	}
}

// Create issues a pending bill totalling its items
func (s *BillingService) Create(ctx context.Context, actor *models.JWTClaims, req models.BillRequest) (*models.Bill, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields)
	}
	patient, err := s.repo.PatientByID(ctx, req.PatientID)
	if err != nil {
		return nil, notFound("Patient", err)
	}

	b := models.Bill{
		Patient:  repository.PatientRefOf(*patient),
		BillDate: req.BillDate,
	}
	if req.AppointmentID != nil {
		a, err := s.repo.AppointmentByID(ctx, *req.AppointmentID)
		if err != nil {
			return nil, notFound("Appointment", err)
		}
		if a.Patient.ID != patient.ID {
			return nil, apperrors.NewValidationError("Appointment does not belong to this patient", map[string]string{
				"appointmentId": "Appointment does not belong to this patient",
			})
		}
		b.Appointment = appointmentInfo(a)
	}

	b.Items = make([]models.BillItem, 0, len(req.Items))
	for _, it := range req.Items {
		b.Items = append(b.Items, models.BillItem{
			Description: strings.TrimSpace(it.Description),
			Amount:      models.RoundMoney(it.Amount),
		})
	}
	b.TotalAmount = models.SumItems(b.Items)
	b.Settle()
	if actor != nil {
		if u, err := s.repo.UserByID(ctx, actor.UserID); err == nil {
			b.CreatedByName = u.FullName
		}
	}

	created := s.repo.CreateBill(ctx, b)
	s.logger.Info().
		Str("bill_number", created.BillNumber).
		Float64("total", created.TotalAmount).
		Msg("Bill created")
	return &created, nil
}

// RecordPayment adds a payment. The amount may not exceed what is outstanding.
func (s *BillingService) RecordPayment(ctx context.Context, id int64, req models.PaymentRequest) (*models.Bill, error) {
	if req.PaymentDate.IsZero() {
		req.PaymentDate = s.now()
	}
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields)
	}

	amount := models.RoundMoney(req.Amount)
	b, err := s.repo.UpdateBill(ctx, id, func(b *models.Bill) error {
		if amount > models.RoundMoney(b.OutstandingAmount) {
			return apperrors.NewValidationError("Payment amount cannot exceed outstanding amount", map[string]string{
				"amount": "Payment amount cannot exceed outstanding amount",
			})
		}
		b.PaidAmount += amount
		paidAt := req.PaymentDate
		b.PaymentDate = &paidAt
		b.Settle()
		return nil
	})
	if err != nil {
		return nil, notFound("Bill", err)
	}

	s.logger.Info().
		Str("bill_number", b.BillNumber).
		Float64("amount", amount).
		Str("status", string(b.PaymentStatus)).
		Msg("Payment recorded")
	return &b, nil
}

// Get returns one bill
func (s *BillingService) Get(ctx context.Context, id int64) (*models.Bill, error) {
	b, err := s.repo.BillByID(ctx, id)
	if err != nil {
		return nil, notFound("Bill", err)
	}
	return b, nil
}

// GetByNumber returns a bill by its printed number
func (s *BillingService) GetByNumber(ctx context.Context, number string) (*models.Bill, error) {
	b, err := s.repo.BillByNumber(ctx, number)
	if err != nil {
		return nil, notFound("Bill", err)
	}
	return b, nil
}

// List returns matching bills, latest first
func (s *BillingService) List(ctx context.Context, q repository.BillQuery, page models.PageRequest) repository.Page[models.Bill] {
	return s.repo.ListBills(ctx, q, page)
}

// Unpaid returns every bill with money outstanding
func (s *BillingService) Unpaid(ctx context.Context) []models.Bill {
	return s.repo.AllBills(ctx, repository.BillQuery{Unpaid: true})
}

// RevenueStats totals collected and outstanding money
func (s *BillingService) RevenueStats(ctx context.Context) models.RevenueStats {
	var stats models.RevenueStats
	for _, b := range s.repo.AllBills(ctx, repository.BillQuery{}) {
		stats.TotalRevenue += b.PaidAmount
		stats.OutstandingAmount += b.OutstandingAmount
	}
	stats.TotalRevenue = models.RoundMoney(stats.TotalRevenue)
	stats.OutstandingAmount = models.RoundMoney(stats.OutstandingAmount)
	return stats
}

package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// BillGateway is the remote side of the billing lifecycle
type BillGateway interface {
	Create(ctx context.Context, req models.BillRequest) (*models.Bill, error)
	RecordPayment(ctx context.Context, id int64, req models.PaymentRequest) (*models.Bill, error)
}

// Billing issues bills and records payments
type Billing struct {
	gw      BillGateway
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewBilling creates the billing workflow
func NewBilling(gw BillGateway, m *metrics.Metrics) *Billing {
	if m == nil {
		m = metrics.Noop()
	}
	return &Billing{
		gw:      gw,
		metrics: m,
		logger:  log.Logger.With().Str("component", "workflow").Str("entity", "bill").Logger(),
		now:     time.Now,
	}
}

// CreateBill validates line items and issues the bill. A zero BillDate defaults to now.
func (b *Billing) CreateBill(ctx context.Context, req models.BillRequest) (*models.Bill, error) {
	if req.BillDate.IsZero() {
		req.BillDate = b.now()
	}
	items := make([]models.BillItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.BillItem{Description: it.Description, Amount: models.RoundMoney(it.Amount)}
	}
	req.Items = items
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid bill", fields)
	}

	bill, err := b.gw.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	b.logger.Info().
		Int64("bill_id", bill.ID).
		Str("bill_number", bill.BillNumber).
		Float64("total", bill.TotalAmount).
		Msg("Bill issued")
	return bill, nil
}

// RecordPayment applies amount to bill. The amount must be positive and no more than
// the outstanding balance. The returned bill is the server's settled state; bill
// itself is never modified.
func (b *Billing) RecordPayment(ctx context.Context, bill *models.Bill, amount float64) (*models.Bill, error) {
	outstanding := models.RoundMoney(bill.TotalAmount - bill.PaidAmount)

	switch {
	case !models.PositiveAmount(amount):
		b.metrics.TransitionDenied.WithLabelValues("bill").Inc()
		return nil, apperrors.NewValidationError("invalid payment", map[string]string{
			"amount": "Payment amount must be positive",
		})
	case models.RoundMoney(amount) > outstanding:
		b.metrics.TransitionDenied.WithLabelValues("bill").Inc()
		return nil, apperrors.NewValidationError("invalid payment", map[string]string{
			"amount": fmt.Sprintf("Payment amount exceeds outstanding balance of %.2f", outstanding),
		})
	}

	amount = models.RoundMoney(amount)
	updated, err := b.gw.RecordPayment(ctx, bill.ID, models.PaymentRequest{Amount: amount, PaymentDate: b.now()})
	if err != nil {
		b.logger.Warn().Err(err).Int64("bill_id", bill.ID).Float64("amount", amount).Msg("Payment failed")
		return nil, err
	}

	want := models.RoundMoney(bill.PaidAmount + amount)
	if models.RoundMoney(updated.PaidAmount) != want {
		// another clerk posted a payment in between; the server figure stands
		b.logger.Warn().
			Int64("bill_id", bill.ID).
			Float64("expected_paid", want).
			Float64("paid", updated.PaidAmount).
			Msg("Paid amount differs from local expectation")
	}
	if !updated.Consistent() {
		b.logger.Warn().Int64("bill_id", bill.ID).Msg("Server returned an inconsistent bill, settling locally")
		updated.Settle()
	}

	b.metrics.Transitions.WithLabelValues("bill", string(updated.PaymentStatus)).Inc()
	b.logger.Info().
		Int64("bill_id", bill.ID).
		Float64("amount", amount).
		Str("status", string(updated.PaymentStatus)).
		Msg("Payment recorded")
	return updated, nil
}

package models_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/otcheredev/hms-console/internal/models"
)

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentPending, models.DerivePaymentStatus(1500, 0))
	assert.Equal(t, models.PaymentPartial, models.DerivePaymentStatus(1500, 800))
	assert.Equal(t, models.PaymentPaid, models.DerivePaymentStatus(1500, 1500))
}

func TestBillSettleKeepsInvariant(t *testing.T) {
	b := models.Bill{
		Items: []models.BillItem{
			{Description: "Consultation", Amount: 500},
			{Description: "X-Ray", Amount: 1000},
		},
	}
	b.TotalAmount = models.SumItems(b.Items)
	b.Settle()
	assert.Equal(t, 1500.0, b.TotalAmount)
	assert.Equal(t, 1500.0, b.OutstandingAmount)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)
	assert.True(t, b.Consistent())

	b.PaidAmount = 0.1 + 0.2
	b.Settle()
	assert.Equal(t, 0.3, b.PaidAmount)
	assert.Equal(t, 1499.7, b.OutstandingAmount)
	assert.Equal(t, models.PaymentPartial, b.PaymentStatus)

	b.PaymentStatus = models.PaymentPaid
	assert.False(t, b.Consistent())
}

func TestPagedResultNavigation(t *testing.T) {
	p := models.PagedResult[int]{Items: []int{1, 2}, TotalCount: 12, PageIndex: 1, PageSize: 5}
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())
	assert.False(t, p.PastEnd())

	past := models.PagedResult[int]{TotalCount: 12, PageIndex: 3, PageSize: 5}
	assert.True(t, past.PastEnd())
}

func TestRoleDashboardPath(t *testing.T) {
	assert.Equal(t, "/doctor/dashboard", models.RoleDoctor.DashboardPath())
	r, err := models.ParseRole(" nurse ")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleNurse, r)
	_, err = models.ParseRole("janitor")
	assert.Error(t, err)
}

func TestNonFiniteAmountsAreRejected(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, 0.004, -1} {
		assert.False(t, models.PositiveAmount(v), "%v", v)
	}
	assert.True(t, models.PositiveAmount(0.01))

	pay := models.PaymentRequest{Amount: math.NaN(), PaymentDate: time.Now()}
	assert.Equal(t, "Payment amount must be positive", pay.Validate()["amount"])

	bill := models.BillRequest{PatientID: 1, BillDate: time.Now(), Items: []models.BillItem{{Description: "Lab", Amount: math.Inf(1)}}}
	assert.Equal(t, "Amount must be positive", bill.Validate()["items"])
}

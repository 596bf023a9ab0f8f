package workflow_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/workflow"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

type fakeAppointments struct {
	calls int
	err   error
}

func (f *fakeAppointments) Schedule(ctx context.Context, req models.AppointmentRequest) (*models.Appointment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Appointment{ID: 1, AppointmentDate: req.AppointmentDate, Reason: req.Reason, Status: models.AppointmentScheduled}, nil
}

func (f *fakeAppointments) UpdateStatus(ctx context.Context, id int64, req models.AppointmentStatusRequest) (*models.Appointment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Appointment{ID: id, Status: req.Status, Notes: req.Notes}, nil
}

// fakeBills settles payments the way the server does
type fakeBills struct {
	calls int
	err   error
}

func (f *fakeBills) Create(ctx context.Context, req models.BillRequest) (*models.Bill, error) {
	f.calls++
	b := &models.Bill{ID: 1, BillNumber: "BILL-000001", Items: req.Items, TotalAmount: models.SumItems(req.Items)}
	b.Settle()
	return b, nil
}

func (f *fakeBills) RecordPayment(ctx context.Context, id int64, req models.PaymentRequest) (*models.Bill, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type ledgerBills struct {
	fakeBills
	bill models.Bill
}

func (l *ledgerBills) RecordPayment(ctx context.Context, id int64, req models.PaymentRequest) (*models.Bill, error) {
	l.calls++
	l.bill.PaidAmount += req.Amount
	l.bill.Settle()
	out := l.bill
	return &out, nil
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.AppointmentStatus
		want     bool
	}{
		{models.AppointmentScheduled, models.AppointmentCompleted, true},
		{models.AppointmentScheduled, models.AppointmentCancelled, true},
		{models.AppointmentScheduled, models.AppointmentScheduled, false},
		{models.AppointmentCompleted, models.AppointmentCancelled, false},
		{models.AppointmentCompleted, models.AppointmentScheduled, false},
		{models.AppointmentCancelled, models.AppointmentScheduled, false},
		{models.AppointmentCancelled, models.AppointmentCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, workflow.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.Empty(t, workflow.NextStatuses(models.AppointmentCompleted))
}

func TestIllegalTransitionNeverReachesServer(t *testing.T) {
	mt := metrics.Noop()
	gw := &fakeAppointments{}
	wf := workflow.NewAppointments(gw, mt)

	appt := &models.Appointment{ID: 5, Status: models.AppointmentCompleted}
	_, err := wf.Cancel(context.Background(), appt, "")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition))
	assert.Equal(t, 0, gw.calls)
	assert.Equal(t, models.AppointmentCompleted, appt.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.TransitionDenied.WithLabelValues("appointment")))
}

func TestCompleteIsTerminal(t *testing.T) {
	ctx := context.Background()
	gw := &fakeAppointments{}
	wf := workflow.NewAppointments(gw, nil)

	appt := &models.Appointment{ID: 5, Status: models.AppointmentScheduled}
	done, err := wf.Complete(ctx, appt, "Follow up in two weeks")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, done.Status)
	assert.Equal(t, models.AppointmentScheduled, appt.Status, "input is not modified")

	for _, to := range []models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentCancelled, models.AppointmentCompleted} {
		_, err := wf.Transition(ctx, done, to, "")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition))
	}
	assert.Equal(t, 1, gw.calls)
}

func TestServerRejectionLeavesAppointmentUnchanged(t *testing.T) {
	gw := &fakeAppointments{err: apperrors.NewConflictError("Cannot update completed or cancelled appointment")}
	wf := workflow.NewAppointments(gw, nil)

	appt := &models.Appointment{ID: 5, Status: models.AppointmentScheduled}
	updated, err := wf.Complete(context.Background(), appt, "")
	assert.Nil(t, updated)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Equal(t, models.AppointmentScheduled, appt.Status)
}

func TestScheduleValidation(t *testing.T) {
	gw := &fakeAppointments{}
	wf := workflow.NewAppointments(gw, nil)

	_, err := wf.Schedule(context.Background(), models.AppointmentRequest{AppointmentDate: time.Now().Add(-time.Hour)})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Fields, "patientId")
	assert.Contains(t, appErr.Fields, "doctorId")
	assert.Contains(t, appErr.Fields, "reason")
	assert.Equal(t, "Appointment date must be in the future", appErr.Fields["appointmentDate"])
	assert.Equal(t, 0, gw.calls)

	appt, err := wf.Schedule(context.Background(), models.AppointmentRequest{
		PatientID:       1,
		DoctorID:        2,
		AppointmentDate: time.Now().Add(24 * time.Hour),
		Reason:          "Routine checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentScheduled, appt.Status)
}

func TestPaymentSequence(t *testing.T) {
	ctx := context.Background()
	gw := &ledgerBills{bill: models.Bill{ID: 9, TotalAmount: 1500}}
	gw.bill.Settle()
	wf := workflow.NewBilling(gw, nil)

	bill := gw.bill
	after, err := wf.RecordPayment(ctx, &bill, 800)
	require.NoError(t, err)
	assert.Equal(t, 800.0, after.PaidAmount)
	assert.Equal(t, 700.0, after.OutstandingAmount)
	assert.Equal(t, models.PaymentPartial, after.PaymentStatus)

	after, err = wf.RecordPayment(ctx, after, 700)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, after.PaidAmount)
	assert.Equal(t, 0.0, after.OutstandingAmount)
	assert.Equal(t, models.PaymentPaid, after.PaymentStatus)

	_, err = wf.RecordPayment(ctx, after, 1)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Fields["amount"], "exceeds outstanding")
	assert.Equal(t, 2, gw.calls)
}

func TestPaymentRejectsNonPositiveAmount(t *testing.T) {
	gw := &fakeBills{}
	wf := workflow.NewBilling(gw, nil)

	bill := &models.Bill{ID: 1, TotalAmount: 100, OutstandingAmount: 100, PaymentStatus: models.PaymentPending}
	for _, amt := range []float64{0, -5, 0.001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := wf.RecordPayment(context.Background(), bill, amt)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "amount %v", amt)
	}
	assert.Equal(t, 0, gw.calls)
}

func TestPaymentTransportFailureAppliesNothing(t *testing.T) {
	gw := &fakeBills{err: apperrors.NewTransportError("unable to reach the server", nil)}
	wf := workflow.NewBilling(gw, nil)

	bill := &models.Bill{ID: 1, TotalAmount: 100, OutstandingAmount: 100, PaymentStatus: models.PaymentPending}
	updated, err := wf.RecordPayment(context.Background(), bill, 50)
	assert.Nil(t, updated)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.Equal(t, 0.0, bill.PaidAmount)
	assert.Equal(t, models.PaymentPending, bill.PaymentStatus)
}

func TestCreateBillValidatesItems(t *testing.T) {
	gw := &fakeBills{}
	wf := workflow.NewBilling(gw, nil)
	ctx := context.Background()

	_, err := wf.CreateBill(ctx, models.BillRequest{PatientID: 1})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "At least one bill item is required", appErr.Fields["items"])

	_, err = wf.CreateBill(ctx, models.BillRequest{PatientID: 1, Items: []models.BillItem{{Description: "Consultation", Amount: -1}}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	_, err = wf.CreateBill(ctx, models.BillRequest{PatientID: 1, Items: []models.BillItem{{Description: "Consultation", Amount: math.NaN()}}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, 0, gw.calls)

	bill, err := wf.CreateBill(ctx, models.BillRequest{PatientID: 1, Items: []models.BillItem{
		{Description: "Consultation", Amount: 500},
		{Description: "Lab work", Amount: 1000.004},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, bill.TotalAmount)
	assert.Equal(t, models.PaymentPending, bill.PaymentStatus)
	assert.True(t, bill.Consistent())
}

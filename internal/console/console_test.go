package console_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/otcheredev/hms-console/internal/console"
	"github.com/otcheredev/hms-console/internal/guard"
	"github.com/otcheredev/hms-console/internal/handlers"
	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	"github.com/otcheredev/hms-console/internal/services"
	"github.com/otcheredev/hms-console/internal/session"
	"github.com/otcheredev/hms-console/internal/store"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// sandbox serves the hospital API; swap replaces the router, e.g. to simulate a
// server that no longer accepts issued tokens
type sandbox struct {
	*httptest.Server
	repo    *repository.Repository
	handler atomic.Pointer[http.Handler]
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	sb := &sandbox{repo: repository.New()}
	require.NoError(t, repository.Seed(context.Background(), sb.repo, bcrypt.MinCost, time.Now()))
	sb.swap("sandbox-secret")
	sb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		(*sb.handler.Load()).ServeHTTP(w, r)
	}))
	t.Cleanup(sb.Close)
	return sb
}

func (sb *sandbox) swap(secret string) {
	h := handlers.NewRouter(handlers.Services{
		Auth:         services.NewAuthService(sb.repo, secret, time.Hour),
		Users:        services.NewUserService(sb.repo),
		Patients:     services.NewPatientService(sb.repo),
		Appointments: services.NewAppointmentService(sb.repo),
		Records:      services.NewRecordService(sb.repo),
		Billing:      services.NewBillingService(sb.repo),
		Dashboards:   services.NewDashboardService(sb.repo),
	}, handlers.RouterOptions{})
	sb.handler.Store(&h)
}

func newConsole(t *testing.T, sb *sandbox, st store.Store, m *metrics.Metrics) *console.Console {
	t.Helper()
	c := console.New(console.Config{
		BaseURL: sb.URL + handlers.APIPrefix,
		Timeout: 5 * time.Second,
		Store:   st,
		Metrics: m,
	})
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDeepLinkReturnsAfterLogin(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	d, err := c.Navigate(ctx, "/patients/42")
	require.NoError(t, err)
	assert.Equal(t, guard.StateDeniedUnauthenticated, d.State)
	assert.Equal(t, "/patients/42", d.From)
	assert.Equal(t, guard.LoginPath, c.Location())

	d, err = c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)
	assert.Equal(t, guard.StateGranted, d.State)
	assert.Equal(t, "/patients/42", c.Location())

	// the remembered location is used once
	require.NoError(t, c.Logout(ctx))
	_, err = c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)
	assert.Equal(t, "/nurse/dashboard", c.Location())
}

func TestLoginCountsOneNavigation(t *testing.T) {
	sb := newSandbox(t)
	mt := metrics.Noop()
	c := newConsole(t, sb, nil, mt)
	ctx := context.Background()

	_, err := c.Navigate(ctx, "/patients/42")
	require.NoError(t, err)
	_, err = c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Navigations.WithLabelValues(string(guard.StateDeniedUnauthenticated))))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Navigations.WithLabelValues(string(guard.StateGranted))))
}

func TestLoginLandsOnRoleDashboard(t *testing.T) {
	sb := newSandbox(t)
	ctx := context.Background()

	tests := []struct {
		username, password string
		want               string
	}{
		{"admin", "admin123", "/admin/dashboard"},
		{"doctor1", "password123", "/doctor/dashboard"},
		{"nurse1", "password123", "/nurse/dashboard"},
		{"billing1", "password123", "/billing/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			c := newConsole(t, sb, nil, nil)
			_, err := c.Login(ctx, tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Location())
			require.NotEmpty(t, c.Menu())
			assert.Equal(t, tt.want, c.Menu()[0].Path)
		})
	}
}

func TestRememberedLocationOutsideRoleFallsBackToDashboard(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	_, err := c.Navigate(ctx, "/billing")
	require.NoError(t, err)

	d, err := c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)
	assert.Equal(t, guard.StateGranted, d.State)
	assert.Equal(t, "/nurse/dashboard", c.Location())
}

func TestWrongRoleIsSentToOwnDashboard(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "doctor1", "password123")
	require.NoError(t, err)

	d, err := c.Navigate(ctx, "/billing/new")
	require.NoError(t, err)
	assert.Equal(t, guard.StateDeniedWrongRole, d.State)
	assert.Equal(t, "/doctor/dashboard", c.Location())
	assert.True(t, c.Session.IsAuthenticated())
}

func TestFailedLoginKeepsAnonymousSession(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)

	_, err := c.Login(context.Background(), "nurse1", "wrong")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthReasonInvalidCredentials, appErr.Reason)
	assert.False(t, c.Session.IsAuthenticated())
	assert.Equal(t, guard.LoginPath, c.Location())
}

func TestSessionSurvivesRestart(t *testing.T) {
	sb := newSandbox(t)
	st := store.NewMemoryStore("hms:test")
	ctx := context.Background()

	first := newConsole(t, sb, st, nil)
	_, err := first.Login(ctx, "billing1", "password123")
	require.NoError(t, err)

	second := newConsole(t, sb, st, nil)
	assert.True(t, second.Session.IsAuthenticated())
	assert.Equal(t, "/billing/dashboard", second.Location())

	me, err := second.API.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "billing1", me.Username)
}

func TestRejectedTokenLogsOutOnce(t *testing.T) {
	sb := newSandbox(t)
	m := metrics.New(prometheus.NewRegistry())
	c := newConsole(t, sb, nil, m)
	ctx := context.Background()

	_, err := c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)

	var expired atomic.Int32
	unsubscribe := c.Session.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventExpired {
			expired.Add(1)
		}
	})
	defer unsubscribe()

	sb.swap("rotated-secret")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.API.Patients.List(ctx, models.PatientFilter{}, models.PageRequest{})
			assert.True(t, apperrors.IsAuth(err))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, expired.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImplicitLogouts))
	assert.Equal(t, float64(8), testutil.ToFloat64(m.AuthRejections))
	assert.False(t, c.Session.IsAuthenticated())
	assert.Equal(t, guard.LoginPath, c.Location())
}

func TestForbiddenKeepsSession(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)

	_, err = c.API.Bills.List(ctx, models.BillFilter{}, models.PageRequest{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	assert.True(t, c.Session.IsAuthenticated())
}

func TestDashboards(t *testing.T) {
	sb := newSandbox(t)
	ctx := context.Background()

	nurse := newConsole(t, sb, nil, nil)
	_, err := nurse.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)
	got, err := nurse.Dashboard(ctx)
	require.NoError(t, err)
	nd, ok := got.(*models.NurseDashboard)
	require.True(t, ok)
	assert.Equal(t, 5, nd.TotalPatients)
	assert.NotNil(t, nd.TodayAppointments)

	doctors, err := nurse.API.Users.ByRole(ctx, models.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. John Smith", doctors[0].FullName)

	billing := newConsole(t, sb, nil, nil)
	_, err = billing.Login(ctx, "billing1", "password123")
	require.NoError(t, err)
	got, err = billing.Dashboard(ctx)
	require.NoError(t, err)
	bd, ok := got.(*models.BillingDashboard)
	require.True(t, ok)
	assert.EqualValues(t, 4, bd.TotalBills)

	anon := newConsole(t, sb, nil, nil)
	_, err = anon.Dashboard(ctx)
	assert.True(t, apperrors.IsAuth(err))
}

func TestPatientListThroughController(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)

	state, err := c.Patients.SetPageSize(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, state.Result)
	assert.Equal(t, 5, state.Result.TotalCount)
	assert.Len(t, state.Result.Items, 2)

	state, err = c.Patients.SetFilter(ctx, models.PatientFilter{Query: "wilson"})
	require.NoError(t, err)
	require.Len(t, state.Result.Items, 1)
	assert.Equal(t, "Sarah Wilson", state.Result.Items[0].FullName)
	assert.Equal(t, 0, state.PageIndex)
}

func TestAppointmentWorkflowAgainstSandbox(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "doctor1", "password123")
	require.NoError(t, err)

	appt, err := c.API.Appointments.Get(ctx, 1)
	require.NoError(t, err)

	done, err := c.Appointments.Complete(ctx, appt, "Seen")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, done.Status)

	_, err = c.Appointments.Cancel(ctx, done, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition))

	// a stale copy still reads SCHEDULED locally; the server refuses it
	_, err = c.Appointments.Cancel(ctx, appt, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestPaymentWorkflowAgainstSandbox(t *testing.T) {
	sb := newSandbox(t)
	c := newConsole(t, sb, nil, nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "billing1", "password123")
	require.NoError(t, err)

	bill, err := c.Billing.CreateBill(ctx, models.BillRequest{
		PatientID: 5,
		Items:     []models.BillItem{{Description: "Consultation", Amount: 1500}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, bill.PaymentStatus)

	bill, err = c.Billing.RecordPayment(ctx, bill, 800)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, bill.PaymentStatus)

	_, err = c.Billing.RecordPayment(ctx, bill, 701)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	bill, err = c.Billing.RecordPayment(ctx, bill, 700)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, bill.PaymentStatus)
	assert.Zero(t, bill.OutstandingAmount)
}

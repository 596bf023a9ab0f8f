package console

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/otcheredev/hms-console/internal/client"
	"github.com/otcheredev/hms-console/internal/guard"
	"github.com/otcheredev/hms-console/internal/listctl"
	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/session"
	"github.com/otcheredev/hms-console/internal/store"
	"github.com/otcheredev/hms-console/internal/workflow"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// Config wires a console to a server and a credential store
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Store      store.Store
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
	PageSize   int
}

// Console ties the session, guard, API client, list controllers and workflows
// together the way the screens use them.
type Console struct {
	Session *session.Manager
	Guard   *guard.Guard
	API     *client.Client

	Appointments *workflow.Appointments
	Billing      *workflow.Billing
	Patients     *listctl.Controller[models.Patient, models.PatientFilter]
	Visits       *listctl.Controller[models.Appointment, models.AppointmentFilter]
	Records      *listctl.Controller[models.MedicalRecord, models.MedicalRecordFilter]
	Bills        *listctl.Controller[models.Bill, models.BillFilter]

	store   store.Store
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu          sync.Mutex
	location    string
	unsubscribe func()
}

// credentials lets the client reach the session manager, which is built after it
type credentials struct {
	m *session.Manager
}

func (c *credentials) Credential() (string, uint64) {
	return c.m.Credential()
}

func (c *credentials) Rejected(ctx context.Context, generation uint64) bool {
	return c.m.Rejected(ctx, generation)
}

// New builds a console. Call Start before navigating.
func New(cfg Config) *Console {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Noop()
	}
	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore("hms")
	}
	logger := log.Logger.With().Str("component", "console").Logger()

	opts := []client.Option{client.WithMetrics(m)}
	if cfg.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.Timeout))
	}

	creds := &credentials{}
	api := client.New(cfg.BaseURL, creds, opts...)
	sess := session.NewManager(st, api.Auth, session.WithMetrics(m))
	creds.m = sess

	listOpts := []listctl.Option{listctl.WithMetrics(m)}
	if cfg.PageSize > 0 {
		listOpts = append(listOpts, listctl.WithPageSize(cfg.PageSize))
	}

	c := &Console{
		Session:      sess,
		Guard:        guard.New(sess, m),
		API:          api,
		Appointments: workflow.NewAppointments(api.Appointments, m),
		Billing:      workflow.NewBilling(api.Bills, m),
		Patients:     listctl.New[models.Patient, models.PatientFilter]("patients", api.Patients.List, listOpts...),
		Visits:       listctl.New[models.Appointment, models.AppointmentFilter]("appointments", api.Appointments.List, listOpts...),
		Records:      listctl.New[models.MedicalRecord, models.MedicalRecordFilter]("medical-records", api.MedicalRecords.List, listOpts...),
		Bills:        listctl.New[models.Bill, models.BillFilter]("bills", api.Bills.List, listOpts...),
		store:        st,
		metrics:      m,
		logger:       logger,
		location:     guard.LoginPath,
	}
	c.unsubscribe = sess.Subscribe(c.onSessionEvent)
	return c
}

// Start restores a persisted session and lands on the dashboard when one is found
func (c *Console) Start(ctx context.Context) error {
	if err := c.Session.Restore(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Session restore failed, continuing anonymously")
	}
	if role, ok := c.Session.CurrentRole(); ok {
		c.setLocation(role.DashboardPath())
	}
	return nil
}

// Location returns the screen currently shown
func (c *Console) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

func (c *Console) setLocation(loc string) {
	c.mu.Lock()
	c.location = loc
	c.mu.Unlock()
}

// Navigate opens location if the guard grants it and follows the redirect otherwise.
// A protected location denied for lack of a session is remembered for after login.
func (c *Console) Navigate(ctx context.Context, location string) (guard.Decision, error) {
	d := c.Guard.Decide(location)
	switch d.State {
	case guard.StateGranted:
		c.setLocation(location)
	case guard.StateDeniedUnauthenticated:
		if d.From != "" {
			if err := c.Session.RememberLocation(ctx, d.From); err != nil {
				return d, fmt.Errorf("failed to remember location: %w", err)
			}
		}
		c.setLocation(d.RedirectTo)
	case guard.StateDeniedWrongRole:
		c.setLocation(d.RedirectTo)
	}
	return d, nil
}

// Login signs in and lands on the remembered location, or the role's dashboard when
// there is none or the new role may not open it.
func (c *Console) Login(ctx context.Context, username, password string) (guard.Decision, error) {
	user, err := c.Session.Login(ctx, username, password)
	if err != nil {
		return guard.Decision{}, err
	}

	target := user.Role.DashboardPath()
	remembered, err := c.Session.TakeRememberedLocation(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read remembered location")
	}
	if remembered != "" && c.Guard.Permits(user.Role, remembered) {
		target = remembered
	}
	return c.Navigate(ctx, target)
}

// Logout ends the session and shows the login screen
func (c *Console) Logout(ctx context.Context) error {
	if err := c.Session.Logout(ctx); err != nil {
		return err
	}
	c.setLocation(guard.LoginPath)
	return nil
}

// Menu returns the navigation entries for the signed-in role
func (c *Console) Menu() []guard.MenuItem {
	role, ok := c.Session.CurrentRole()
	if !ok {
		return nil
	}
	return guard.MenuFor(role)
}

// Dashboard loads the signed-in role's dashboard
func (c *Console) Dashboard(ctx context.Context) (any, error) {
	role, ok := c.Session.CurrentRole()
	if !ok {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, "not signed in", nil)
	}
	switch role {
	case models.RoleAdmin:
		return c.API.Dashboards.Admin(ctx)
	case models.RoleDoctor:
		return c.API.Dashboards.MyDoctor(ctx)
	case models.RoleBilling:
		return c.API.Dashboards.Billing(ctx)
	default:
		return c.NurseDashboard(ctx)
	}
}

// NurseDashboard composes the patient total and today's appointments
func (c *Console) NurseDashboard(ctx context.Context) (*models.NurseDashboard, error) {
	var (
		d     models.NurseDashboard
		total *models.PagedResult[models.Patient]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = c.API.Patients.List(gctx, models.PatientFilter{}, models.PageRequest{Size: 1})
		return err
	})
	g.Go(func() error {
		var err error
		d.TodayAppointments, err = c.API.Appointments.Today(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.TotalPatients = total.TotalCount
	return &d, nil
}

// Close stops listening for session events and releases connections
func (c *Console) Close() error {
	c.unsubscribe()
	if err := c.API.Close(); err != nil {
		return err
	}
	return c.store.Close()
}

// onSessionEvent follows the session to the login screen after an implicit logout
func (c *Console) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventExpired:
		c.logger.Info().Str("redirect", ev.RedirectTo).Msg("Session expired")
		c.setLocation(ev.RedirectTo)
	case session.EventLogout:
		c.setLocation(guard.LoginPath)
	}
}

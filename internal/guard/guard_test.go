package guard_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/hms-console/internal/guard"
	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
)

type stubSession struct {
	restored bool
	role     models.Role
}

func (s stubSession) Restored() bool        { return s.restored }
func (s stubSession) IsAuthenticated() bool { return s.role != "" }
func (s stubSession) CurrentRole() (models.Role, bool) {
	return s.role, s.role != ""
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		session  stubSession
		location string
		want     guard.State
		redirect string
		from     string
	}{
		{"pending before restore", stubSession{}, "/patients/42", guard.StatePendingSession, "", ""},
		{"login is public while pending", stubSession{}, "/login", guard.StateGranted, "", ""},
		{"anonymous remembers location", stubSession{restored: true}, "/patients/42", guard.StateDeniedUnauthenticated, "/login", "/patients/42"},
		{"anonymous unknown location", stubSession{restored: true}, "/nowhere", guard.StateDeniedUnauthenticated, "/login", ""},
		{"doctor on admin screen", stubSession{restored: true, role: models.RoleDoctor}, "/admin/dashboard", guard.StateDeniedWrongRole, "/doctor/dashboard", ""},
		{"nurse on billing", stubSession{restored: true, role: models.RoleNurse}, "/billing/new", guard.StateDeniedWrongRole, "/nurse/dashboard", ""},
		{"billing clerk on patient edit", stubSession{restored: true, role: models.RoleBilling}, "/patients/edit/3", guard.StateDeniedWrongRole, "/billing/dashboard", ""},
		{"nurse views patient", stubSession{restored: true, role: models.RoleNurse}, "/patients/42", guard.StateGranted, "", ""},
		{"nurse registers patient", stubSession{restored: true, role: models.RoleNurse}, "/patients/new", guard.StateGranted, "", ""},
		{"admin on billing dashboard", stubSession{restored: true, role: models.RoleAdmin}, "/billing/dashboard", guard.StateGranted, "", ""},
		{"admin not on doctor dashboard", stubSession{restored: true, role: models.RoleAdmin}, "/doctor/dashboard", guard.StateDeniedWrongRole, "/admin/dashboard", ""},
		{"doctor writes record", stubSession{restored: true, role: models.RoleDoctor}, "/medical-records/new", guard.StateGranted, "", ""},
		{"query string ignored", stubSession{restored: true, role: models.RoleBilling}, "/billing?status=PAID", guard.StateGranted, "", ""},
		{"authenticated unknown location", stubSession{restored: true, role: models.RoleNurse}, "/nowhere", guard.StateDeniedWrongRole, "/nurse/dashboard", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := guard.New(tt.session, nil)
			d := g.Decide(tt.location)
			assert.Equal(t, tt.want, d.State)
			assert.Equal(t, tt.redirect, d.RedirectTo)
			assert.Equal(t, tt.from, d.From)
		})
	}
}

func TestDecideCountsStates(t *testing.T) {
	mt := metrics.Noop()
	g := guard.New(stubSession{restored: true, role: models.RoleDoctor}, mt)

	g.Decide("/patients")
	g.Decide("/billing")

	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Navigations.WithLabelValues(string(guard.StateGranted))))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.Navigations.WithLabelValues(string(guard.StateDeniedWrongRole))))
}

func TestPermitsRecordsNoNavigation(t *testing.T) {
	mt := metrics.Noop()
	g := guard.New(stubSession{}, mt)

	assert.True(t, g.Permits(models.RoleNurse, "/patients/42"))
	assert.True(t, g.Permits(models.RoleNurse, "/login"))
	assert.False(t, g.Permits(models.RoleNurse, "/billing"))
	assert.False(t, g.Permits(models.RoleAdmin, "/nowhere"))

	for _, st := range []guard.State{guard.StateGranted, guard.StateDeniedWrongRole, guard.StateDeniedUnauthenticated, guard.StatePendingSession} {
		assert.Equal(t, float64(0), testutil.ToFloat64(mt.Navigations.WithLabelValues(string(st))))
	}
}

func TestResolve(t *testing.T) {
	g := guard.New(stubSession{}, nil)

	s, ok := g.Resolve("/patients/new")
	require.True(t, ok)
	assert.Equal(t, guard.TagPatientsEdit, s.Tag)

	s, ok = g.Resolve("/patients/17")
	require.True(t, ok)
	assert.Equal(t, guard.TagPatientsView, s.Tag)

	_, ok = g.Resolve("/patients/17/extra")
	assert.False(t, ok)
}

func labels(items []guard.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestMenuFor(t *testing.T) {
	assert.Equal(t,
		[]string{"Dashboard", "Patients", "Appointments", "Medical Records", "Billing", "Reports", "User Management"},
		labels(guard.MenuFor(models.RoleAdmin)))
	assert.Equal(t,
		[]string{"Dashboard", "Patients", "Appointments", "Medical Records"},
		labels(guard.MenuFor(models.RoleDoctor)))
	assert.Equal(t,
		[]string{"Dashboard", "Patients", "Appointments"},
		labels(guard.MenuFor(models.RoleNurse)))
	assert.Equal(t,
		[]string{"Dashboard", "Patients", "Billing", "Reports"},
		labels(guard.MenuFor(models.RoleBilling)))
	assert.Nil(t, guard.MenuFor("JANITOR"))

	assert.Equal(t, "/nurse/dashboard", guard.MenuFor(models.RoleNurse)[0].Path)
}

func TestMenuEntriesAreAlwaysGranted(t *testing.T) {
	for _, role := range models.Roles {
		g := guard.New(stubSession{restored: true, role: role}, nil)
		for _, it := range guard.MenuFor(role) {
			assert.Equal(t, guard.StateGranted, g.Decide(it.Path).State, "%s -> %s", role, it.Path)
		}
	}
}

package guard

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
)

// State is the outcome of one navigation check
type State string

const (
	StatePendingSession        State = "PENDING_SESSION"
	StateDeniedUnauthenticated State = "DENIED_UNAUTHENTICATED"
	StateDeniedWrongRole       State = "DENIED_WRONG_ROLE"
	StateGranted               State = "GRANTED"
)

// LoginPath is the redirect target for anonymous navigation
const LoginPath = "/login"

// SessionView is the part of the session the guard reads
type SessionView interface {
	Restored() bool
	IsAuthenticated() bool
	CurrentRole() (models.Role, bool)
}

// Decision is the result of checking a location
type Decision struct {
	State    State
	Location string
	Screen   *Screen
	// RedirectTo is set for denials
	RedirectTo string
	// From is the location to return to after login
	From string
}

// Guard gates navigation. It keeps no state of its own and is re-run for every
// navigation.
type Guard struct {
	routes    *chi.Mux
	byPattern map[string]Screen
	session   SessionView
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// New builds a guard over the console's screens
func New(session SessionView, m *metrics.Metrics) *Guard {
	if m == nil {
		m = metrics.Noop()
	}
	g := &Guard{
		routes:    chi.NewRouter(),
		byPattern: make(map[string]Screen, len(Screens)),
		session:   session,
		metrics:   m,
		logger:    log.Logger.With().Str("component", "guard").Logger(),
	}
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, s := range Screens {
		g.routes.Get(s.Pattern, noop)
		g.byPattern[s.Pattern] = s
	}
	return g
}

// Resolve maps a location onto its screen
func (g *Guard) Resolve(location string) (Screen, bool) {
	path := location
	if u, err := url.Parse(location); err == nil {
		path = u.Path
	}
	pattern := g.routes.Find(chi.NewRouteContext(), http.MethodGet, path)
	s, ok := g.byPattern[pattern]
	return s, ok
}

// Permits reports whether role may open location. Unlike Decide it records nothing.
func (g *Guard) Permits(role models.Role, location string) bool {
	screen, ok := g.Resolve(location)
	if !ok {
		return false
	}
	return screen.Public || Allowed(role, screen.Tag)
}

// Decide checks whether the current session may open location
func (g *Guard) Decide(location string) Decision {
	d := g.decide(location)
	g.metrics.Navigations.WithLabelValues(string(d.State)).Inc()
	g.logger.Debug().
		Str("location", location).
		Str("state", string(d.State)).
		Str("redirect", d.RedirectTo).
		Msg("Navigation checked")
	return d
}

func (g *Guard) decide(location string) Decision {
	d := Decision{Location: location}
	screen, known := g.Resolve(location)
	if known {
		d.Screen = &screen
		if screen.Public {
			d.State = StateGranted
			return d
		}
	}

	if !g.session.Restored() {
		d.State = StatePendingSession
		return d
	}

	role, ok := g.session.CurrentRole()
	if !g.session.IsAuthenticated() || !ok {
		d.State = StateDeniedUnauthenticated
		d.RedirectTo = LoginPath
		if known {
			d.From = location
		}
		return d
	}

	if !known || !Allowed(role, screen.Tag) {
		d.State = StateDeniedWrongRole
		d.RedirectTo = role.DashboardPath()
		return d
	}

	d.State = StateGranted
	return d
}

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/session"
	"github.com/otcheredev/hms-console/internal/store"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

type fakeAuth struct {
	resp *models.AuthResponse
	err  error
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	return f.resp, f.err
}

func nurse() models.UserIdentity {
	return models.UserIdentity{ID: 3, Username: "nurse1", FullName: "Nurse Jane", Email: "nurse@hospital.com", Role: models.RoleNurse}
}

func okAuth(token string, user models.UserIdentity) *fakeAuth {
	return &fakeAuth{resp: &models.AuthResponse{Token: token, Type: "Bearer", User: user}}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestLoginThenLogoutReturnsToAnonymous(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore("hms:test")
	m := session.NewManager(st, okAuth("tok-1", nurse()))

	user, err := m.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNurse, user.Role)
	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.HasRole(models.RoleNurse))
	assert.True(t, m.HasAnyRole(models.RoleAdmin, models.RoleNurse))
	assert.False(t, m.HasAnyRole(models.RoleAdmin, models.RoleDoctor))

	tok, err := st.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", string(tok))

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.IsAuthenticated())
	_, ok := m.CurrentRole()
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len())

	// second logout is a no-op
	require.NoError(t, m.Logout(ctx))
}

func TestLoginFailureKeepsPreviousSession(t *testing.T) {
	ctx := context.Background()
	auth := okAuth("tok-1", nurse())
	m := session.NewManager(store.NewMemoryStore("hms:test"), auth)

	_, err := m.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)

	auth.resp = nil
	auth.err = apperrors.NewAuthError(apperrors.AuthReasonInvalidCredentials, "bad credentials", nil)
	_, err = m.Login(ctx, "admin", "wrong")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthReasonInvalidCredentials, appErr.Reason)

	token, _ := m.Credential()
	assert.Equal(t, "tok-1", token)
	assert.True(t, m.HasRole(models.RoleNurse))
}

func TestLoginRejectsBlankCredentialsWithoutCallingServer(t *testing.T) {
	auth := &fakeAuth{err: errors.New("must not be called")}
	m := session.NewManager(store.NewMemoryStore(""), auth)

	_, err := m.Login(context.Background(), "  ", "x")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthReasonInvalidCredentials, appErr.Reason)
}

func TestLoginWrapsUntypedFailureAsNetwork(t *testing.T) {
	m := session.NewManager(store.NewMemoryStore(""), &fakeAuth{err: errors.New("dial tcp: refused")})

	_, err := m.Login(context.Background(), "nurse1", "password123")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthReasonNetwork, appErr.Reason)
}

func TestLoginRejectsIncompleteResponse(t *testing.T) {
	m := session.NewManager(store.NewMemoryStore(""), okAuth("", nurse()))

	_, err := m.Login(context.Background(), "nurse1", "password123")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthReasonServer, appErr.Reason)
	assert.False(t, m.IsAuthenticated())
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	userJSON, err := json.Marshal(nurse())
	require.NoError(t, err)

	tests := []struct {
		name       string
		seed       map[string][]byte
		wantAuthed bool
		wantLeft   int
	}{
		{
			name:       "complete pair",
			seed:       map[string][]byte{"token": []byte("opaque"), "user": userJSON},
			wantAuthed: true,
			wantLeft:   2,
		},
		{
			name:     "token without user",
			seed:     map[string][]byte{"token": []byte("opaque")},
			wantLeft: 0,
		},
		{
			name:     "user without token",
			seed:     map[string][]byte{"user": userJSON},
			wantLeft: 0,
		},
		{
			name:     "unreadable user",
			seed:     map[string][]byte{"token": []byte("opaque"), "user": []byte("{")},
			wantLeft: 0,
		},
		{
			name:     "expired token",
			seed:     map[string][]byte{"token": []byte(signed(t, time.Now().Add(-time.Hour))), "user": userJSON},
			wantLeft: 0,
		},
		{
			name:       "unexpired token",
			seed:       map[string][]byte{"token": []byte(signed(t, time.Now().Add(time.Hour))), "user": userJSON},
			wantAuthed: true,
			wantLeft:   2,
		},
		{
			name: "empty store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore("hms:test")
			if len(tt.seed) > 0 {
				require.NoError(t, st.SetMulti(ctx, tt.seed))
			}
			m := session.NewManager(st, &fakeAuth{})
			assert.False(t, m.Restored())

			require.NoError(t, m.Restore(ctx))
			assert.True(t, m.Restored())
			assert.Equal(t, tt.wantAuthed, m.IsAuthenticated())
			assert.Equal(t, tt.wantLeft, st.Len())

			select {
			case <-m.Ready():
			default:
				t.Fatal("ready channel should be closed")
			}
		})
	}
}

func TestConcurrentRejectionsSignalOnce(t *testing.T) {
	ctx := context.Background()
	mt := metrics.Noop()
	m := session.NewManager(store.NewMemoryStore("hms:test"), okAuth("tok-1", nurse()), session.WithMetrics(mt))

	_, err := m.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)

	var signals atomic.Int32
	unsubscribe := m.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventExpired {
			assert.Equal(t, session.LoginPath, ev.RedirectTo)
			signals.Add(1)
		}
	})
	defer unsubscribe()

	_, gen := m.Credential()

	var wg sync.WaitGroup
	var ended atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Rejected(ctx, gen) {
				ended.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ended.Load())
	assert.Equal(t, int32(1), signals.Load())
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, float64(16), testutil.ToFloat64(mt.AuthRejections))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.ImplicitLogouts))
}

func TestStaleRejectionDoesNotEndNewerSession(t *testing.T) {
	ctx := context.Background()
	auth := okAuth("tok-1", nurse())
	m := session.NewManager(store.NewMemoryStore("hms:test"), auth)

	_, err := m.Login(ctx, "nurse1", "password123")
	require.NoError(t, err)
	_, oldGen := m.Credential()

	admin := models.UserIdentity{ID: 1, Username: "admin", FullName: "System Administrator", Email: "admin@hospital.com", Role: models.RoleAdmin}
	auth.resp = &models.AuthResponse{Token: "tok-2", Type: "Bearer", User: admin}
	_, err = m.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	assert.False(t, m.Rejected(ctx, oldGen))
	token, _ := m.Credential()
	assert.Equal(t, "tok-2", token)
	assert.True(t, m.HasRole(models.RoleAdmin))
}

func TestRejectionWhileAnonymousIsIgnored(t *testing.T) {
	m := session.NewManager(store.NewMemoryStore(""), &fakeAuth{})

	fired := false
	m.Subscribe(func(session.Event) { fired = true })

	_, gen := m.Credential()
	assert.False(t, m.Rejected(context.Background(), gen))
	assert.False(t, fired)
}

func TestRememberedLocationIsTakenOnce(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(store.NewMemoryStore("hms:test"), &fakeAuth{})

	require.NoError(t, m.RememberLocation(ctx, "/patients/42"))

	loc, err := m.TakeRememberedLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/patients/42", loc)

	loc, err = m.TakeRememberedLocation(ctx)
	require.NoError(t, err)
	assert.Empty(t, loc)
}

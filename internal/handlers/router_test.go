package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	"github.com/otcheredev/hms-console/internal/services"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := repository.New()
	require.NoError(t, repository.Seed(context.Background(), repo, bcrypt.MinCost, time.Now()))
	return NewRouter(Services{
		Auth:         services.NewAuthService(repo, "test-secret", time.Hour),
		Users:        services.NewUserService(repo),
		Patients:     services.NewPatientService(repo),
		Appointments: services.NewAppointmentService(repo),
		Records:      services.NewRecordService(repo),
		Billing:      services.NewBillingService(repo),
		Dashboards:   services.NewDashboardService(repo),
	}, RouterOptions{})
}

func serve(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec := serve(t, h, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginAndMe(t *testing.T) {
	h := newTestRouter(t)

	rec := serve(t, h, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Username: "doctor1", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, h, "doctor1", "password123")
	rec = serve(t, h, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.UserIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, models.RoleDoctor, me.Role)
	assert.Equal(t, "Dr. John Smith", me.FullName)

	assert.Equal(t, http.StatusUnauthorized, serve(t, h, http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, http.MethodGet, "/api/auth/me", "forged", nil).Code)
}

func TestRoleRules(t *testing.T) {
	h := newTestRouter(t)
	tokens := map[models.Role]string{
		models.RoleAdmin:   login(t, h, "admin", "admin123"),
		models.RoleDoctor:  login(t, h, "doctor1", "password123"),
		models.RoleNurse:   login(t, h, "nurse1", "password123"),
		models.RoleBilling: login(t, h, "billing1", "password123"),
	}

	tests := []struct {
		path string
		role models.Role
		want int
	}{
		{"/api/patients", models.RoleBilling, http.StatusOK},
		{"/api/bills", models.RoleBilling, http.StatusOK},
		{"/api/bills", models.RoleNurse, http.StatusForbidden},
		{"/api/bills", models.RoleAdmin, http.StatusOK},
		{"/api/medical-records", models.RoleDoctor, http.StatusOK},
		{"/api/medical-records", models.RoleNurse, http.StatusForbidden},
		{"/api/dashboard/admin", models.RoleAdmin, http.StatusOK},
		{"/api/dashboard/admin", models.RoleDoctor, http.StatusForbidden},
		{"/api/dashboard/doctor/me", models.RoleDoctor, http.StatusOK},
		{"/api/dashboard/doctor/me", models.RoleAdmin, http.StatusForbidden},
		{"/api/dashboard/doctor/2", models.RoleAdmin, http.StatusOK},
		{"/api/dashboard/billing", models.RoleBilling, http.StatusOK},
		{"/api/dashboard/billing", models.RoleNurse, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.path, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tt.path, tokens[tt.role], nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := serve(t, h, http.MethodDelete, "/api/patients/1", tokens[models.RoleNurse], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decodeErr(t, rec).Message)
}

func TestPatientPageEnvelope(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "nurse1", "password123")

	rec := serve(t, h, http.MethodGet, "/api/patients?page=1&size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageResponse[models.Patient]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 5, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.Size)
	assert.Len(t, page.Content, 2)
	assert.False(t, page.First)
	assert.False(t, page.Last)

	rec = serve(t, h, http.MethodGet, "/api/patients/search?query=wilson", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Sarah Wilson", page.Content[0].FullName)
}

func TestValidationAndConflictBodies(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "nurse1", "password123")

	rec := serve(t, h, http.MethodPost, "/api/patients", token, models.PatientRequest{Phone: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErr(t, rec)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, "First name is required", body.Errors["firstName"])

	rec = serve(t, h, http.MethodPut, "/api/appointments/5/status", token, models.AppointmentStatusRequest{Status: models.AppointmentCancelled})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot modify completed appointment", decodeErr(t, rec).Message)

	rec = serve(t, h, http.MethodGet, "/api/patients/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodGet, "/api/patients/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentOverOutstandingIsRejected(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "billing1", "password123")

	rec := serve(t, h, http.MethodPost, "/api/bills/2/payment", token, models.PaymentRequest{Amount: 151, PaymentDate: time.Now()})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment amount cannot exceed outstanding amount", decodeErr(t, rec).Message)

	rec = serve(t, h, http.MethodPost, "/api/bills/2/payment", token, models.PaymentRequest{Amount: 150, PaymentDate: time.Now()})
	require.Equal(t, http.StatusOK, rec.Code)
	var b models.Bill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
}

func TestHealthIsPublic(t *testing.T) {
	h := newTestRouter(t)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/api/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/ready", "", nil).Code)
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/metrics"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 4 << 20

// Credentials supplies the bearer token for outgoing requests and is told when the
// server rejects it
type Credentials interface {
	Credential() (token string, generation uint64)
	Rejected(ctx context.Context, generation uint64) bool
}

// Client is the typed gateway to the system of record
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	logger  zerolog.Logger
	metrics *metrics.Metrics

	Auth           *AuthAPI
	Patients       *PatientsAPI
	Appointments   *AppointmentsAPI
	Bills          *BillsAPI
	MedicalRecords *MedicalRecordsAPI
	Users          *UsersAPI
	Dashboards     *DashboardsAPI
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "client").Logger() }
}

// WithMetrics sets the collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds:   creds,
		logger:  log.Logger.With().Str("component", "client").Logger(),
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthAPI{c: c}
	c.Patients = &PatientsAPI{c: c}
	c.Appointments = &AppointmentsAPI{c: c}
	c.Bills = &BillsAPI{c: c}
	c.MedicalRecords = &MedicalRecordsAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Dashboards = &DashboardsAPI{c: c}
	return c
}

// Close releases idle connections
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// call describes one request
type call struct {
	resource string
	method   string
	path     string
	query    url.Values
	body     any
	// anonymous requests carry no token and never trigger an implicit logout
	anonymous bool
}

// apiError is the error body returned by the server
type apiError struct {
	Status  int               `json:"status"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// do sends the call and decodes a 2xx body into out. Every failure is an AppError.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var generation uint64
	if !cl.anonymous && c.creds != nil {
		var token string
		token, generation = c.creds.Credential()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.RequestDuration.WithLabelValues(cl.resource, cl.method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.Requests.WithLabelValues(cl.resource, cl.method, "transport_error").Inc()
		c.logger.Debug().Err(err).Str("request_id", requestID).Str("path", cl.path).Msg("Request failed")
		if ctx.Err() != nil {
			return apperrors.NewTransportError("request cancelled", ctx.Err())
		}
		return apperrors.NewTransportError("unable to reach the server", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.Requests.WithLabelValues(cl.resource, cl.method, "transport_error").Inc()
		return apperrors.NewTransportError("failed to read response", err)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.metrics.Requests.WithLabelValues(cl.resource, cl.method, "ok").Inc()
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.NewTransportError("invalid response body", err)
		}
		return nil
	}

	appErr := decodeError(resp.StatusCode, raw)
	c.metrics.Requests.WithLabelValues(cl.resource, cl.method, strings.ToLower(string(appErr.Type))).Inc()

	if resp.StatusCode == http.StatusUnauthorized && !cl.anonymous && c.creds != nil {
		c.creds.Rejected(ctx, generation)
	}
	return appErr
}

// decodeError maps a non-2xx response onto the error taxonomy
func decodeError(status int, raw []byte) *apperrors.AppError {
	var body apiError
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		appErr = apperrors.NewValidationError(msg, body.Errors)
	case status == http.StatusUnauthorized:
		appErr = apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, msg, nil)
	case status == http.StatusForbidden:
		appErr = apperrors.NewForbiddenError(msg)
	case status == http.StatusNotFound:
		appErr = apperrors.NewNotFoundError(msg)
	case status == http.StatusConflict:
		appErr = apperrors.NewConflictError(msg)
	default:
		appErr = apperrors.NewTransportError(fmt.Sprintf("server returned status %d: %s", status, msg), nil)
	}
	appErr.Status = status
	return appErr
}

// isNetworkFailure reports a transport failure that never produced a response
func isNetworkFailure(err error) bool {
	appErr, ok := apperrors.As(err)
	return ok && appErr.Type == apperrors.ErrorTypeTransport && appErr.Status == 0 && !errors.Is(err, context.Canceled)
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

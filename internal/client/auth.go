package client

import (
	"context"
	"net/http"

	"github.com/otcheredev/hms-console/internal/models"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// AuthAPI exchanges credentials for a session token
type AuthAPI struct {
	c *Client
}

// Login posts the credentials. Failures come back as auth errors whose reason tells
// bad credentials apart from an unreachable or failing server.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := a.c.do(ctx, call{
		resource:  "auth",
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      models.LoginRequest{Username: username, Password: password},
		anonymous: true,
	}, &resp)
	if err == nil {
		return &resp, nil
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonNetwork, "login request failed", err)
	}
	switch {
	case isNetworkFailure(err):
		return nil, apperrors.NewAuthError(apperrors.AuthReasonNetwork, appErr.Message, err)
	case appErr.Status >= 500:
		return nil, apperrors.NewAuthError(apperrors.AuthReasonServer, appErr.Message, err)
	case appErr.Status == http.StatusBadRequest, appErr.Status == http.StatusUnauthorized, appErr.Status == http.StatusForbidden:
		return nil, apperrors.NewAuthError(apperrors.AuthReasonInvalidCredentials, "invalid username or password", err)
	default:
		return nil, apperrors.NewAuthError(apperrors.AuthReasonServer, appErr.Message, err)
	}
}

// Me returns the identity the server associates with the current token
func (a *AuthAPI) Me(ctx context.Context) (*models.UserIdentity, error) {
	return getOne[models.UserIdentity](ctx, a.c, "auth", "/auth/me")
}

// Health checks that the server answers
func (a *AuthAPI) Health(ctx context.Context) error {
	return a.c.do(ctx, call{resource: "health", method: http.MethodGet, path: "/health", anonymous: true}, nil)
}

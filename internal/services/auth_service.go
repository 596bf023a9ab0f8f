package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// AuthService issues and verifies sandbox session tokens
type AuthService struct {
	repo   *repository.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates an auth service signing HS256 tokens with secret
func NewAuthService(repo *repository.Repository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login checks credentials and returns a signed token with the user's identity
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Validation failed", map[string]string{
			"username": "Username and password are required",
		})
	}

	user, err := s.repo.UserByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !user.Active) {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonInvalidCredentials, "Invalid username or password", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonInvalidCredentials, "Invalid username or password", nil)
	}

	identity := models.UserIdentity{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}
	token, err := s.IssueToken(identity)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, Type: "Bearer", User: identity}, nil
}

// IssueToken signs a token for the identity
func (s *AuthService) IssueToken(u models.UserIdentity) (string, error) {
	now := s.now()
	claims := models.JWTClaims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies a bearer token and returns its claims
func (s *AuthService) ParseToken(token string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, "Invalid or expired token", err)
	}
	if !claims.Role.Valid() || claims.UserID <= 0 {
		return nil, apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, "Invalid token claims", nil)
	}
	return claims, nil
}

// Me returns the identity behind the claims
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserIdentity, error) {
	user, err := s.repo.UserByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	return &models.UserIdentity{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

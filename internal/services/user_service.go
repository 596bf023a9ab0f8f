package services

import (
	"context"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
)

// UserService looks up staff accounts
type UserService struct {
	repo *repository.Repository
}

// NewUserService creates a user service
func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// ByRole lists active staff holding role
func (s *UserService) ByRole(ctx context.Context, role models.Role) []models.StaffUser {
	return s.repo.ActiveUsersByRole(ctx, role)
}

// Get returns one staff member
func (s *UserService) Get(ctx context.Context, id int64) (*models.StaffUser, error) {
	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return nil, notFound("User", err)
	}
	return &u.StaffUser, nil
}

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
)

// User is a staff account with its password hash
type User struct {
	models.StaffUser
	PasswordHash []byte
	CreatedAt    time.Time
}

// CreateUser stores a new account and assigns its id
func (r *Repository) CreateUser(ctx context.Context, u User) User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.ID = r.nextID("user")
	u.CreatedAt = time.Now()
	stored := u
	r.users[u.ID] = &stored
	return u
}

// UserByUsername finds an account by login name, ignoring case
func (r *Repository) UserByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// UserByID finds an account
func (r *Repository) UserByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// ActiveUsersByRole lists active staff holding role, by full name
func (r *Repository) ActiveUsersByRole(ctx context.Context, role models.Role) []models.StaffUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := all(r.users,
		func(u *User) bool { return u.Role == role && u.Active },
		func(a, b *User) int { return strings.Compare(a.FullName, b.FullName) },
	)
	out := make([]models.StaffUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.StaffUser)
	}
	return out
}

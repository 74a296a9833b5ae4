package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

// ErrEmailTaken is returned by Create when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

// Repository handles user persistence.
type Repository struct {
	users *store.Collection[models.User]
}

// NewRepository creates an auth repository over s.
func NewRepository(s store.Store) *Repository {
	return &Repository{users: store.NewCollection[models.User](s, store.Users)}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	all, err := r.users.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user", ID: id.String()}
}

// GetByEmail returns a user by email, ignoring case.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	all, err := r.users.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(all[i].Email, email) {
			return &all[i], nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user", ID: email}
}

// List returns all users in sign-up order.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	return r.users.All(ctx)
}

// Create stores u unless its email is taken. pickRole sees whether u is the first account.
func (r *Repository) Create(ctx context.Context, u models.User, pickRole func(first bool) models.Role) (*models.User, error) {
	err := r.users.Mutate(ctx, func(all []models.User) ([]models.User, error) {
		for i := range all {
			if strings.EqualFold(all[i].Email, u.Email) {
				return nil, ErrEmailTaken
			}
		}
		u.Role = pickRole(len(all) == 0)
		return append(all, u), nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateRole changes a user's role.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	var out models.User
	err := r.users.Mutate(ctx, func(all []models.User) ([]models.User, error) {
		for i := range all {
			if all[i].ID == id {
				all[i].Role = role
				out = all[i]
				return all, nil
			}
		}
		return nil, &models.NotFoundError{Resource: "user", ID: id.String()}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

type Users struct {
	*base
}

// SyncUser is an account update pushed by the identity provider.
type SyncUser struct {
	Subject  string
	Email    string
	Name     *string
	ImageURL *string
}

// Current returns the caller's user record, creating it from the identity
// claims on first access. It returns nil for an unauthenticated caller.
func (s *Users) Current(ctx context.Context, caller *auth.Identity) (*models.User, error) {
	if requireCaller(caller) != nil {
		return nil, nil
	}
	u, err := s.store.GetUserBySubject(ctx, caller.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	u = &models.User{
		ID:        uuid.New(),
		Subject:   caller.Subject,
		Email:     caller.Email,
		Name:      optional(caller.Name),
		ImageURL:  optional(caller.ImageURL),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		// A concurrent request may have created the record first.
		if existing, getErr := s.store.GetUserBySubject(ctx, caller.Subject); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	s.logger.Info("user created", "subject", u.Subject)
	return u, nil
}

// Sync inserts or updates the user for in.Subject. Repeated calls leave
// exactly one record carrying the latest values.
func (s *Users) Sync(ctx context.Context, in SyncUser) (*models.User, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, invalid("subject is required")
	}
	var user *models.User
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		u, err := tx.GetUserBySubject(ctx, in.Subject)
		if errors.Is(err, database.ErrNotFound) {
			user = &models.User{
				ID:        uuid.New(),
				Subject:   in.Subject,
				Email:     in.Email,
				Name:      in.Name,
				ImageURL:  in.ImageURL,
				CreatedAt: s.now(),
			}
			return tx.CreateUser(ctx, user)
		}
		if err != nil {
			return err
		}
		update := &models.UpdateUser{
			ID:       u.ID,
			Email:    models.Set(in.Email),
			Name:     models.Set(in.Name),
			ImageURL: models.Set(in.ImageURL),
		}
		if err := tx.UpdateUser(ctx, update); err != nil {
			return err
		}
		update.Apply(u)
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Package seeders creates the accounts a fresh installation needs.
package seeders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/utils"
)

const minPasswordLength = 6

// SeedAdmin creates the bootstrap admin account. It is a no-op when the email
// is already registered.
func SeedAdmin(ctx context.Context, users repositories.UserRepositoryInterface, email, password string, logger *zap.Logger) (*entities.User, error) {
	if email == "" {
		return nil, errors.New("admin email is empty")
	}

	existing, err := users.FindByEmail(ctx, email)
	if err == nil {
		if !existing.Admin() {
			logger.Warn("account exists but is not an admin", zap.String("email", email))
		} else {
			logger.Info("admin already exists, skipping", zap.String("email", email))
		}
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("could not look up %s: %w", email, err)
	}

	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("admin password must be at least %d characters", minPasswordLength)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin, err := users.CreateUser(ctx, &entities.User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       "Administrator",
		IsAdmin:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create admin: %w", err)
	}
	logger.Info("admin created", zap.String("email", email), zap.Uint64("userID", admin.ID))
	return admin, nil
}

package utils

import (
	"context"

	"ticket-desk/internal/entities"
	"ticket-desk/pkg/contextkeys"
	apperrors "ticket-desk/pkg/errors"
)

// WithUser stores the authenticated caller in ctx.
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, contextkeys.UserKey, user)
}

func GetUserFromCtx(ctx context.Context) (*entities.User, error) {
	user, ok := ctx.Value(contextkeys.UserKey).(*entities.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/service"
	"ticket-desk/pkg/utils"
)

// UserFinder resolves the subject of a token to a stored user.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	users      UserFinder
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, users UserFinder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		users:      users,
		logger:     logger,
	}
}

// Auth requires a valid "Authorization: Bearer <token>" header whose subject
// is an existing user, and stores that user in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.DecodeToken(strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Warn("AuthMiddleware: token rejected", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		user, err := m.users.FindByEmail(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				m.logger.Warn("AuthMiddleware: token subject has no account", zap.String("email", claims.Subject))
				return utils.ErrorResponse(c, apperrors.ErrInvalidToken, m.logger)
			}
			return utils.ErrorResponse(c, err, m.logger)
		}

		c.SetRequest(c.Request().WithContext(utils.WithUser(ctx, user)))
		return next(c)
	}
}

// RequireAdmin must run after Auth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := utils.GetUserFromCtx(c.Request().Context())
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if !user.Admin() {
			m.logger.Warn("AuthMiddleware: admin route denied", zap.Uint64("userID", user.ID), zap.String("path", c.Path()))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
		return next(c)
	}
}

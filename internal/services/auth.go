package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ticket-desk/internal/dto"
	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
	"ticket-desk/pkg/config"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/metrics"
	"ticket-desk/pkg/service"
	"ticket-desk/pkg/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, payload dto.RegisterDTO) (*entities.User, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenResponseDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
	cfg        *config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		logger:     logger,
		cfg:        cfg,
	}
}

// Register creates an account. The configured bootstrap address is the only
// one that gets admin rights.
func (s *AuthService) Register(ctx context.Context, payload dto.RegisterDTO) (*entities.User, error) {
	hashed, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:          payload.Email,
		HashedPassword: hashed,
		FullName:       sanitizeName(payload.FullName),
	}
	if s.cfg.BootstrapAdmin != "" && payload.Email == s.cfg.BootstrapAdmin {
		user.IsAdmin = 1
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			s.logger.Info("Register: email already taken", zap.String("email", payload.Email))
			return nil, err
		}
		s.logger.Error("Register: could not create user", zap.String("email", payload.Email), zap.Error(err))
		return nil, err
	}

	if err := s.cacheRepo.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Register: could not invalidate cached stats", zap.Error(err))
	}

	s.logger.Info("user registered", zap.Uint64("userID", created.ID), zap.Bool("admin", created.Admin()))
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenResponseDTO, error) {
	key := strings.ToLower(payload.Email)
	if err := s.checkLockout(ctx, key); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.handleFailedLoginAttempt(ctx, key)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !utils.CheckPassword(payload.Password, user.HashedPassword) {
		s.handleFailedLoginAttempt(ctx, key)
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, key)

	token, err := s.jwtService.IssueToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("could not issue token: %w", err)
	}

	return &dto.TokenResponseDTO{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwtService.GetAccessTokenTTL().Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, key string) error {
	if _, err := s.cacheRepo.Get(ctx, "lockout:"+key); err == nil {
		s.logger.Warn("Login: account is locked out", zap.String("email", key))
		return apperrors.ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, key string) {
	metrics.LoginFailuresTotal.Inc()

	attemptsKey := "login_attempts:" + key
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Login: could not count failed attempt", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if s.cfg.MaxLoginAttempts > 0 && attempts >= int64(s.cfg.MaxLoginAttempts) {
		_ = s.cacheRepo.Set(ctx, "lockout:"+key, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, key string) {
	_ = s.cacheRepo.Del(ctx, "login_attempts:"+key, "lockout:"+key)
}

package service

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "ticket-desk/pkg/errors"
)

type JwtCustomClaim struct {
	jwt.RegisteredClaims
}

type JWTService interface {
	IssueToken(subject string) (string, error)
	DecodeToken(tokenString string) (*JwtCustomClaim, error)
	GetAccessTokenTTL() time.Duration
}

type jwtService struct {
	secretKey      []byte
	method         jwt.SigningMethod
	accessTokenExp time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewJWTService accepts only HMAC algorithms (HS256, HS384, HS512) since
// tokens are signed with a shared secret.
func NewJWTService(secretKey, algorithm string, accessTokenExp time.Duration, logger *zap.Logger) (JWTService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	if secretKey == "" {
		return nil, errors.New("token signing secret is empty")
	}
	return &jwtService{
		secretKey:      []byte(secretKey),
		method:         method,
		accessTokenExp: accessTokenExp,
		logger:         logger,
		now:            time.Now,
	}, nil
}

func (s *jwtService) IssueToken(subject string) (string, error) {
	now := s.now()
	claims := &JwtCustomClaim{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenExp)),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.accessTokenExp
}

func (s *jwtService) DecodeToken(tokenString string) (*JwtCustomClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, apperrors.ErrInvalidSigningMethod
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, apperrors.ErrTokenSubjectMissing
	}

	return claims, nil
}

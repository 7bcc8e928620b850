package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"ticket-desk/internal/dto"
	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
)

const statsCacheKey = "admin:stats"

type DashboardServiceInterface interface {
	GetStats(ctx context.Context) (*dto.AdminStatsDTO, error)
	GetUsers(ctx context.Context) ([]dto.UserResponseDTO, error)
}

type DashboardService struct {
	ticketRepo repositories.TicketRepositoryInterface
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	statsTTL   time.Duration
	logger     *zap.Logger
}

func NewDashboardService(
	ticketRepo repositories.TicketRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	statsTTL time.Duration,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		statsTTL:   statsTTL,
		logger:     logger,
	}
}

// GetStats serves aggregates from the cache when present. Ticket writes
// drop the cached copy.
func (s *DashboardService) GetStats(ctx context.Context) (*dto.AdminStatsDTO, error) {
	if s.statsTTL > 0 {
		cached, err := s.cacheRepo.Get(ctx, statsCacheKey)
		if err == nil {
			var stats dto.AdminStatsDTO
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
			s.logger.Warn("GetStats: discarding unreadable cache entry")
		} else if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("GetStats: cache read failed", zap.Error(err))
		}
	}

	raw, err := s.ticketRepo.GetStats(ctx)
	if err != nil {
		s.logger.Error("GetStats: could not aggregate tickets", zap.Error(err))
		return nil, err
	}
	stats := newStatsDTO(raw)

	if s.statsTTL > 0 {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cacheRepo.Set(ctx, statsCacheKey, payload, s.statsTTL); err != nil {
				s.logger.Warn("GetStats: cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func newStatsDTO(raw *entities.TicketStats) *dto.AdminStatsDTO {
	var avgRating float64
	if raw.RatedTickets > 0 {
		avgRating = roundOneDecimal(float64(raw.RatingSum) / float64(raw.RatedTickets))
	}
	return &dto.AdminStatsDTO{
		TotalTickets:             raw.TotalTickets,
		OpenTickets:              raw.OpenTickets,
		ResolvedTickets:          raw.ResolvedTickets,
		RatedTickets:             raw.RatedTickets,
		TotalUsers:               raw.TotalUsers,
		AverageRating:            avgRating,
		AverageFirstResponseSecs: roundOneDecimal(raw.AverageFirstResponseSecs),
		ByCategory:               raw.ByCategory,
		ByPriority:               raw.ByPriority,
	}
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *DashboardService) GetUsers(ctx context.Context) ([]dto.UserResponseDTO, error) {
	users, err := s.userRepo.GetUsers(ctx, 0, 0)
	if err != nil {
		s.logger.Error("GetUsers: could not list users", zap.Error(err))
		return nil, err
	}
	return dto.NewUserResponses(users), nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ticket-desk/internal/dto"
	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/metrics"
	"ticket-desk/pkg/utils"
)

const (
	DefaultTicketLimit = 100
	MaxTicketLimit     = 500
)

type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*dto.TicketResponseDTO, error)
	GetTickets(ctx context.Context, query dto.TicketListQuery) ([]dto.TicketResponseDTO, error)
	ReviewTicket(ctx context.Context, id uint64, payload dto.ReviewTicketDTO) (*dto.TicketResponseDTO, error)
}

type TicketService struct {
	repo      repositories.TicketRepositoryInterface
	txManager repositories.TxManagerInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewTicketService(
	repo repositories.TicketRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		repo:      repo,
		txManager: txManager,
		cacheRepo: cacheRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *TicketService) CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*dto.TicketResponseDTO, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &entities.Ticket{
		Title:             strings.TrimSpace(payload.Title),
		Description:       strings.TrimSpace(payload.Description),
		Category:          payload.Category,
		Priority:          payload.Priority,
		ExtractedEntities: payload.ExtractedEntities,
		Status:            entities.TicketStatusNew,
		OwnerID:           user.ID,
	}
	if ticket.Title == "" || ticket.Description == "" {
		return nil, apperrors.NewBadRequestError("title and description must contain text")
	}

	created, err := s.repo.CreateTicket(ctx, ticket)
	if err != nil {
		s.logger.Error("CreateTicket: could not save ticket", zap.Uint64("ownerID", user.ID), zap.Error(err))
		return nil, err
	}
	metrics.TicketsCreatedTotal.WithLabelValues(created.Category).Inc()
	s.invalidateStats(ctx)

	s.logger.Info("ticket created", zap.Uint64("ticketID", created.ID), zap.Uint64("ownerID", user.ID))
	resp := dto.NewTicketResponse(created, false)
	return &resp, nil
}

// GetTickets lists tickets newest first. Admins see every ticket together
// with its owner's name; everyone else sees only their own.
func (s *TicketService) GetTickets(ctx context.Context, query dto.TicketListQuery) ([]dto.TicketResponseDTO, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	filter, err := ticketFilter(query)
	if err != nil {
		return nil, err
	}
	if !user.Admin() {
		filter.OwnerID = &user.ID
	}

	tickets, err := s.repo.GetTickets(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewTicketResponses(tickets, user.Admin()), nil
}

func ticketFilter(query dto.TicketListQuery) (repositories.TicketFilter, error) {
	filter := repositories.TicketFilter{Limit: DefaultTicketLimit}
	if query.Skip != nil {
		if *query.Skip < 0 {
			return filter, apperrors.NewBadRequestError("skip must not be negative")
		}
		filter.Offset = uint64(*query.Skip)
	}
	if query.Limit != nil {
		if *query.Limit < 0 {
			return filter, apperrors.NewBadRequestError("limit must not be negative")
		}
		filter.Limit = uint64(*query.Limit)
	}
	if filter.Limit > MaxTicketLimit {
		filter.Limit = MaxTicketLimit
	}
	return filter, nil
}

// ReviewTicket records the caller's rating on one of their own tickets.
// The first review also fixes first_response_seconds; later reviews only
// replace the rating.
func (s *TicketService) ReviewTicket(ctx context.Context, id uint64, payload dto.ReviewTicketDTO) (*dto.TicketResponseDTO, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if payload.Rating < entities.MinRating || payload.Rating > entities.MaxRating {
		return nil, apperrors.ErrInvalidRating
	}

	var reviewed *entities.Ticket
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repo.FindOwnedTicketForUpdate(ctx, tx, id, user.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrTicketNotFound
			}
			return err
		}

		var firstResponse *int
		if ticket.FirstResponseSeconds == nil {
			seconds := int(s.now().Sub(ticket.CreatedAt).Seconds())
			if seconds < 0 {
				seconds = 0
			}
			firstResponse = &seconds
		}

		reviewed, err = s.repo.UpdateReview(ctx, tx, ticket.ID, payload.Rating, firstResponse)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrTicketNotFound) {
			s.logger.Error("ReviewTicket: could not save review", zap.Uint64("ticketID", id), zap.Error(err))
		}
		return nil, err
	}

	metrics.TicketReviewsTotal.Inc()
	s.invalidateStats(ctx)
	s.logger.Info("ticket reviewed", zap.Uint64("ticketID", id), zap.Int("rating", payload.Rating))

	resp := dto.NewTicketResponse(reviewed, false)
	return &resp, nil
}

func (s *TicketService) invalidateStats(ctx context.Context) {
	if err := s.cacheRepo.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("could not invalidate cached stats", zap.Error(err))
	}
}

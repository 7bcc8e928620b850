package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	apperrors "ticket-desk/pkg/errors"
)

const ticketTable = "tickets"

var ticketSelectFields = []string{
	"id", "title", "description", "category", "priority", "extracted_entities",
	"status", "created_at", "rating", "first_response_seconds", "owner_id",
}

// TicketFilter narrows GetTickets. A nil OwnerID means every owner.
// Limit is always applied unless NoLimit is set.
type TicketFilter struct {
	OwnerID *uint64
	Offset  uint64
	Limit   uint64
	NoLimit bool
}

type TicketRepositoryInterface interface {
	CreateTicket(ctx context.Context, entity *entities.Ticket) (*entities.Ticket, error)
	GetTickets(ctx context.Context, filter TicketFilter) ([]entities.Ticket, error)
	FindOwnedTicketForUpdate(ctx context.Context, tx pgx.Tx, id, ownerID uint64) (*entities.Ticket, error)
	UpdateReview(ctx context.Context, tx pgx.Tx, id uint64, rating int, firstResponseSeconds *int) (*entities.Ticket, error)
	GetStats(ctx context.Context) (*entities.TicketStats, error)
}

type TicketRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTicketRepository(storage *pgxpool.Pool, logger *zap.Logger) TicketRepositoryInterface {
	return &TicketRepository{storage: storage, logger: logger}
}

func scanTicket(row pgx.Row, withOwner bool) (*entities.Ticket, error) {
	var t entities.Ticket
	dest := []interface{}{
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Priority, &t.ExtractedEntities,
		&t.Status, &t.CreatedAt, &t.Rating, &t.FirstResponseSeconds, &t.OwnerID,
	}
	var ownerName *string
	if withOwner {
		dest = append(dest, &ownerName)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if ownerName != nil {
		t.OwnerName = *ownerName
	}
	return &t, nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, entity *entities.Ticket) (*entities.Ticket, error) {
	extracted := entity.ExtractedEntities
	if extracted == nil {
		extracted = map[string]string{}
	}
	query, args, err := psql.Insert(ticketTable).
		Columns("title", "description", "category", "priority", "extracted_entities", "status", "owner_id").
		Values(entity.Title, entity.Description, entity.Category, entity.Priority, extracted, entity.Status, entity.OwnerID).
		Suffix("RETURNING " + joinFields(ticketSelectFields)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build ticket insert: %w", err)
	}

	ticket, err := scanTicket(r.storage.QueryRow(ctx, query, args...), false)
	if err != nil {
		return nil, fmt.Errorf("could not insert ticket: %w", err)
	}
	return ticket, nil
}

// GetTickets returns tickets newest first together with the owner's full name.
func (r *TicketRepository) GetTickets(ctx context.Context, filter TicketFilter) ([]entities.Ticket, error) {
	columns := append(qualify("t", ticketSelectFields), "u.full_name")
	builder := psql.Select(columns...).
		From(ticketTable + " t").
		LeftJoin(userTable + " u ON u.id = t.owner_id").
		OrderBy("t.id DESC").
		Offset(filter.Offset)
	if filter.OwnerID != nil {
		builder = builder.Where(sq.Eq{"t.owner_id": *filter.OwnerID})
	}
	if !filter.NoLimit {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build tickets query: %w", err)
	}
	r.logger.Debug("listing tickets", zap.String("query", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]entities.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows, true)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

// FindOwnedTicketForUpdate locks the ticket row for the rest of tx. A ticket
// owned by someone else is reported as ErrNotFound.
func (r *TicketRepository) FindOwnedTicketForUpdate(ctx context.Context, tx pgx.Tx, id, ownerID uint64) (*entities.Ticket, error) {
	query, args, err := psql.Select(ticketSelectFields...).
		From(ticketTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build ticket query: %w", err)
	}
	return scanTicket(tx.QueryRow(ctx, query, args...), false)
}

// UpdateReview stores the rating. first_response_seconds is only written
// while it is still NULL.
func (r *TicketRepository) UpdateReview(ctx context.Context, tx pgx.Tx, id uint64, rating int, firstResponseSeconds *int) (*entities.Ticket, error) {
	builder := psql.Update(ticketTable).Set("rating", rating).Where(sq.Eq{"id": id})
	if firstResponseSeconds != nil {
		builder = builder.Set("first_response_seconds", sq.Expr("COALESCE(first_response_seconds, ?)", *firstResponseSeconds))
	}
	query, args, err := builder.Suffix("RETURNING " + joinFields(ticketSelectFields)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build review update: %w", err)
	}

	ticket, err := scanTicket(tx.QueryRow(ctx, query, args...), false)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("could not update review: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepository) GetStats(ctx context.Context) (*entities.TicketStats, error) {
	stats := &entities.TicketStats{
		ByCategory: map[string]uint64{},
		ByPriority: map[string]uint64{},
	}

	query, args, err := psql.Select(
		"COUNT(*)",
		"COUNT(rating)",
		"COALESCE(SUM(rating), 0)",
		"COALESCE(AVG(first_response_seconds), 0)::float8",
	).
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", entities.TicketStatusResolved)).
		From(ticketTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build stats query: %w", err)
	}
	err = r.storage.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTickets, &stats.RatedTickets, &stats.RatingSum,
		&stats.AverageFirstResponseSecs, &stats.ResolvedTickets,
	)
	if err != nil {
		return nil, fmt.Errorf("could not read ticket stats: %w", err)
	}
	stats.OpenTickets = stats.TotalTickets - stats.ResolvedTickets

	query, args, err = psql.Select("COUNT(*)").From(userTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build users count: %w", err)
	}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("could not count users: %w", err)
	}

	if err := r.countBy(ctx, "category", stats.ByCategory); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, "priority", stats.ByPriority); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *TicketRepository) countBy(ctx context.Context, column string, into map[string]uint64) error {
	query, args, err := psql.Select(column, "COUNT(*)").From(ticketTable).GroupBy(column).ToSql()
	if err != nil {
		return fmt.Errorf("could not build %s breakdown: %w", column, err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("could not read %s breakdown: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count uint64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

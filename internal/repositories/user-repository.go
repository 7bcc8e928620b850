package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	apperrors "ticket-desk/pkg/errors"
)

const (
	userTable           = "users"
	uniqueViolationCode = "23505"
)

var userSelectFields = []string{"id", "email", "hashed_password", "full_name", "is_admin", "created_at"}

type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, entity *entities.User) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	GetUsers(ctx context.Context, offset, limit uint64) ([]entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(&user.ID, &user.Email, &user.HashedPassword, &user.FullName, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, entity *entities.User) (*entities.User, error) {
	query, args, err := psql.Insert(userTable).
		Columns("email", "hashed_password", "full_name", "is_admin").
		Values(entity.Email, entity.HashedPassword, entity.FullName, entity.IsAdmin).
		Suffix("RETURNING " + joinFields(userSelectFields)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build user insert: %w", err)
	}

	user, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("could not insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query, args, err := psql.Select(userSelectFields...).From(userTable).Where(sq.Eq{"email": email}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build user query: %w", err)
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query, args, err := psql.Select(userSelectFields...).From(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build user query: %w", err)
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) GetUsers(ctx context.Context, offset, limit uint64) ([]entities.User, error) {
	builder := psql.Select(userSelectFields...).From(userTable).OrderBy("id ASC").Offset(offset)
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build users query: %w", err)
	}
	r.logger.Debug("listing users", zap.String("query", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

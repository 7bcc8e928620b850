// Package repotest provides in-memory repositories for tests of the layers
// above the database.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
	apperrors "ticket-desk/pkg/errors"
)

var (
	_ repositories.UserRepositoryInterface   = (*UserRepo)(nil)
	_ repositories.TicketRepositoryInterface = (*TicketRepo)(nil)
	_ repositories.TxManagerInterface        = TxManager{}
)

// UserRepo keys users by email, like the unique index on users.email.
type UserRepo struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]*entities.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]*entities.User{}}
}

func (r *UserRepo) CreateUser(_ context.Context, u *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return nil, apperrors.ErrUserAlreadyExists
	}
	r.nextID++
	stored := *u
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.users[u.Email] = &stored
	out := stored
	return &out, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepo) FindUserByID(_ context.Context, id uint64) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepo) GetUsers(context.Context, uint64, uint64) ([]entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]entities.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// TicketRepo stores tickets in insertion order. Names maps owner ids to the
// full names returned by GetTickets.
type TicketRepo struct {
	mu         sync.Mutex
	Tickets    []*entities.Ticket
	Names      map[uint64]string
	Stats      *entities.TicketStats
	StatsCalls int
}

func NewTicketRepo() *TicketRepo {
	return &TicketRepo{Names: map[uint64]string{}}
}

func (r *TicketRepo) CreateTicket(_ context.Context, t *entities.Ticket) (*entities.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *t
	stored.ID = uint64(len(r.Tickets) + 1)
	stored.CreatedAt = time.Now()
	r.Tickets = append(r.Tickets, &stored)
	out := stored
	return &out, nil
}

func (r *TicketRepo) GetTickets(_ context.Context, filter repositories.TicketFilter) ([]entities.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Ticket, 0)
	for i := len(r.Tickets) - 1; i >= 0; i-- {
		t := *r.Tickets[i]
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		t.OwnerName = r.Names[t.OwnerID]
		out = append(out, t)
	}
	if filter.Offset >= uint64(len(out)) {
		return []entities.Ticket{}, nil
	}
	out = out[filter.Offset:]
	if !filter.NoLimit && uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *TicketRepo) FindOwnedTicketForUpdate(_ context.Context, _ pgx.Tx, id, ownerID uint64) (*entities.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.Tickets {
		if t.ID == id && t.OwnerID == ownerID {
			out := *t
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *TicketRepo) UpdateReview(_ context.Context, _ pgx.Tx, id uint64, rating int, firstResponseSeconds *int) (*entities.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.Tickets {
		if t.ID != id {
			continue
		}
		t.Rating = &rating
		if t.FirstResponseSeconds == nil && firstResponseSeconds != nil {
			v := *firstResponseSeconds
			t.FirstResponseSeconds = &v
		}
		out := *t
		return &out, nil
	}
	return nil, apperrors.ErrNotFound
}

// GetStats aggregates the stored tickets unless Stats is preset.
func (r *TicketRepo) GetStats(context.Context) (*entities.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StatsCalls++
	if r.Stats != nil {
		return r.Stats, nil
	}

	stats := &entities.TicketStats{
		TotalUsers: uint64(len(r.Names)),
		ByCategory: map[string]uint64{},
		ByPriority: map[string]uint64{},
	}
	var responseSum, responses float64
	for _, t := range r.Tickets {
		stats.TotalTickets++
		if t.Status == entities.TicketStatusResolved {
			stats.ResolvedTickets++
		}
		if t.Rating != nil {
			stats.RatedTickets++
			stats.RatingSum += uint64(*t.Rating)
		}
		if t.FirstResponseSeconds != nil {
			responseSum += float64(*t.FirstResponseSeconds)
			responses++
		}
		stats.ByCategory[t.Category]++
		stats.ByPriority[t.Priority]++
	}
	stats.OpenTickets = stats.TotalTickets - stats.ResolvedTickets
	if responses > 0 {
		stats.AverageFirstResponseSecs = responseSum / responses
	}
	return stats, nil
}

// TxManager runs fn without a transaction; the in-memory repositories
// ignore the tx argument.
type TxManager struct{}

func (TxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

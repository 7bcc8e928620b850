package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	"ticket-desk/pkg/database/postgresql"
	apperrors "ticket-desk/pkg/errors"
)

var testPool *pgxpool.Pool

// TestMain connects to TEST_DATABASE_URL and applies the migration log.
// Without it the integration tests in this package are skipped.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		ctx := context.Background()
		pool, err := postgresql.ConnectDB(ctx, dsn, zap.NewNop())
		if err != nil {
			panic(err)
		}
		migrator, err := postgresql.NewMigrator(pool, zap.NewNop())
		if err != nil {
			panic(err)
		}
		if err := migrator.Up(ctx); err != nil {
			panic(err)
		}
		_ = migrator.Close()
		testPool = pool
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE tickets, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedUser(t *testing.T, repo UserRepositoryInterface, email string) *entities.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), &entities.User{Email: email, HashedPassword: "x", FullName: "Name of " + email})
	require.NoError(t, err)
	return user
}

func TestUserRepository_Integration_Duplicate(t *testing.T) {
	requireDB(t)
	repo := NewUserRepository(testPool, zap.NewNop())

	seedUser(t, repo, "dup@example.com")
	_, err := repo.CreateUser(context.Background(), &entities.User{Email: "dup@example.com", HashedPassword: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

	_, err = repo.FindByEmail(context.Background(), "DUP@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTicketRepository_Integration_OwnerFilterAndReview(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	users := NewUserRepository(testPool, zap.NewNop())
	repo := NewTicketRepository(testPool, zap.NewNop())
	tx := NewTxManager(testPool)

	alice := seedUser(t, users, "alice@example.com")
	bob := seedUser(t, users, "bob@example.com")

	created, err := repo.CreateTicket(ctx, &entities.Ticket{
		Title: "Refund", Description: "refund please", Category: "Billing and Payments",
		Priority: "Low", Status: entities.TicketStatusNew, OwnerID: alice.ID,
		ExtractedEntities: map[string]string{"email": "a@b.com"},
	})
	require.NoError(t, err)
	assert.Nil(t, created.Rating)
	assert.Nil(t, created.FirstResponseSeconds)
	assert.Equal(t, "a@b.com", created.ExtractedEntities["email"])

	_, err = repo.CreateTicket(ctx, &entities.Ticket{Title: "Bob", Description: "d", Category: "General Inquiry", Priority: "Low", Status: entities.TicketStatusNew, OwnerID: bob.ID})
	require.NoError(t, err)

	all, err := repo.GetTickets(ctx, TicketFilter{NoLimit: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Name of bob@example.com", all[0].OwnerName)

	own, err := repo.GetTickets(ctx, TicketFilter{OwnerID: &alice.ID, Limit: 100})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, alice.ID, own[0].OwnerID)

	none, err := repo.GetTickets(ctx, TicketFilter{Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, none)

	seconds := 7
	err = tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := repo.FindOwnedTicketForUpdate(ctx, tx, created.ID, bob.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		ticket, err := repo.FindOwnedTicketForUpdate(ctx, tx, created.ID, alice.ID)
		require.NoError(t, err)
		updated, err := repo.UpdateReview(ctx, tx, ticket.ID, 3, &seconds)
		require.NoError(t, err)
		require.NotNil(t, updated.Rating)
		assert.Equal(t, 3, *updated.Rating)
		return nil
	})
	require.NoError(t, err)

	other := 99
	err = tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		updated, err := repo.UpdateReview(ctx, tx, created.ID, 4, &other)
		require.NoError(t, err)
		require.NotNil(t, updated.FirstResponseSeconds)
		assert.Equal(t, 7, *updated.FirstResponseSeconds)
		return nil
	})
	require.NoError(t, err)

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.TotalTickets)
	assert.Equal(t, uint64(1), stats.RatedTickets)
	assert.Equal(t, uint64(4), stats.RatingSum)
	assert.Equal(t, uint64(2), stats.TotalUsers)
	assert.Equal(t, uint64(1), stats.ByCategory["Billing and Payments"])
}

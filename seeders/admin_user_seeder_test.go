package seeders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories/repotest"
	"ticket-desk/pkg/utils"
)

func TestSeedAdmin(t *testing.T) {
	users := repotest.NewUserRepo()
	ctx := context.Background()

	admin, err := SeedAdmin(ctx, users, "admin@example.com", "secret1", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, admin.Admin())
	assert.True(t, utils.CheckPassword("secret1", admin.HashedPassword))

	again, err := SeedAdmin(ctx, users, "admin@example.com", "different", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.True(t, utils.CheckPassword("secret1", again.HashedPassword))
}

func TestSeedAdmin_Rejects(t *testing.T) {
	users := repotest.NewUserRepo()

	_, err := SeedAdmin(context.Background(), users, "", "secret1", zap.NewNop())
	assert.Error(t, err)

	_, err = SeedAdmin(context.Background(), users, "admin@example.com", "123", zap.NewNop())
	assert.Error(t, err)
}

func TestSeedAdmin_KeepsExistingUser(t *testing.T) {
	users := repotest.NewUserRepo()
	_, err := users.CreateUser(context.Background(), &entities.User{Email: "admin@example.com", HashedPassword: "x"})
	require.NoError(t, err)

	got, err := SeedAdmin(context.Background(), users, "admin@example.com", "secret1", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, got.Admin())
}

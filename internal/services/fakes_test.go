package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
	"ticket-desk/pkg/utils"
)

func newCache(t *testing.T) (*miniredis.Miniredis, repositories.CacheRepositoryInterface) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, repositories.NewRedisCacheRepository(client)
}

func asUser(u *entities.User) context.Context {
	return utils.WithUser(context.Background(), u)
}

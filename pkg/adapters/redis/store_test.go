package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/stitch/pkg/adapters/redis"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunRequestStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	err = store.Save(ctx, &domain.RequestSummary{RunID: "run", RequestID: "r1", Valid: true})
	assert.NoError(t, err)

	ids, err := store.List(ctx, "run")
	assert.NoError(t, err)
	assert.Contains(t, ids, "r1")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "run", "r1")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err = store.Save(ctx, &domain.RequestSummary{RunID: "run", RequestID: "r1"})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:run:r1"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:run:index"), "Expected index with custom prefix to exist")

	ids, err := store.List(ctx, "run")
	assert.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}

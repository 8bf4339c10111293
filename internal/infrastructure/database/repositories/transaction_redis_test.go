package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisTransactionRepository(t *testing.T) {
	cnf, err := config.LoadFromEnv()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: cnf.Redis.Addr, Password: cnf.Redis.Password, DB: cnf.Redis.DB})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", cnf.Redis.Addr, err)
	}

	prefix := "txwebhook_test_" + uuid.New().String()
	reset := func() {
		require.NoError(t, deleteRedisKeys(client, prefix))
	}
	defer reset()

	testTransactionRepository(t, NewRedisTransactionRepository(client, prefix), reset)
}

func deleteRedisKeys(client *redis.Client, prefix string) error {
	ctx := context.Background()
	iter := client.Scan(ctx, 0, prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Package testutil provides shared helpers for promptwait tests.
package testutil

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisAddr = "localhost:6379"
	defaultRedisDB   = 15
)

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// RedisAddr returns the address outcome-publishing tests use: REDIS_ADDR when set,
// otherwise the default local port.
func RedisAddr() string {
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		return addr
	}
	return defaultRedisAddr
}

// redisDB picks the database index from TEST_REDIS_DB, defaulting to a high index
// that a developer's local data is unlikely to live in.
func redisDB(t testing.TB) int {
	v := strings.TrimSpace(os.Getenv("TEST_REDIS_DB"))
	if v == "" {
		return defaultRedisDB
	}
	db, err := strconv.Atoi(v)
	if err != nil || db < 0 {
		t.Fatalf("invalid TEST_REDIS_DB=%q", v)
	}
	return db
}

// SetupTestRedis connects to the test Redis and empties its database before and
// after the test. The test is skipped when Redis cannot be reached, unless
// TEST_REQUIRE_REDIS is set, in which case it fails.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := RedisAddr()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: redisDB(t)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if required, _ := strconv.ParseBool(os.Getenv("TEST_REQUIRE_REDIS")); required {
			t.Fatalf("redis unavailable at %s: %v", addr, err)
		}
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis test db: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cleanupCancel()
		if err := client.FlushDB(cleanupCtx).Err(); err != nil {
			t.Logf("flush redis test db: %v", err)
		}
		_ = client.Close()
	})
	return client
}

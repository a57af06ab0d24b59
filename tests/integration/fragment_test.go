//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/html-fragment-cache/internal/testutil"
	"github.com/Sternrassler/html-fragment-cache/pkg/cache"
	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
	"github.com/Sternrassler/html-fragment-cache/pkg/warmup"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newRedisService(t *testing.T, redisClient *redis.Client) *fragment.Service {
	t.Helper()

	reg := cache.NewRegistry()
	if err := reg.Register(fragment.DefaultStore, cache.NewManager(redisClient)); err != nil {
		t.Fatalf("register store: %v", err)
	}

	svc, err := fragment.New(fragment.DefaultConfig(), reg, fragment.WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// TestFragmentLifecycle covers remember, hit, forget and flush against a real Redis.
func TestFragmentLifecycle(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	svc := newRedisService(t, redisClient)

	hello := testutil.NewCountingBuilder("Hello")
	got, err := svc.RememberHTML(ctx, "widget:123", hello.Build, fragment.WithVariant("widget"))
	if err != nil {
		t.Fatalf("RememberHTML: %v", err)
	}
	if got != "Hello" {
		t.Errorf("got %q, want Hello", got)
	}

	stored, err := redisClient.Get(ctx, "widget:widget:123:v1").Result()
	if err != nil {
		t.Fatalf("fragment not in Redis: %v", err)
	}
	if stored != "Hello" {
		t.Errorf("stored %q, want Hello", stored)
	}

	remaining, err := redisClient.TTL(ctx, "widget:widget:123:v1").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if remaining <= 5*time.Hour || remaining > 6*time.Hour {
		t.Errorf("TTL = %v, want about 6h", remaining)
	}

	changed := testutil.NewCountingBuilder("Changed")
	got, _ = svc.RememberHTML(ctx, "widget:123", changed.Build, fragment.WithVariant("widget"))
	if got != "Hello" {
		t.Errorf("cached read got %q, want Hello", got)
	}
	if changed.Calls() != 0 {
		t.Errorf("builder ran %d times on a hit", changed.Calls())
	}

	if err := svc.Forget(ctx, "widget:123", fragment.WithVariant("widget")); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	got, _ = svc.RememberHTML(ctx, "widget:123", changed.Build, fragment.WithVariant("widget"))
	if got != "Changed" {
		t.Errorf("after forget got %q, want Changed", got)
	}

	if err := svc.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	n, err := redisClient.DBSize(ctx).Result()
	if err != nil {
		t.Fatalf("DBSize: %v", err)
	}
	if n != 0 {
		t.Errorf("DBSize after flush = %d, want 0", n)
	}
}

// TestConcurrentRemember verifies that concurrent misses in one process render once.
func TestConcurrentRemember(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	svc := newRedisService(t, redisClient)

	builder := testutil.NewCountingBuilder("<ul><li>slow</li></ul>")
	slow := func(ctx context.Context) (any, error) {
		time.Sleep(50 * time.Millisecond)
		return builder.Build(ctx)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RememberHTML(ctx, "customer:7", slow); err != nil {
				t.Errorf("RememberHTML: %v", err)
			}
		}()
	}
	wg.Wait()

	if builder.Calls() != 1 {
		t.Errorf("builder ran %d times, want 1", builder.Calls())
	}
}

// TestWarmupAgainstRedis pre-renders a batch of fragments into Redis.
func TestWarmupAgainstRedis(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	svc := newRedisService(t, redisClient)

	ids := []string{"customer:1", "customer:2", "customer:3"}
	jobs := warmup.Jobs(ids, func(id string) fragment.Builder {
		return fragment.Static("<p>" + id + "</p>")
	})

	results, err := warmup.NewWarmer(svc, warmup.DefaultConfig()).Warm(ctx, jobs)
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if len(results) != len(ids) {
		t.Fatalf("got %d results, want %d", len(results), len(ids))
	}

	for _, id := range ids {
		key := svc.Key(id)
		if n, _ := redisClient.Exists(ctx, key).Result(); n != 1 {
			t.Errorf("key %s missing after warmup", key)
		}
	}
}

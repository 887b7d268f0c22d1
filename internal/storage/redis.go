// Package storage provides the Redis-backed verdict cache. Repeat
// verification of the same report is served from the cache instead of
// re-running the cascade.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guardline/report-verifier/internal/domain"
)

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// connectionTimeout bounds the startup ping.
const connectionTimeout = 5 * time.Second

const verdictKeyPrefix = "verifier:verdict:"

// NewClient creates a Redis client and verifies the connection.
func NewClient(address, password string, db int) (*redis.Client, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// VerdictCache stores fake verdicts keyed by report id with a TTL.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVerdictCache(client *redis.Client, ttl time.Duration) *VerdictCache {
	return &VerdictCache{client: client, ttl: ttl}
}

// Get returns the cached verdict for a report, or nil on a miss.
func (c *VerdictCache) Get(ctx context.Context, reportID string) (*domain.FakeVerdict, error) {
	raw, err := c.client.Get(ctx, verdictKeyPrefix+reportID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached verdict: %w", err)
	}

	var verdict domain.FakeVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("decode cached verdict: %w", err)
	}
	return &verdict, nil
}

// Set caches the verdict for a report for the configured TTL.
func (c *VerdictCache) Set(ctx context.Context, reportID string, verdict *domain.FakeVerdict) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := c.client.Set(ctx, verdictKeyPrefix+reportID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache verdict: %w", err)
	}
	return nil
}

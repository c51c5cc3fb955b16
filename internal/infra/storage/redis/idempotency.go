package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"homestay/internal/app/middleware"
)

const keyPrefix = "idempotency:"

// IdempotencyStore keeps command results in redis with a TTL, so replayed
// requests across process restarts still return the original result.
type IdempotencyStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{Client: client, TTL: ttl}
}

type storedRecord struct {
	Key        string    `json:"key"`
	Payload    []byte    `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	raw, err := s.Client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("redis idempotency get: %w", err)
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("redis idempotency decode: %w", err)
	}
	return middleware.IdempotencyRecord{
		Key:        stored.Key,
		Payload:    stored.Payload,
		OccurredAt: stored.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	raw, err := json.Marshal(storedRecord{
		Key:        rec.Key,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("redis idempotency encode: %w", err)
	}
	if err := s.Client.Set(ctx, keyPrefix+rec.Key, raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)

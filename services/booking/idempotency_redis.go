package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timeswap/models"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyKeyPrefix = "idempotency:booking:"
	idempotencyTTL       = 24 * time.Hour
	// a key that keeps vanishing between GET and SETNX is treated as busy
	maxClaimAttempts = 3
)

// idempotencyStore is the part of *redis.Client the gateway uses.
type idempotencyStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisIdempotencyGateway shares idempotency state across API instances.
type RedisIdempotencyGateway struct {
	client idempotencyStore
}

func NewRedisIdempotencyGateway(client *redis.Client) *RedisIdempotencyGateway {
	return &RedisIdempotencyGateway{client: client}
}

func (g *RedisIdempotencyGateway) key(k string) string {
	return idempotencyKeyPrefix + k
}

func (g *RedisIdempotencyGateway) Reserve(ctx context.Context, key string) (string, error) {
	k := g.key(key)

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		data, err := g.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			raw, _ := json.Marshal(idempotencyState{Status: idempotencyProcessing})
			claimed, err := g.client.SetNX(ctx, k, raw, idempotencyTTL).Result()
			if err != nil {
				return "", fmt.Errorf("redis setnx: %w", err)
			}
			if !claimed {
				// Someone claimed it between GET and SETNX; read their state.
				continue
			}
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("redis get: %w", err)
		}

		var st idempotencyState
		if err := json.Unmarshal(data, &st); err != nil {
			return "", fmt.Errorf("redis unmarshal: %w", err)
		}
		switch st.Status {
		case idempotencySuccess:
			return st.BookingID, nil
		case idempotencyProcessing:
			return "", models.Reject(models.ReasonDuplicateRequest, "request %s is already being processed", key)
		default:
			// Unknown state left by an older writer; take it over.
			raw, _ := json.Marshal(idempotencyState{Status: idempotencyProcessing})
			if err := g.client.Set(ctx, k, raw, idempotencyTTL).Err(); err != nil {
				return "", fmt.Errorf("redis set: %w", err)
			}
			return "", nil
		}
	}
	return "", models.Reject(models.ReasonDuplicateRequest, "request %s is contended", key)
}

func (g *RedisIdempotencyGateway) MarkSuccess(ctx context.Context, key, bookingID string) error {
	raw, err := json.Marshal(idempotencyState{Status: idempotencySuccess, BookingID: bookingID})
	if err != nil {
		return err
	}
	return g.client.Set(ctx, g.key(key), raw, idempotencyTTL).Err()
}

func (g *RedisIdempotencyGateway) MarkFailure(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.key(key)).Err()
}

package booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"timeswap/models"

	"github.com/go-redis/redis/v8"
)

// racingStore never has the key on GET yet always loses SETNX, as if another
// instance claimed and freed it in between every time.
type racingStore struct {
	gets, setnxs int
}

func (r *racingStore) Get(context.Context, string) *redis.StringCmd {
	r.gets++
	return redis.NewStringResult("", redis.Nil)
}

func (r *racingStore) SetNX(context.Context, string, interface{}, time.Duration) *redis.BoolCmd {
	r.setnxs++
	return redis.NewBoolResult(false, nil)
}

func (r *racingStore) Set(context.Context, string, interface{}, time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (r *racingStore) Del(context.Context, ...string) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func TestRedisReserveGivesUpOnContendedKey(t *testing.T) {
	store := &racingStore{}
	gw := &RedisIdempotencyGateway{client: store}

	_, err := gw.Reserve(context.Background(), "student:k1")
	if !errors.Is(err, models.ErrDuplicateRequest) {
		t.Fatalf("expected DuplicateRequest, got %v", err)
	}
	if store.setnxs != maxClaimAttempts {
		t.Fatalf("expected %d claim attempts, got %d", maxClaimAttempts, store.setnxs)
	}
}

type mapStore struct{ data map[string]string }

func (m *mapStore) Get(_ context.Context, k string) *redis.StringCmd {
	v, ok := m.data[k]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mapStore) SetNX(_ context.Context, k string, v interface{}, _ time.Duration) *redis.BoolCmd {
	if _, ok := m.data[k]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[k] = string(v.([]byte))
	return redis.NewBoolResult(true, nil)
}

func (m *mapStore) Set(_ context.Context, k string, v interface{}, _ time.Duration) *redis.StatusCmd {
	switch val := v.(type) {
	case []byte:
		m.data[k] = string(val)
	case string:
		m.data[k] = val
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mapStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisReserveLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &mapStore{data: map[string]string{}}
	gw := &RedisIdempotencyGateway{client: store}

	if id, err := gw.Reserve(ctx, "k"); err != nil || id != "" {
		t.Fatalf("first claim: %q %v", id, err)
	}
	if _, err := gw.Reserve(ctx, "k"); !errors.Is(err, models.ErrDuplicateRequest) {
		t.Fatalf("in-flight duplicate: %v", err)
	}
	if err := gw.MarkSuccess(ctx, "k", "booking-1"); err != nil {
		t.Fatalf("mark success: %v", err)
	}
	if id, err := gw.Reserve(ctx, "k"); err != nil || id != "booking-1" {
		t.Fatalf("replay: %q %v", id, err)
	}

	var st idempotencyState
	if err := json.Unmarshal([]byte(store.data[idempotencyKeyPrefix+"k"]), &st); err != nil || st.BookingID != "booking-1" {
		t.Fatalf("stored state: %+v %v", st, err)
	}
}

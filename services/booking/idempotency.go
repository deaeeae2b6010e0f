package booking

import (
	"context"
	"sync"

	"timeswap/models"
)

const (
	idempotencyProcessing = "processing"
	idempotencySuccess    = "success"
)

// IdempotencyGateway remembers booking requests by client key so a retried
// create returns the original booking instead of charging twice.
type IdempotencyGateway interface {
	// Reserve claims key. It returns the booking id of an earlier successful
	// request, "" when the caller now owns the key, or a DuplicateRequest
	// rejection while another request with the same key is in flight.
	Reserve(ctx context.Context, key string) (string, error)
	MarkSuccess(ctx context.Context, key, bookingID string) error
	// MarkFailure forgets key so the client may retry.
	MarkFailure(ctx context.Context, key string) error
}

type idempotencyState struct {
	Status    string `json:"status"`
	BookingID string `json:"bookingId,omitempty"`
}

type MemoryIdempotencyGateway struct {
	mu    sync.Mutex
	state map[string]idempotencyState
}

func NewMemoryIdempotencyGateway() *MemoryIdempotencyGateway {
	return &MemoryIdempotencyGateway{state: make(map[string]idempotencyState)}
}

func (g *MemoryIdempotencyGateway) Reserve(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.state[key]
	if !ok {
		g.state[key] = idempotencyState{Status: idempotencyProcessing}
		return "", nil
	}
	if st.Status == idempotencySuccess {
		return st.BookingID, nil
	}
	return "", models.Reject(models.ReasonDuplicateRequest, "request %s is already being processed", key)
}

func (g *MemoryIdempotencyGateway) MarkSuccess(_ context.Context, key, bookingID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state[key] = idempotencyState{Status: idempotencySuccess, BookingID: bookingID}
	return nil
}

func (g *MemoryIdempotencyGateway) MarkFailure(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.state, key)
	return nil
}

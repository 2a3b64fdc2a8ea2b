package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore simulates a broken idempotency store
type flakyStore struct{}

func (s *flakyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, assert.AnError
}

func (s *flakyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return false, assert.AnError
}

func (s *flakyStore) Close() error { return nil }

// memStore is a minimal in-memory IdempotencyStore for tests
type memStore struct {
	keys map[string]bool
}

func newMemStore() *memStore { return &memStore{keys: make(map[string]bool)} }

func (s *memStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return s.keys[key], nil
}

func (s *memStore) Close() error { return nil }

func TestIdempotentHandler_ProcessesOnce(t *testing.T) {
	inner := &recordingHandler{types: []string{"due.paid"}}
	handler := NewIdempotentHandler(inner, newMemStore(), zap.NewNop())

	evt := newTestEvent("due.paid")

	require.NoError(t, handler.Handle(context.Background(), evt))
	require.NoError(t, handler.Handle(context.Background(), evt))

	assert.Equal(t, 1, inner.received())
}

func TestIdempotentHandler_DistinctEventsBothProcessed(t *testing.T) {
	inner := &recordingHandler{types: []string{"due.paid"}}
	handler := NewIdempotentHandler(inner, newMemStore(), zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), newTestEvent("due.paid")))
	require.NoError(t, handler.Handle(context.Background(), newTestEvent("due.paid")))

	assert.Equal(t, 2, inner.received())
}

func TestIdempotentHandler_FailedEventStaysRetryable(t *testing.T) {
	inner := &recordingHandler{types: []string{"due.paid"}, err: assert.AnError}
	store := newMemStore()
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	evt := newTestEvent("due.paid")

	require.Error(t, handler.Handle(context.Background(), evt))

	// The failure must not leave a marker behind
	inner.err = nil
	require.NoError(t, handler.Handle(context.Background(), evt))
	assert.Equal(t, 2, inner.received())
}

func TestIdempotentHandler_BrokenStoreStillDelivers(t *testing.T) {
	inner := &recordingHandler{types: []string{"due.paid"}}
	handler := NewIdempotentHandler(inner, &flakyStore{}, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), newTestEvent("due.paid")))
	assert.Equal(t, 1, inner.received())
}

func TestIdempotentHandler_ExposesWrappedEventTypes(t *testing.T) {
	inner := &recordingHandler{types: []string{"due.assigned", "due.paid"}}
	handler := NewIdempotentHandler(inner, newMemStore(), zap.NewNop())

	assert.Equal(t, []string{"due.assigned", "due.paid"}, handler.EventTypes())
}

package outbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []Event
	sent    []int64
	failed  []int64
}

func (s *fakeStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, id)
	return nil
}

type fakeProducer struct {
	mu       sync.Mutex
	messages []kafka.Message
	failKeys map[string]bool
	written  chan struct{}
}

func (p *fakeProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		if p.failKeys[string(m.Key)] {
			return errors.New("broker unavailable")
		}
		p.messages = append(p.messages, m)
	}
	select {
	case p.written <- struct{}{}:
	default:
	}
	return nil
}

func TestRelayDispatchesPendingEvents(t *testing.T) {
	store := &fakeStore{pending: []Event{
		{ID: 1, AggregateType: "order", AggregateID: "o-1", Type: "OrderCreated", Payload: []byte(`{}`), Traceparent: "00-aa-bb-01"},
		{ID: 2, AggregateType: "stock", AggregateID: "p-1", Type: "StockReceived", Payload: []byte(`{}`)},
	}}
	producer := &fakeProducer{written: make(chan struct{}, 2)}
	log := slog.New(slog.DiscardHandler)

	relay := NewRelay(log, store, NewDispatcher(log, producer, "warehouse.events"), "relay-test").
		WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	select {
	case <-producer.written:
	case <-time.After(2 * time.Second):
		t.Fatal("relay never dispatched")
	}
	// Give MarkSent a moment to land before stopping the loop.
	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sent) == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	producer.mu.Lock()
	defer producer.mu.Unlock()
	require.Len(t, producer.messages, 2)
	assert.Equal(t, "o-1", string(producer.messages[0].Key))
	assert.Equal(t, "warehouse.events", producer.messages[0].Topic)

	var traceparent string
	for _, h := range producer.messages[0].Headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	assert.Equal(t, "00-aa-bb-01", traceparent)
}

func TestRelayMarksFailedAndKeepsGoing(t *testing.T) {
	store := &fakeStore{pending: []Event{
		{ID: 1, AggregateID: "bad", Type: "OrderCreated"},
		{ID: 2, AggregateID: "good", Type: "OrderCompleted"},
	}}
	producer := &fakeProducer{failKeys: map[string]bool{"bad": true}, written: make(chan struct{}, 1)}
	log := slog.New(slog.DiscardHandler)

	relay := NewRelay(log, store, NewDispatcher(log, producer, "warehouse.events"), "relay-test").
		WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.failed) == 1 && len(store.sent) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1}, store.failed)
	assert.Equal(t, []int64{2}, store.sent)
}

package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/model"
)

type captureTarget struct {
	mu     sync.Mutex
	events []model.Event
}

func (c *captureTarget) Notify(_ context.Context, event model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureTarget) snapshot() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Event(nil), c.events...)
}

func testEvent(eventType model.EventType) model.Event {
	return model.NewEvent(eventType, &model.Reservation{
		ID:        1,
		TableID:   1,
		StartTime: time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
		Status:    model.ReservationStatusPending,
	})
}

func TestDispatcherFanOut(t *testing.T) {
	first := &captureTarget{}
	second := &captureTarget{}
	dispatcher := NewDispatcher(zap.NewNop(), first, second)

	created := testEvent(model.EventReservationCreated)
	cancelled := testEvent(model.EventReservationCancelled)
	dispatcher.Notify(context.Background(), created)
	dispatcher.Notify(context.Background(), cancelled)

	// Close drains the buffer before returning.
	dispatcher.Close()

	for _, target := range []*captureTarget{first, second} {
		got := target.snapshot()
		require.Len(t, got, 2)
		assert.Equal(t, created.ID, got[0].ID)
		assert.Equal(t, cancelled.ID, got[1].ID)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// A target that blocks keeps the worker busy so the buffer fills up.
	release := make(chan struct{})
	blocked := blockingTarget{release: release}
	dispatcher := NewDispatcher(zap.NewNop(), blocked)

	// One event occupies the worker, the rest fill the 64-slot buffer;
	// everything beyond that is dropped without blocking the caller.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			dispatcher.Notify(context.Background(), testEvent(model.EventReservationCreated))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full buffer")
	}

	close(release)
	dispatcher.Close()
}

func TestDispatcherCloseIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(zap.NewNop())
	dispatcher.Close()
	dispatcher.Close()
}

func TestDispatcherNotifyAfterClose(t *testing.T) {
	target := &captureTarget{}
	dispatcher := NewDispatcher(zap.NewNop(), target)

	dispatcher.Notify(context.Background(), testEvent(model.EventReservationCreated))
	dispatcher.Close()

	// A late emitter gets its event dropped, not a panic.
	dispatcher.Notify(context.Background(), testEvent(model.EventReservationCancelled))

	assert.Len(t, target.snapshot(), 1)
}

type blockingTarget struct {
	release chan struct{}
}

func (b blockingTarget) Notify(context.Context, model.Event) {
	<-b.release
}

package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/model"
)

// Notifier receives reservation lifecycle events. Implementations must not
// assume the booking transaction is still open and must never block it.
type Notifier interface {
	Notify(ctx context.Context, event model.Event)
}

// Nop discards every event. Used when no downstream consumer is configured
// and as a test stand-in.
type Nop struct{}

func (Nop) Notify(context.Context, model.Event) {}

// Dispatcher fans events out to its targets from a background goroutine.
// Notify never blocks: when the buffer is full the event is dropped with a
// warning, because delivery must not stall the booking path.
type Dispatcher struct {
	targets []Notifier
	events  chan model.Event
	logger  *zap.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(logger *zap.Logger, targets ...Notifier) *Dispatcher {
	d := &Dispatcher{
		targets: targets,
		events:  make(chan model.Event, 64),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, event model.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping event",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
		)
		return
	}

	select {
	case d.events <- event:
	default:
		d.logger.Warn("event buffer full, dropping event",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
		)
	}
}

// Close stops the dispatcher after draining buffered events. Events offered
// after Close are dropped.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		close(d.events)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for event := range d.events {
		for _, target := range d.targets {
			target.Notify(context.Background(), event)
		}
	}
}

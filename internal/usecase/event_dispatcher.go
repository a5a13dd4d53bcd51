package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/platform/id"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

const defaultEventTimeout = 5 * time.Second

type EventSink struct {
	Name      string
	Publisher event.Publisher
}

// EventDispatcher fans events out to every sink on a bounded worker pool.
// Notify never blocks and never returns delivery errors.
type EventDispatcher struct {
	pool    *ants.Pool
	sinks   []EventSink
	ids     id.Generator
	timeout time.Duration
	logger  *logging.Logger
	now     func() time.Time

	// mu orders pending.Add in Notify before the pending.Wait in Close.
	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

func NewEventDispatcher(
	workers int,
	timeout time.Duration,
	ids id.Generator,
	logger *logging.Logger,
	sinks ...EventSink,
) (*EventDispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = defaultEventTimeout
	}
	logger = logger.Named("usecase.events")

	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			logger.Error("event worker panicked", "panic", fmt.Sprint(p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create event worker pool: %w", err)
	}

	active := make([]EventSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink.Publisher == nil {
			continue
		}
		if strings.TrimSpace(sink.Name) == "" {
			sink.Name = fmt.Sprintf("sink-%d", len(active))
		}
		active = append(active, sink)
	}

	return &EventDispatcher{
		pool:    pool,
		sinks:   active,
		ids:     ids,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (d *EventDispatcher) Notify(ctx context.Context, evt event.Event) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	if evt.ID == "" && d.ids != nil {
		if generated, err := d.ids.NewID(); err == nil {
			evt.ID = generated
		}
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = d.now().UTC()
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.logger.WarnContext(ctx, "event dropped, dispatcher closed",
			"event_kind", string(evt.Kind),
			"user_id", evt.UserID,
		)
		return
	}
	d.pending.Add(1)
	d.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	if err := d.pool.Submit(func() {
		defer d.pending.Done()
		d.deliver(detached, evt)
	}); err != nil {
		d.pending.Done()
		d.logger.WarnContext(ctx, "event dropped",
			"event_kind", string(evt.Kind),
			"user_id", evt.UserID,
			"error", err,
		)
	}
}

func (d *EventDispatcher) deliver(ctx context.Context, evt event.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	for _, sink := range d.sinks {
		if err := sink.Publisher.Publish(ctx, evt); err != nil {
			d.logger.WarnContext(ctx, "publish event failed",
				"sink", sink.Name,
				"event_id", evt.ID,
				"event_kind", string(evt.Kind),
				"user_id", evt.UserID,
				"error", err,
			)
		}
	}
}

// Close stops accepting events, waits for in-flight deliveries until ctx is
// done, then releases the pool. Later calls are no-ops.
func (d *EventDispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()

	defer d.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for pending events: %w", ctx.Err())
	}
}

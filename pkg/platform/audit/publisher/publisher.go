// Package publisher decouples audit emission from persistence. In sync mode
// (default) Emit appends directly; with an async buffer events flow through
// a channel drained by a background goroutine, and Close drains the backlog
// before returning.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "proofgate/pkg/platform/audit"
)

// Publisher fans audit events out to the store and any best-effort sinks.
type Publisher struct {
	store  audit.Store
	sinks  []audit.Sink
	logger *slog.Logger

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. When the buffer is full, Emit drops the event rather
// than blocking the request path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithSink attaches a best-effort side channel.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sink)
	}
}

// WithLogger sets the logger used for drop and sink-failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher builds a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode a full buffer drops the event; audit
// must never block or fail a verification request.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.deliver(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("audit buffer full, event dropped", "action", event.Action)
		return nil
	}
}

// ListRecent exposes the store's recent events for the admin surface.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains buffered events and stops the background goroutine. Safe to
// call multiple times.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Error("audit append failed", "action", event.Action, "error", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	err := p.store.Append(ctx, event)
	for _, sink := range p.sinks {
		if sinkErr := sink.Publish(ctx, event); sinkErr != nil {
			p.logger.Warn("audit sink publish failed", "action", event.Action, "error", sinkErr)
		}
	}
	return err
}

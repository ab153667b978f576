// Package event carries domain events from the orchestrators to whoever
// reacts to them. Dispatch is synchronous and in-process; a bridge
// subscriber forwards events to the external bus, so same-process and
// cross-process reactions hang off the same Publish call.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
)

// HandlerFunc reacts to one event. Errors are aggregated by Publish; the
// caller decides whether a failed reaction is fatal.
type HandlerFunc func(ctx context.Context, e domain.Event) error

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]HandlerFunc)}
}

// Subscribe registers a handler for every event published on the topic.
func (d *Dispatcher) Subscribe(topic string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[topic] = append(d.handlers[topic], h)
}

// Publish delivers the event to every subscriber of its topic, in
// registration order. All subscribers run even if an earlier one fails;
// the joined error is returned.
func (d *Dispatcher) Publish(ctx context.Context, e domain.Event) error {
	d.mu.RLock()
	subs := d.handlers[e.Topic()]
	d.mu.RUnlock()

	var errs []error
	for _, h := range subs {
		if err := h(ctx, e); err != nil {
			zlog.Logger.Error().
				Err(err).
				Str("topic", e.Topic()).
				Msg("event handler failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

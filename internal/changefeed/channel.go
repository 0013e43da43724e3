// Package changefeed adapts the remote store's notification stream into
// per-collection subscriptions. Delivery is at-least-once: after every
// reconnect each subscribed collection receives a synthetic refresh hint, so
// notifications missed while disconnected still lead to a refetch.
package changefeed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/metrics"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// Handler receives change events of one collection.
type Handler func(models.ChangeEvent)

// Listener is a raw notification source. Listen blocks until ctx is done or
// the connection fails; it calls ready once it is receiving notifications.
type Listener interface {
	Listen(ctx context.Context, ready func(), emit func(models.ChangeEvent)) error
}

// Subscription identifies one registered handler.
type Subscription struct {
	id         uint64
	collection string
}

// Collection returns the subscribed collection name.
func (s Subscription) Collection() string {
	return s.collection
}

// Channel fans notifications out to subscribers and keeps the underlying
// listener connected.
type Channel struct {
	listener   Listener
	logger     logging.Logger
	newBackOff func() backoff.BackOff

	mu   sync.RWMutex
	subs map[string]map[uint64]Handler
	next uint64

	connected atomic.Bool
	connects  atomic.Int64
}

// New constructs a channel over l.
func New(l Listener, logger logging.Logger) *Channel {
	return &Channel{
		listener: l,
		logger:   logger.With("component", "changefeed"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
		subs: make(map[string]map[uint64]Handler),
	}
}

// Subscribe registers h for events of collection.
func (c *Channel) Subscribe(collection string, h Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	if c.subs[collection] == nil {
		c.subs[collection] = make(map[uint64]Handler)
	}
	c.subs[collection][c.next] = h
	return Subscription{id: c.next, collection: collection}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (c *Channel) Unsubscribe(s Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handlers := c.subs[s.collection]
	delete(handlers, s.id)
	if len(handlers) == 0 {
		delete(c.subs, s.collection)
	}
}

// Publish delivers ev to the handlers of its collection. Handlers run on the
// caller's goroutine, outside the channel lock.
func (c *Channel) Publish(ev models.ChangeEvent) {
	c.mu.RLock()
	handlers := make([]Handler, 0, len(c.subs[ev.Collection]))
	for _, h := range c.subs[ev.Collection] {
		handlers = append(handlers, h)
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (c *Channel) receive(ev models.ChangeEvent) {
	metrics.IncFeedEvent(ev.Collection)
	c.Publish(ev)
}

// Connected reports whether the listener is currently receiving.
func (c *Channel) Connected() bool {
	return c.connected.Load()
}

func (c *Channel) resync() {
	c.mu.RLock()
	collections := make([]string, 0, len(c.subs))
	for name := range c.subs {
		collections = append(collections, name)
	}
	c.mu.RUnlock()

	for _, name := range collections {
		c.Publish(models.ChangeEvent{Collection: name, Kind: models.ChangeUpdate})
	}
}

// Run keeps the listener connected until ctx is done, reconnecting silently
// with exponential backoff.
func (c *Channel) Run(ctx context.Context) error {
	b := c.newBackOff()

	for {
		ready := func() {
			c.connected.Store(true)
			b.Reset()
			if c.connects.Add(1) > 1 {
				c.logger.Info(ctx, "change feed reconnected")
				c.resync()
			}
		}

		err := c.listener.Listen(ctx, ready, c.receive)
		c.connected.Store(false)
		if ctx.Err() != nil {
			return nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		c.logger.Warn(ctx, "change feed disconnected", "error", err, "retry_in", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

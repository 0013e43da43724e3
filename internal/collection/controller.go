// Package collection keeps an in-memory, read-only view of one remote
// collection consistent with the authoritative store.
//
// A Controller loads the collection on Start and refetches it whenever the
// change feed reports a mutation. Every refresh replaces the whole list
// atomically; a failed fetch keeps the previous list and only flips the
// status. There is no timer-driven retry: the next event or an explicit
// Refresh recovers.
package collection

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsite/internal/changefeed"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/metrics"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

// DefaultCoalesceWindow groups bursts of change events into one refetch.
const DefaultCoalesceWindow = 250 * time.Millisecond

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Source is the read side of the remote store.
type Source interface {
	Select(ctx context.Context, collection string, q remote.Query) ([]models.Record, error)
}

// Feed delivers change notifications per collection.
type Feed interface {
	Subscribe(collection string, h changefeed.Handler) changefeed.Subscription
	Unsubscribe(s changefeed.Subscription)
}

// Mapper converts a raw record into the typed read model.
type Mapper[T any] func(models.Record) (T, error)

// Item is one mapped record. Items are shared between views and must be
// treated as read-only.
type Item[T any] struct {
	ID     string
	Record models.Record
	Value  T
}

// View is a consistent snapshot of the controller state.
type View[T any] struct {
	Collection string
	Records    []Item[T]
	Status     Status
	Err        error
	UpdatedAt  time.Time
	// Changes lists how ids moved in the latest successful swap.
	Changes Change
}

// IDs returns record ids in collection order.
func (v View[T]) IDs() []string {
	ids := make([]string, len(v.Records))
	for i, it := range v.Records {
		ids[i] = it.ID
	}
	return ids
}

// Find returns the item with the given id.
func (v View[T]) Find(id string) (Item[T], bool) {
	for _, it := range v.Records {
		if it.ID == id {
			return it, true
		}
	}
	return Item[T]{}, false
}

type options struct {
	query  remote.Query
	window time.Duration
	logger logging.Logger
}

// Option configures a Controller.
type Option func(*options)

func WithQuery(q remote.Query) Option {
	return func(o *options) { o.query = q }
}

// WithCoalesceWindow sets the event grouping window. Zero refetches on
// every event.
func WithCoalesceWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Controller owns the in-memory list of one collection.
type Controller[T any] struct {
	name   string
	source Source
	feed   Feed
	mapper Mapper[T]
	opts   options

	mu       sync.Mutex
	view     View[T]
	started  bool
	stopped  bool
	sub      changefeed.Subscription
	ctx      context.Context
	cancel   context.CancelFunc
	issued   uint64
	applied  uint64
	pending  *time.Timer
	watchers map[uint64]func(View[T])
	nextW    uint64
}

// New builds a controller for collection name. It does nothing until Start.
func New[T any](name string, source Source, feed Feed, mapper Mapper[T], opts ...Option) *Controller[T] {
	o := options{window: DefaultCoalesceWindow, logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("collection", name)

	return &Controller[T]{
		name:     name,
		source:   source,
		feed:     feed,
		mapper:   mapper,
		opts:     o,
		view:     View[T]{Collection: name, Status: StatusIdle},
		watchers: make(map[uint64]func(View[T])),
	}
}

func (c *Controller[T]) Name() string {
	return c.name
}

// Start subscribes to the change feed and performs the initial fetch. The
// controller lives until Stop or until ctx is done. A failed initial fetch is
// returned but leaves the controller running.
func (c *Controller[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.sub = c.feed.Subscribe(c.name, c.onEvent)
	c.mu.Unlock()

	return c.Refresh(c.ctx)
}

// Stop closes the subscription. Fetches completing afterwards are discarded.
func (c *Controller[T]) Stop() {
	c.mu.Lock()
	if c.stopped || !c.started {
		c.stopped = true
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	sub := c.sub
	cancel := c.cancel
	c.mu.Unlock()

	c.feed.Unsubscribe(sub)
	cancel()
}

// View returns the current snapshot.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Watch registers fn to be called after each successful swap and after a
// failed fetch. The returned function removes the watcher.
func (c *Controller[T]) Watch(fn func(View[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextW++
	id := c.nextW
	c.watchers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, id)
	}
}

func (c *Controller[T]) onEvent(ev models.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.opts.logger.Debug(c.ctx, "change event", "kind", ev.Kind, "id", ev.ID)

	if c.opts.window <= 0 {
		go c.refreshLogged()
		return
	}
	if c.pending != nil {
		return
	}
	c.pending = time.AfterFunc(c.opts.window, func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		c.refreshLogged()
	})
}

func (c *Controller[T]) refreshLogged() {
	if err := c.Refresh(c.ctx); err != nil {
		c.opts.logger.Warn(c.ctx, "collection refresh failed", "error", err)
	}
}

// Refresh refetches the whole collection and swaps it in. It is idempotent:
// calling it repeatedly without remote changes yields the same view.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.issued++
	gen := c.issued
	if c.view.Status == StatusIdle {
		c.view.Status = StatusLoading
	}
	c.mu.Unlock()

	started := time.Now()
	records, err := c.source.Select(ctx, c.name, c.opts.query)
	var items []Item[T]
	if err == nil {
		items = c.mapAll(ctx, records)
	}

	c.mu.Lock()
	if c.stopped || gen < c.applied {
		c.mu.Unlock()
		metrics.ObserveRefresh(c.name, metrics.ResultDiscarded, time.Since(started))
		return nil
	}

	if err != nil {
		metrics.ObserveRefresh(c.name, metrics.ResultError, time.Since(started))
		if gen == c.issued {
			c.view.Status = StatusError
			c.view.Err = err
		}
		view := c.view
		watchers := c.watcherList()
		c.mu.Unlock()

		notify(watchers, view)
		return err
	}

	c.applied = gen
	next := View[T]{
		Collection: c.name,
		Records:    items,
		Status:     StatusReady,
		UpdatedAt:  time.Now(),
	}
	next.Changes = Diff(c.view.IDs(), next.IDs())
	if !next.Changes.Empty() {
		c.opts.logger.Debug(ctx, "collection changed",
			"added", len(next.Changes.Added),
			"removed", len(next.Changes.Removed),
			"kept", len(next.Changes.Kept))
	}
	c.view = next
	view := c.view
	watchers := c.watcherList()
	c.mu.Unlock()

	metrics.ObserveRefresh(c.name, metrics.ResultOK, time.Since(started))
	metrics.SetRecords(c.name, len(items))
	notify(watchers, view)
	return nil
}

func (c *Controller[T]) mapAll(ctx context.Context, records []models.Record) []Item[T] {
	items := make([]Item[T], 0, len(records))
	for _, rec := range records {
		v, err := c.mapper(rec)
		if err != nil {
			c.opts.logger.Warn(ctx, "record skipped", "id", rec.ID, "error", err)
			continue
		}
		items = append(items, Item[T]{ID: rec.ID, Record: rec, Value: v})
	}
	return items
}

func (c *Controller[T]) watcherList() []func(View[T]) {
	list := make([]func(View[T]), 0, len(c.watchers))
	for _, fn := range c.watchers {
		list = append(list, fn)
	}
	return list
}

func notify[T any](watchers []func(View[T]), v View[T]) {
	for _, fn := range watchers {
		fn(v)
	}
}

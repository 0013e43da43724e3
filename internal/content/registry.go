package content

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophsite/internal/carousel"
	"github.com/dmitrijs2005/gophsite/internal/collection"
	"github.com/dmitrijs2005/gophsite/internal/logging"
)

// Entry bundles the live state of one collection.
type Entry struct {
	Kind       Kind
	Controller *collection.Controller[any]
	// Rotator is nil for collections that are not shown publicly.
	Rotator *carousel.Rotator[any]
}

// Registry owns one controller per collection.
type Registry struct {
	entries map[string]*Entry
	logger  logging.Logger
}

// Settings tune the controllers built by NewRegistry.
type Settings struct {
	CoalesceWindow time.Duration
	RotateInterval time.Duration
}

func NewRegistry(source collection.Source, feed collection.Feed, s Settings, logger logging.Logger) *Registry {
	r := &Registry{entries: make(map[string]*Entry, len(kinds)), logger: logger}

	for _, name := range Names() {
		k := kinds[name]
		c := collection.New[any](name, source, feed, k.Map,
			collection.WithQuery(k.Query()),
			collection.WithCoalesceWindow(s.CoalesceWindow),
			collection.WithLogger(logger),
		)
		e := &Entry{Kind: k, Controller: c}
		if k.Public {
			e.Rotator = carousel.NewRotator[any](c, s.RotateInterval)
		}
		r.entries[name] = e
	}
	return r
}

// Get returns the entry of a collection.
func (r *Registry) Get(name string) (*Entry, error) {
	if _, err := Lookup(name); err != nil {
		return nil, err
	}
	return r.entries[name], nil
}

// Start loads every collection. A collection that fails to load stays in
// the error state until the next change event or refresh.
func (r *Registry) Start(ctx context.Context) {
	for _, name := range Names() {
		if err := r.entries[name].Controller.Start(ctx); err != nil {
			r.logger.Warn(ctx, "initial load failed", "collection", name, "error", err)
		}
	}
}

// Run drives the carousels until ctx is done and then stops every
// controller.
func (r *Registry) Run(ctx context.Context) error {
	defer r.Stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range r.entries {
		if e.Rotator == nil {
			continue
		}
		rot := e.Rotator
		g.Go(func() error { return rot.Run(ctx) })
	}
	return g.Wait()
}

func (r *Registry) Stop() {
	for _, e := range r.entries {
		e.Controller.Stop()
	}
}

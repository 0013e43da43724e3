package carousel

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsite/internal/collection"
)

// DefaultInterval is the auto-rotation period.
const DefaultInterval = 5 * time.Second

// Source is the part of a collection controller a rotator needs.
type Source[T any] interface {
	View() collection.View[T]
	Watch(fn func(collection.View[T])) func()
}

// Rotator binds a cursor to a collection and advances it on a ticker. The
// cursor is created on the first non-empty view.
type Rotator[T any] struct {
	source   Source[T]
	interval time.Duration

	mu      sync.Mutex
	cursor  *Cursor
	unwatch func()
}

func NewRotator[T any](source Source[T], interval time.Duration) *Rotator[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Rotator[T]{source: source, interval: interval}
	r.unwatch = source.Watch(r.onView)
	r.onView(source.View())
	return r
}

func (r *Rotator[T]) onView(v collection.View[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor == nil {
		if len(v.Records) == 0 {
			return
		}
		r.cursor = NewCursor(len(v.Records))
		return
	}
	r.cursor.Resize(len(v.Records))
}

// Cursor returns the bound cursor, or nil before the first non-empty view.
func (r *Rotator[T]) Cursor() *Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Current resolves the cursor against the latest view. ok is false when there
// is nothing to show.
func (r *Rotator[T]) Current() (State, collection.Item[T], bool) {
	v := r.source.View()
	c := r.Cursor()
	if c == nil {
		return State{Direction: Forward}, collection.Item[T]{}, false
	}

	st := c.Resize(len(v.Records))
	if st.Empty() {
		return st, collection.Item[T]{}, false
	}
	return st, v.Records[st.Index], true
}

// Resolve applies move to a copy of a viewer's own state, fitted to the
// latest view. The shared cursor is left alone.
func (r *Rotator[T]) Resolve(st State, move func(*Cursor)) (State, collection.Item[T], bool) {
	v := r.source.View()
	c := FromState(st, len(v.Records))
	if move != nil {
		move(c)
	}

	st = c.State()
	if st.Empty() {
		return st, collection.Item[T]{}, false
	}
	return st, v.Records[st.Index], true
}

// Run ticks the cursor until ctx is done, then detaches from the source.
func (r *Rotator[T]) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	defer r.unwatch()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if c := r.Cursor(); c != nil {
				c.Tick()
			}
		}
	}
}

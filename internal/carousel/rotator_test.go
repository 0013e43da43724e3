package carousel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophsite/internal/collection"
)

type fakeSource struct {
	mu       sync.Mutex
	view     collection.View[string]
	watchers []func(collection.View[string])
}

func (f *fakeSource) View() collection.View[string] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakeSource) Watch(fn func(collection.View[string])) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchers = append(f.watchers, fn)
	return func() {}
}

// set replaces the view without notifying watchers.
func (f *fakeSource) set(values ...string) collection.View[string] {
	items := make([]collection.Item[string], len(values))
	for i, v := range values {
		items[i] = collection.Item[string]{ID: v, Value: v}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view = collection.View[string]{Records: items, Status: collection.StatusReady}
	return f.view
}

func (f *fakeSource) publish(values ...string) {
	v := f.set(values...)
	f.mu.Lock()
	ws := append([]func(collection.View[string]){}, f.watchers...)
	f.mu.Unlock()
	for _, w := range ws {
		w(v)
	}
}

func TestRotator_CursorCreatedOnFirstNonEmptyView(t *testing.T) {
	src := &fakeSource{}
	r := NewRotator[string](src, time.Hour)

	assert.Nil(t, r.Cursor())
	_, _, ok := r.Current()
	assert.False(t, ok)

	src.publish("a", "b")
	require.NotNil(t, r.Cursor())
	st, item, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "a", item.Value)
}

func TestRotator_StaleReadNoCrash(t *testing.T) {
	src := &fakeSource{}
	src.set("a", "b", "c", "d", "e")
	r := NewRotator[string](src, time.Hour)
	r.Cursor().st.Index = 3

	// The collection empties before the watcher fires.
	src.set()

	var (
		st State
		ok bool
	)
	assert.NotPanics(t, func() {
		st, _, ok = r.Current()
	})
	assert.False(t, ok)
	assert.True(t, st.Empty())
	assert.Equal(t, 0, st.Index)
}

func TestRotator_RefreshClampsIndex(t *testing.T) {
	src := &fakeSource{}
	src.set("a", "b", "c", "d", "e")
	r := NewRotator[string](src, time.Hour)
	r.Cursor().st.Index = 4

	src.publish("a", "b", "c")

	st, item, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, "b", item.Value)
}

func TestRotator_RunTicks(t *testing.T) {
	src := &fakeSource{}
	src.set("a", "b", "c")
	r := NewRotator[string](src, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Cursor().State().Index != 0 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRotator_ResolveLeavesSharedCursor(t *testing.T) {
	src := &fakeSource{}
	src.set("a", "b", "c")
	r := NewRotator[string](src, time.Hour)

	st, item, ok := r.Resolve(State{Index: 2, Auto: true}, func(c *Cursor) { c.Next() })
	require.True(t, ok)
	assert.Equal(t, 0, st.Index)
	assert.False(t, st.Auto)
	assert.Equal(t, "a", item.Value)

	st, item, ok = r.Resolve(State{Index: 9, Auto: true}, nil)
	require.True(t, ok)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, "b", item.Value)

	shared := r.Cursor().State()
	assert.Equal(t, 0, shared.Index)
	assert.True(t, shared.Auto)

	src.set()
	_, _, ok = r.Resolve(State{Index: 1}, func(c *Cursor) { c.Prev() })
	assert.False(t, ok)
}

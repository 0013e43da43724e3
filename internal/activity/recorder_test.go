package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

func TestLog_RecordAndRun(t *testing.T) {
	store := remote.NewMemoryStore()
	l := New(store, logging.Nop(), 4)

	snap := models.Fields{"title": "Consulting"}
	l.Record(models.ActionCreate, "services", "s1", snap)
	snap["title"] = "changed"
	l.Record(models.ActionDelete, "services", "s1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := l.Recent(context.Background(), 10)
		return err == nil && len(got) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-l.Done()

	got, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.ActionDelete, got[0].Action)
	assert.Equal(t, models.ActionCreate, got[1].Action)
	assert.Equal(t, "Consulting", got[1].Snapshot["title"])
	assert.Len(t, got[1].ID, 26)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestLog_DropsWhenQueueFull(t *testing.T) {
	store := remote.NewMemoryStore()
	l := New(store, logging.Nop(), 1)

	l.Record(models.ActionCreate, "projects", "p1", nil)
	assert.NotPanics(t, func() {
		l.Record(models.ActionCreate, "projects", "p2", nil)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	got, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].EntityID)
}

func TestLog_WriteFailureIsSwallowed(t *testing.T) {
	store := remote.NewMemoryStore()
	store.Fail("append", errors.New("db down"))
	l := New(store, logging.Nop(), 0)

	l.Record(models.ActionUpdate, "services", "s1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	store.Fail("append", nil)
	got, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

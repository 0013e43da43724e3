package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

type recorded struct {
	action, entityType, entityID string
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recorded
}

func (f *fakeRecorder) Record(action, entityType, entityID string, _ models.Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recorded{action, entityType, entityID})
}

// blockingWriter holds Insert and Update until release is closed.
type blockingWriter struct {
	Writer
	entered chan struct{}
	release chan struct{}
}

func (b *blockingWriter) Insert(ctx context.Context, collection string, fields models.Fields) (models.Record, error) {
	close(b.entered)
	<-b.release
	return b.Writer.Insert(ctx, collection, fields)
}

func (b *blockingWriter) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	close(b.entered)
	<-b.release
	return b.Writer.Update(ctx, collection, id, fields)
}

var servicesSchema = Schema{
	Collection: "services",
	Required:   []string{"title", "description"},
	Integers:   []string{"display_order"},
}

func newEditor(t *testing.T) (*Editor, *remote.MemoryStore, *fakeRecorder) {
	t.Helper()
	store := remote.NewMemoryStore()
	rec := &fakeRecorder{}
	return New(servicesSchema, store, rec, logging.Nop()), store, rec
}

func insert(t *testing.T, store *remote.MemoryStore, fields models.Fields) models.Record {
	t.Helper()
	r, err := store.Insert(context.Background(), "services", fields)
	require.NoError(t, err)
	return r
}

func TestEditor_InitialSession(t *testing.T) {
	e, _, _ := newEditor(t)
	s := e.Session()
	assert.Equal(t, ModeNone, s.Mode)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Nil(t, s.Draft)
	assert.Equal(t, "services", e.Collection())
}

func TestEditor_SingleEditorInvariant(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newEditor(t)
	a := insert(t, store, models.Fields{"title": "A", "description": "a"})
	b := insert(t, store, models.Fields{"title": "B", "description": "b"})

	require.NoError(t, e.BeginCreate(ctx, nil))
	assert.ErrorIs(t, e.BeginCreate(ctx, nil), common.ErrSessionActive)

	require.NoError(t, e.BeginEdit(ctx, a))
	require.NoError(t, e.UpdateField("title", "A2"))
	require.NoError(t, e.BeginEdit(ctx, b))

	s := e.Session()
	assert.Equal(t, ModeEditing, s.Mode)
	assert.Equal(t, b.ID, s.TargetID)
	assert.Equal(t, "B", s.Draft.String("title"))
	assert.ErrorIs(t, e.BeginCreate(ctx, nil), common.ErrSessionActive)
}

func TestEditor_DraftIsolation(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newEditor(t)
	rec := insert(t, store, models.Fields{"title": "Original", "description": "d", "tags": []any{"x"}})

	require.NoError(t, e.BeginEdit(ctx, rec))
	require.NoError(t, e.UpdateField("title", "Draft"))

	assert.Equal(t, "Original", rec.Fields.String("title"))
	rec.Fields["tags"].([]any)[0] = "mutated"
	assert.Equal(t, []string{"x"}, e.Session().Draft.Strings("tags"))

	stored, err := store.Select(ctx, "services", remote.Query{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Original", stored[0].Fields.String("title"))

	snap := e.Session()
	snap.Draft["title"] = "snapshot edit"
	assert.Equal(t, "Draft", e.Session().Draft.String("title"))
}

func TestEditor_UpdateFieldStates(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEditor(t)

	assert.ErrorIs(t, e.UpdateField("title", "x"), common.ErrNoSession)

	require.NoError(t, e.BeginCreate(ctx, models.Fields{"display_order": 3}))
	assert.ErrorIs(t, e.UpdateField("Title; DROP", "x"), common.ErrInvalidField)
	require.NoError(t, e.UpdateField("title", "x"))
	assert.Equal(t, 3, e.Session().Draft.Int("display_order"))
}

func TestEditor_SubmitValidationFailsWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	e, store, rec := newEditor(t)
	store.Fail("insert", errors.New("must not be called"))

	require.NoError(t, e.BeginCreate(ctx, nil))
	require.NoError(t, e.UpdateField("title", "  "))
	require.NoError(t, e.UpdateField("display_order", "first"))

	_, err := e.Submit(ctx)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"title":         "is required",
		"description":   "is required",
		"display_order": "must be a whole number",
	}, verr.Fields)

	s := e.Session()
	assert.Equal(t, ModeCreating, s.Mode)
	assert.Equal(t, StatusFailed, s.Status)
	assert.Len(t, s.FieldErrors, 3)
	assert.Empty(t, rec.entries)

	require.NoError(t, e.UpdateField("title", "ok"))
	assert.NotContains(t, e.Session().FieldErrors, "title")
}

func TestEditor_SubmitCreate(t *testing.T) {
	ctx := context.Background()
	e, store, rec := newEditor(t)

	require.NoError(t, e.BeginCreate(ctx, nil))
	require.NoError(t, e.UpdateField("title", "Audit"))
	require.NoError(t, e.UpdateField("description", "Yearly audit"))

	id, err := e.Submit(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s := e.Session()
	assert.Equal(t, ModeNone, s.Mode)
	assert.Equal(t, StatusSucceeded, s.Status)
	assert.Nil(t, s.Draft)

	stored, err := store.Select(ctx, "services", remote.Query{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, id, stored[0].ID)
	assert.Equal(t, []recorded{{models.ActionCreate, "services", id}}, rec.entries)
}

func TestEditor_SubmitRemoteFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	e, store, rec := newEditor(t)
	r := insert(t, store, models.Fields{"title": "A", "description": "a"})

	require.NoError(t, e.BeginEdit(ctx, r))
	require.NoError(t, e.UpdateField("title", "A2"))

	store.Fail("update", errors.New("503"))
	_, err := e.Submit(ctx)

	var rerr *common.RemoteError
	require.ErrorAs(t, err, &rerr)
	s := e.Session()
	assert.Equal(t, ModeEditing, s.Mode)
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, "A2", s.Draft.String("title"))
	assert.Equal(t, err, s.Err)
	assert.Empty(t, rec.entries)

	store.Fail("update", nil)
	id, err := e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.ID, id)
	assert.Equal(t, []recorded{{models.ActionUpdate, "services", r.ID}}, rec.entries)
}

func TestEditor_SubmitRecordGoneThenDetach(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newEditor(t)
	r := insert(t, store, models.Fields{"title": "A", "description": "a"})

	require.NoError(t, e.BeginEdit(ctx, r))
	require.NoError(t, store.Delete(ctx, "services", r.ID))

	_, err := e.Submit(ctx)
	require.ErrorIs(t, err, common.ErrRecordGone)
	assert.Equal(t, ModeEditing, e.Session().Mode)

	require.NoError(t, e.Detach(ctx))
	s := e.Session()
	assert.Equal(t, ModeCreating, s.Mode)
	assert.Empty(t, s.TargetID)
	assert.Equal(t, "A", s.Draft.String("title"))

	id, err := e.Submit(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, id)
}

func TestEditor_DetachStates(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEditor(t)
	assert.ErrorIs(t, e.Detach(ctx), common.ErrNoSession)
	require.NoError(t, e.BeginCreate(ctx, nil))
	assert.NoError(t, e.Detach(ctx))
}

func TestEditor_RejectsWhileSaving(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	w := &blockingWriter{Writer: store, entered: make(chan struct{}), release: make(chan struct{})}
	e := New(servicesSchema, w, &fakeRecorder{}, logging.Nop())

	require.NoError(t, e.BeginCreate(ctx, models.Fields{"title": "T", "description": "D"}))

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(ctx)
		done <- err
	}()
	<-w.entered

	assert.True(t, e.Saving())
	s := e.Session()
	assert.Equal(t, ModeCreating, s.Mode)
	assert.Equal(t, StatusSaving, s.Status)

	assert.ErrorIs(t, e.UpdateField("title", "x"), common.ErrSaving)
	assert.ErrorIs(t, e.BeginEdit(ctx, models.Record{ID: "x"}), common.ErrSaving)
	assert.ErrorIs(t, e.BeginCreate(ctx, nil), common.ErrSessionActive)
	assert.ErrorIs(t, e.Cancel(ctx), common.ErrSaving)
	_, err := e.Submit(ctx)
	assert.ErrorIs(t, err, common.ErrSaving)

	close(w.release)
	require.NoError(t, <-done)
	assert.Equal(t, ModeNone, e.Session().Mode)
}

func TestEditor_RemoveTargetWhileSaving(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	a := insert(t, store, models.Fields{"title": "A", "description": "a"})
	w := &blockingWriter{Writer: store, entered: make(chan struct{}), release: make(chan struct{})}
	e := New(servicesSchema, w, &fakeRecorder{}, logging.Nop())

	require.NoError(t, e.BeginEdit(ctx, a))

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(ctx)
		done <- err
	}()
	<-w.entered

	require.NoError(t, e.Remove(ctx, a.ID, func(string) bool { return true }))
	assert.True(t, e.Saving())

	close(w.release)
	assert.ErrorIs(t, <-done, common.ErrRecordGone)

	s := e.Session()
	assert.Equal(t, ModeNone, s.Mode)
	assert.Empty(t, s.TargetID)
	assert.Nil(t, s.Draft)

	require.NoError(t, e.BeginCreate(ctx, nil))
}

func TestEditor_Cancel(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEditor(t)

	require.NoError(t, e.Cancel(ctx))
	require.NoError(t, e.BeginCreate(ctx, models.Fields{"title": "x"}))
	require.NoError(t, e.Cancel(ctx))

	s := e.Session()
	assert.Equal(t, ModeNone, s.Mode)
	assert.Nil(t, s.Draft)
}

func TestEditor_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		e, store, rec := newEditor(t)
		r := insert(t, store, models.Fields{"title": "A"})

		err := e.Remove(ctx, r.ID, func(string) bool { return false })
		require.ErrorIs(t, err, common.ErrConfirmationDeclined)
		assert.ErrorIs(t, e.Remove(ctx, r.ID, nil), common.ErrConfirmationDeclined)

		stored, _ := store.Select(ctx, "services", remote.Query{})
		assert.Len(t, stored, 1)
		assert.Empty(t, rec.entries)
	})

	t.Run("current target cancels draft", func(t *testing.T) {
		e, store, rec := newEditor(t)
		r := insert(t, store, models.Fields{"title": "A"})
		require.NoError(t, e.BeginEdit(ctx, r))

		var asked string
		require.NoError(t, e.Remove(ctx, r.ID, func(id string) bool { asked = id; return true }))

		assert.Equal(t, r.ID, asked)
		assert.Equal(t, ModeNone, e.Session().Mode)
		assert.Equal(t, []recorded{{models.ActionDelete, "services", r.ID}}, rec.entries)
	})

	t.Run("other record keeps draft", func(t *testing.T) {
		e, store, _ := newEditor(t)
		a := insert(t, store, models.Fields{"title": "A"})
		b := insert(t, store, models.Fields{"title": "B"})
		require.NoError(t, e.BeginEdit(ctx, a))

		require.NoError(t, e.Remove(ctx, b.ID, func(string) bool { return true }))
		assert.Equal(t, a.ID, e.Session().TargetID)
	})

	t.Run("already gone", func(t *testing.T) {
		e, _, rec := newEditor(t)
		require.NoError(t, e.Remove(ctx, "missing", func(string) bool { return true }))
		assert.Empty(t, rec.entries)
	})

	t.Run("remote failure", func(t *testing.T) {
		e, store, _ := newEditor(t)
		r := insert(t, store, models.Fields{"title": "A"})
		require.NoError(t, e.BeginEdit(ctx, r))
		store.Fail("delete", errors.New("offline"))

		err := e.Remove(ctx, r.ID, func(string) bool { return true })
		var rerr *common.RemoteError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, ModeEditing, e.Session().Mode)
	})
}

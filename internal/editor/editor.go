// Package editor implements the draft editing state machine of one admin
// screen. An Editor owns at most one draft; it never mutates the collection
// list it was opened from. After a successful submit the editor returns to
// the idle state and the change feed brings the new data back.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/tiendc/go-deepcopy"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

// Mode is the state of the editor.
type Mode string

const (
	ModeNone     Mode = "none"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
	ModeSaving   Mode = "saving"
)

// Status is the outcome of the latest submission.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSaving    Status = "saving"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

const (
	evBeginCreate = "begin_create"
	evBeginEdit   = "begin_edit"
	evDiscard     = "discard"
	evSubmit      = "submit"
	evSaved       = "saved"
	evRetryCreate = "retry_create"
	evRetryEdit   = "retry_edit"
	evDetach      = "detach"
)

// Writer is the mutating side of the remote store.
type Writer interface {
	Insert(ctx context.Context, collection string, fields models.Fields) (models.Record, error)
	Update(ctx context.Context, collection, id string, fields models.Fields) error
	Delete(ctx context.Context, collection, id string) error
}

// Session is a snapshot of the editor. Draft is a private copy.
type Session struct {
	Mode        Mode              `json:"mode"`
	TargetID    string            `json:"target_id,omitempty"`
	Draft       models.Fields     `json:"draft,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Status      Status            `json:"status"`
	Err         error             `json:"-"`
}

// Confirm is asked before a destructive action. Returning false aborts it.
type Confirm func(id string) bool

// Editor is safe for concurrent use.
type Editor struct {
	schema   Schema
	store    Writer
	recorder activity.Recorder
	logger   logging.Logger

	mu          sync.Mutex
	machine     *fsm.FSM
	targetID    string
	draft       models.Fields
	fieldErrors map[string]string
	status      Status
	err         error
	resumeMode  Mode
	// removed marks the in-flight target as deleted by this editor.
	removed bool
}

func New(schema Schema, store Writer, recorder activity.Recorder, logger logging.Logger) *Editor {
	e := &Editor{
		schema:   schema,
		store:    store,
		recorder: recorder,
		logger:   logger.With("component", "editor", "collection", schema.Collection),
		status:   StatusIdle,
	}

	none, creating, editing, saving := string(ModeNone), string(ModeCreating), string(ModeEditing), string(ModeSaving)
	e.machine = fsm.NewFSM(
		none,
		fsm.Events{
			{Name: evBeginCreate, Src: []string{none}, Dst: creating},
			{Name: evBeginEdit, Src: []string{none}, Dst: editing},
			{Name: evDiscard, Src: []string{creating, editing, saving}, Dst: none},
			{Name: evSubmit, Src: []string{creating, editing}, Dst: saving},
			{Name: evSaved, Src: []string{saving}, Dst: none},
			{Name: evRetryCreate, Src: []string{saving}, Dst: creating},
			{Name: evRetryEdit, Src: []string{saving}, Dst: editing},
			{Name: evDetach, Src: []string{editing}, Dst: creating},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, ev *fsm.Event) {
				e.logger.Debug(ctx, "editor transition", "event", ev.Event, "from", ev.Src, "to", ev.Dst)
			},
		},
	)
	return e
}

func (e *Editor) Collection() string {
	return e.schema.Collection
}

func (e *Editor) mode() Mode {
	return Mode(e.machine.Current())
}

func (e *Editor) fire(ctx context.Context, event string) error {
	if err := e.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("editor %s from %s: %w", event, e.machine.Current(), err)
	}
	return nil
}

// Session returns a copy of the current session.
func (e *Editor) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Session{
		Mode:     e.mode(),
		TargetID: e.targetID,
		Status:   e.status,
		Err:      e.err,
	}
	if s.Mode == ModeSaving {
		s.Mode = e.resumeMode
	}
	if e.draft != nil {
		s.Draft = copyFields(e.draft)
	}
	if len(e.fieldErrors) > 0 {
		s.FieldErrors = make(map[string]string, len(e.fieldErrors))
		for k, v := range e.fieldErrors {
			s.FieldErrors[k] = v
		}
	}
	return s
}

// Saving reports whether a submission is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode() == ModeSaving
}

// BeginCreate opens an empty draft prefilled with defaults.
func (e *Editor) BeginCreate(ctx context.Context, defaults models.Fields) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode() != ModeNone {
		return common.ErrSessionActive
	}

	if err := e.fire(ctx, evBeginCreate); err != nil {
		return err
	}
	e.reset(copyFields(defaults), "")
	return nil
}

// BeginEdit opens a draft over a copy of rec. An open draft is discarded.
func (e *Editor) BeginEdit(ctx context.Context, rec models.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode() {
	case ModeSaving:
		return common.ErrSaving
	case ModeCreating, ModeEditing:
		e.logger.Info(ctx, "draft discarded", "target_id", e.targetID)
		if err := e.fire(ctx, evDiscard); err != nil {
			return err
		}
	}

	if err := e.fire(ctx, evBeginEdit); err != nil {
		return err
	}
	e.reset(copyFields(rec.Fields), rec.ID)
	return nil
}

// UpdateField sets one draft field.
func (e *Editor) UpdateField(name string, value any) error {
	if err := remote.ValidateFieldName(name); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode() {
	case ModeNone:
		return common.ErrNoSession
	case ModeSaving:
		return common.ErrSaving
	}

	e.draft[name] = value
	delete(e.fieldErrors, name)
	return nil
}

// Cancel discards the draft without any network call.
func (e *Editor) Cancel(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode() {
	case ModeNone:
		return nil
	case ModeSaving:
		return common.ErrSaving
	}

	if err := e.fire(ctx, evDiscard); err != nil {
		return err
	}
	e.clear(StatusIdle)
	return nil
}

// Detach turns an edit of a record that no longer exists into a create of
// the same draft.
func (e *Editor) Detach(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode() {
	case ModeNone:
		return common.ErrNoSession
	case ModeSaving:
		return common.ErrSaving
	case ModeCreating:
		return nil
	}

	if err := e.fire(ctx, evDetach); err != nil {
		return err
	}
	e.targetID = ""
	e.err = nil
	e.status = StatusIdle
	return nil
}

// Submit validates the draft and writes it. On success the editor returns to
// idle and the id of the written record is returned. On failure the draft is
// kept and the editor returns to its previous mode.
func (e *Editor) Submit(ctx context.Context) (string, error) {
	e.mu.Lock()
	mode := e.mode()
	switch mode {
	case ModeNone:
		e.mu.Unlock()
		return "", common.ErrNoSession
	case ModeSaving:
		e.mu.Unlock()
		return "", common.ErrSaving
	}

	if err := e.schema.Validate(e.draft); err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			e.fieldErrors = verr.Fields
		}
		e.status = StatusFailed
		e.err = err
		e.mu.Unlock()
		return "", err
	}

	if err := e.fire(ctx, evSubmit); err != nil {
		e.mu.Unlock()
		return "", err
	}
	e.resumeMode = mode
	e.status = StatusSaving
	e.err = nil
	e.fieldErrors = nil
	draft := copyFields(e.draft)
	target := e.targetID
	e.mu.Unlock()

	id, action, err := e.write(ctx, mode, target, draft)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil && e.removed {
		if ferr := e.fire(ctx, evDiscard); ferr != nil {
			return "", errors.Join(err, ferr)
		}
		e.clear(StatusIdle)
		e.logger.Info(ctx, "draft discarded, target removed", "target_id", target)
		return "", err
	}

	if err != nil {
		retry := evRetryCreate
		if mode == ModeEditing {
			retry = evRetryEdit
		}
		if ferr := e.fire(ctx, retry); ferr != nil {
			return "", errors.Join(err, ferr)
		}
		e.status = StatusFailed
		e.err = err
		e.logger.Warn(ctx, "draft not saved", "target_id", target, "error", err)
		return "", err
	}

	if err := e.fire(ctx, evSaved); err != nil {
		return "", err
	}
	e.clear(StatusSucceeded)
	e.recorder.Record(action, e.schema.Collection, id, draft)
	e.logger.Info(ctx, "draft saved", "id", id, "action", action)
	return id, nil
}

func (e *Editor) write(ctx context.Context, mode Mode, target string, draft models.Fields) (string, string, error) {
	if mode == ModeCreating {
		rec, err := e.store.Insert(ctx, e.schema.Collection, draft)
		if err != nil {
			return "", "", err
		}
		return rec.ID, models.ActionCreate, nil
	}

	err := e.store.Update(ctx, e.schema.Collection, target, draft)
	if errors.Is(err, common.ErrorNotFound) {
		return "", "", fmt.Errorf("%w: %s", common.ErrRecordGone, target)
	}
	if err != nil {
		return "", "", err
	}
	return target, models.ActionUpdate, nil
}

// Remove deletes a record after confirm agrees. Removing the record under
// the open draft discards the draft. A record that is already gone counts
// as removed.
func (e *Editor) Remove(ctx context.Context, id string, confirm Confirm) error {
	if confirm == nil || !confirm(id) {
		return common.ErrConfirmationDeclined
	}

	err := e.store.Delete(ctx, e.schema.Collection, id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		e.logger.Info(ctx, "record already removed", "id", id)
	case err != nil:
		return err
	default:
		e.recorder.Record(models.ActionDelete, e.schema.Collection, id, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.targetID != id {
		return nil
	}
	switch e.mode() {
	case ModeEditing:
		if err := e.fire(ctx, evDiscard); err != nil {
			return err
		}
		e.clear(StatusIdle)
	case ModeSaving:
		// Submit closes the draft when the write comes back.
		e.removed = true
	}
	return nil
}

func (e *Editor) reset(draft models.Fields, target string) {
	e.draft = draft
	e.targetID = target
	e.fieldErrors = nil
	e.status = StatusIdle
	e.err = nil
	e.removed = false
}

func (e *Editor) clear(status Status) {
	e.draft = nil
	e.targetID = ""
	e.fieldErrors = nil
	e.status = status
	e.err = nil
	e.removed = false
}

func copyFields(src models.Fields) models.Fields {
	dst := models.Fields{}
	if len(src) == 0 {
		return dst
	}
	if err := deepcopy.Copy(&dst, src); err != nil {
		dst = make(models.Fields, len(src))
		for k, v := range src {
			dst[k] = v
		}
	}
	return dst
}

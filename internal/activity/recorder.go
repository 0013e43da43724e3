// Package activity records an append-only audit trail of content mutations.
//
// Recording is fire-and-forget: Record never blocks the caller and never
// reports failure. Entries are written by a single background worker; when
// its queue is full or the write fails the entry is dropped and logged.
package activity

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tiendc/go-deepcopy"

	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/metrics"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

const (
	DefaultQueueSize = 128
	writeTimeout     = 5 * time.Second
)

// Recorder is the write side used by editors, uploads and the contact form.
type Recorder interface {
	Record(action, entityType, entityID string, snapshot models.Fields)
}

// Log queues entries for an ActivityLog.
type Log struct {
	store  remote.ActivityLog
	logger logging.Logger
	queue  chan models.Activity
	now    func() time.Time
	done   chan struct{}
}

// New constructs a Log. Run must be started for entries to be written.
func New(store remote.ActivityLog, logger logging.Logger, queueSize int) *Log {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Log{
		store:  store,
		logger: logger.With("component", "activity"),
		queue:  make(chan models.Activity, queueSize),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Record queues one entry. The snapshot is copied.
func (l *Log) Record(action, entityType, entityID string, snapshot models.Fields) {
	var snap models.Fields
	if snapshot != nil {
		if err := deepcopy.Copy(&snap, snapshot); err != nil {
			l.logger.Warn(context.Background(), "activity snapshot not copied", "error", err)
			snap = nil
		}
	}

	now := l.now().UTC()
	a := models.Activity{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Snapshot:   snap,
		CreatedAt:  now,
	}

	select {
	case l.queue <- a:
	default:
		metrics.IncActivityDropped()
		l.logger.Warn(context.Background(), "activity queue full, entry dropped",
			"action", action, "entity_type", entityType, "entity_id", entityID)
	}
}

// Run writes queued entries until ctx is done, then flushes what is left.
func (l *Log) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case a := <-l.queue:
			l.write(ctx, a)
		case <-ctx.Done():
			l.flush()
			return nil
		}
	}
}

// Done is closed once Run has returned.
func (l *Log) Done() <-chan struct{} {
	return l.done
}

func (l *Log) flush() {
	for {
		select {
		case a := <-l.queue:
			l.write(context.Background(), a)
		default:
			return
		}
	}
}

func (l *Log) write(ctx context.Context, a models.Activity) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := l.store.AppendActivity(ctx, a); err != nil {
		metrics.IncActivityDropped()
		l.logger.Warn(ctx, "activity entry not written", "id", a.ID, "action", a.Action, "error", err)
	}
}

// Recent returns the newest entries first.
func (l *Log) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	return l.store.ListActivity(ctx, limit)
}

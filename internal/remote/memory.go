package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// MemoryStore is an in-process Store, ActivityLog and change Listener used in
// dev mode and tests. Like the real backend it notifies subscribers of every
// mutation asynchronously, so a caller may observe the event before or after
// the mutation call returns.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]models.Record
	activity    []models.Activity
	failures    map[string]error
	now         func() time.Time

	events chan models.ChangeEvent
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]models.Record),
		failures:    make(map[string]error),
		now:         time.Now,
		events:      make(chan models.ChangeEvent, 256),
	}
}

// Fail makes every subsequent call of op ("select", "insert", "update",
// "delete", "reorder", "append") return err until it is cleared with a nil
// error. It simulates an unreachable backend.
func (m *MemoryStore) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *MemoryStore) failure(op, collection string) error {
	if err, ok := m.failures[op]; ok {
		return common.NewRemoteError(op, collection, err)
	}
	return nil
}

func (m *MemoryStore) notify(ev models.ChangeEvent) {
	select {
	case m.events <- ev:
	default:
		// a full buffer already guarantees a pending refresh for subscribers
	}
}

// Listen delivers change events to emit until ctx is done. The in-process
// feed is connected immediately.
func (m *MemoryStore) Listen(ctx context.Context, ready func(), emit func(models.ChangeEvent)) error {
	ready()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-m.events:
			emit(ev)
		}
	}
}

func copyFields(src models.Fields) models.Fields {
	var dst models.Fields
	if err := deepcopy.Copy(&dst, src); err != nil || dst == nil {
		dst = models.Fields{}
	}
	return dst
}

func copyRecord(r models.Record) models.Record {
	r.Fields = copyFields(r.Fields)
	return r
}

func (m *MemoryStore) Select(ctx context.Context, collection string, q Query) ([]models.Record, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("select", collection); err != nil {
		return nil, err
	}

	result := make([]models.Record, 0, len(m.collections[collection]))
	for _, rec := range m.collections[collection] {
		if matches(rec, q.Filters) {
			result = append(result, copyRecord(rec))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i], result[j], q.Order)
	})
	return result, nil
}

func matches(rec models.Record, filters map[string]any) bool {
	for name, want := range filters {
		if rec.Fields.String(name) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func less(a, b models.Record, order []Order) bool {
	for _, o := range order {
		c := compareField(a, b, o)
		if c == 0 {
			continue
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func compareField(a, b models.Record, o Order) int {
	switch o.Field {
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	aBlank, bBlank := a.Fields.IsBlank(o.Field), b.Fields.IsBlank(o.Field)
	switch {
	case aBlank && bBlank:
		return 0
	case aBlank:
		return 1
	case bBlank:
		return -1
	}
	if o.Numeric {
		return a.Fields.Int(o.Field) - b.Fields.Int(o.Field)
	}
	return strings.Compare(a.Fields.String(o.Field), b.Fields.String(o.Field))
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, fields models.Fields) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert", collection); err != nil {
		return models.Record{}, err
	}

	now := m.now()
	rec := models.Record{ID: uuid.NewString(), Fields: copyFields(fields), CreatedAt: now, UpdatedAt: now}
	m.collections[collection] = append(m.collections[collection], rec)
	m.notify(models.ChangeEvent{Collection: collection, Kind: models.ChangeInsert, ID: rec.ID})
	return copyRecord(rec), nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update", collection); err != nil {
		return err
	}

	records := m.collections[collection]
	for i := range records {
		if records[i].ID != id {
			continue
		}
		for k, v := range copyFields(fields) {
			records[i].Fields[k] = v
		}
		records[i].UpdatedAt = m.now()
		m.notify(models.ChangeEvent{Collection: collection, Kind: models.ChangeUpdate, ID: id})
		return nil
	}
	return fmt.Errorf("update %s/%s: %w", collection, id, common.ErrorNotFound)
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete", collection); err != nil {
		return err
	}

	records := m.collections[collection]
	for i := range records {
		if records[i].ID != id {
			continue
		}
		m.collections[collection] = append(records[:i:i], records[i+1:]...)
		m.notify(models.ChangeEvent{Collection: collection, Kind: models.ChangeDelete, ID: id})
		return nil
	}
	return fmt.Errorf("delete %s/%s: %w", collection, id, common.ErrorNotFound)
}

func (m *MemoryStore) Reorder(ctx context.Context, collection string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("reorder", collection); err != nil {
		return err
	}

	records := m.collections[collection]
	index := make(map[string]int, len(records))
	for i, rec := range records {
		index[rec.ID] = i
	}
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			return fmt.Errorf("reorder %s/%s: %w", collection, id, common.ErrorNotFound)
		}
	}
	now := m.now()
	for pos, id := range ids {
		rec := &records[index[id]]
		rec.Fields[DisplayOrderField] = pos
		rec.UpdatedAt = now
		m.notify(models.ChangeEvent{Collection: collection, Kind: models.ChangeUpdate, ID: id})
	}
	return nil
}

func (m *MemoryStore) AppendActivity(ctx context.Context, a models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("append", "activity_log"); err != nil {
		return err
	}
	a.Snapshot = copyFields(a.Snapshot)
	m.activity = append(m.activity, a)
	return nil
}

func (m *MemoryStore) ListActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = len(m.activity)
	}
	result := make([]models.Activity, 0, min(limit, len(m.activity)))
	for i := len(m.activity) - 1; i >= 0 && len(result) < limit; i-- {
		a := m.activity[i]
		a.Snapshot = copyFields(a.Snapshot)
		result = append(result, a)
	}
	return result, nil
}

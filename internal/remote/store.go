// Package remote is the boundary to the authoritative content store: CRUD per
// named collection plus the append-only activity log. PostgresStore is the
// production backend; MemoryStore backs dev mode and tests.
package remote

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// Order sorts a selection by one field. created_at and updated_at refer to
// the record timestamps; any other name refers to a payload field.
type Order struct {
	Field   string
	Desc    bool
	Numeric bool
}

// Query narrows a selection. Filters match payload fields by equality of
// their textual value.
type Query struct {
	Filters map[string]any
	Order   []Order
}

// Store is the request/response CRUD interface of the remote store.
type Store interface {
	Select(ctx context.Context, collection string, q Query) ([]models.Record, error)
	Insert(ctx context.Context, collection string, fields models.Fields) (models.Record, error)
	// Update merges fields into the stored payload. It returns
	// common.ErrorNotFound when no record has the given id.
	Update(ctx context.Context, collection, id string, fields models.Fields) error
	Delete(ctx context.Context, collection, id string) error
	// Reorder rewrites display_order of the given ids to their slice index.
	Reorder(ctx context.Context, collection string, ids []string) error
}

// ActivityLog stores audit entries.
type ActivityLog interface {
	AppendActivity(ctx context.Context, a models.Activity) error
	ListActivity(ctx context.Context, limit int) ([]models.Activity, error)
}

// DisplayOrderField is the payload field used by explicitly ordered collections.
const DisplayOrderField = "display_order"

var fieldNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateFieldName rejects names that cannot be used in a query.
func ValidateFieldName(name string) error {
	if !fieldNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidField, name)
	}
	return nil
}

func validateQuery(q Query) error {
	for name := range q.Filters {
		if err := ValidateFieldName(name); err != nil {
			return err
		}
	}
	for _, o := range q.Order {
		if err := ValidateFieldName(o.Field); err != nil {
			return err
		}
	}
	return nil
}

package remote

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/dbx"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote/migrations"
)

// PostgresStore keeps every collection in the content_records table, one
// JSONB payload per record. Mutations fire the content_changes NOTIFY
// trigger installed by the migrations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a store bound to db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to PostgreSQL through the pgx stdlib driver and verifies
// the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// newID is a seam so tests can pin generated record ids.
var newID = uuid.NewString

func orderClause(order []Order) string {
	parts := make([]string, 0, len(order)+2)
	for _, o := range order {
		var expr string
		switch {
		case o.Field == "created_at" || o.Field == "updated_at":
			expr = o.Field
		case o.Numeric:
			expr = fmt.Sprintf("NULLIF(data->>'%s', '')::numeric", o.Field)
		default:
			expr = fmt.Sprintf("data->>'%s'", o.Field)
		}
		if o.Desc {
			expr += " DESC"
		}
		expr += " NULLS LAST"
		parts = append(parts, expr)
	}
	parts = append(parts, "created_at", "id")
	return strings.Join(parts, ", ")
}

// Select returns the records of collection in server order.
func (s *PostgresStore) Select(ctx context.Context, collection string, q Query) ([]models.Record, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	var sb strings.Builder
	args := []any{collection}
	sb.WriteString("SELECT id, data, created_at, updated_at FROM content_records WHERE collection = $1")
	for _, name := range sortedKeys(q.Filters) {
		args = append(args, fmt.Sprint(q.Filters[name]))
		fmt.Fprintf(&sb, " AND data->>'%s' = $%d", name, len(args))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderClause(q.Order))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, common.NewRemoteError("select", collection, err)
	}
	defer rows.Close()

	result := make([]models.Record, 0)
	for rows.Next() {
		var (
			rec  models.Record
			data []byte
		)
		if err := rows.Scan(&rec.ID, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, common.NewRemoteError("select", collection, err)
		}
		if err := json.Unmarshal(data, &rec.Fields); err != nil {
			return nil, common.NewRemoteError("select", collection, fmt.Errorf("decode %s: %w", rec.ID, err))
		}
		if rec.Fields == nil {
			rec.Fields = models.Fields{}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewRemoteError("select", collection, err)
	}
	return result, nil
}

// Insert stores a new record with a generated id.
func (s *PostgresStore) Insert(ctx context.Context, collection string, fields models.Fields) (models.Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return models.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	rec := models.Record{ID: newID(), Fields: fields}
	query := `
		INSERT INTO content_records (id, collection, data)
		VALUES ($1, $2, $3::jsonb)
		RETURNING created_at, updated_at`
	err = s.db.QueryRowContext(ctx, query, rec.ID, collection, string(data)).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return models.Record{}, common.NewRemoteError("insert", collection, err)
	}
	return rec, nil
}

// Update merges fields into the stored payload (last write wins).
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	if err := checkID("update", collection, id); err != nil {
		return err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		UPDATE content_records
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id, string(data))
	if err != nil {
		return common.NewRemoteError("update", collection, err)
	}
	return expectOneRow(res, "update", collection, id)
}

// Delete removes a record. Deleting a missing record returns ErrorNotFound.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkID("delete", collection, id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM content_records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return common.NewRemoteError("delete", collection, err)
	}
	return expectOneRow(res, "delete", collection, id)
}

// Reorder assigns display_order 0..n-1 to ids inside one transaction.
func (s *PostgresStore) Reorder(ctx context.Context, collection string, ids []string) error {
	for _, id := range ids {
		if err := checkID("reorder", collection, id); err != nil {
			return err
		}
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			UPDATE content_records
			SET data = jsonb_set(data, '{display_order}', to_jsonb($3::int)), updated_at = now()
			WHERE collection = $1 AND id = $2`
		for i, id := range ids {
			res, err := tx.ExecContext(ctx, query, collection, id, i)
			if err != nil {
				return err
			}
			if err := expectOneRow(res, "reorder", collection, id); err != nil {
				return err
			}
		}
		return nil
	})
	return common.NewRemoteError("reorder", collection, err)
}

// AppendActivity writes one audit entry.
func (s *PostgresStore) AppendActivity(ctx context.Context, a models.Activity) error {
	var snapshot any
	if a.Snapshot != nil {
		b, err := json.Marshal(a.Snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		snapshot = string(b)
	}
	query := `
		INSERT INTO activity_log (id, action, entity_type, entity_id, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)`
	_, err := s.db.ExecContext(ctx, query, a.ID, a.Action, a.EntityType, a.EntityID, snapshot, a.CreatedAt)
	if err != nil {
		return common.NewRemoteError("append", "activity_log", err)
	}
	return nil
}

// ListActivity returns the newest entries first.
func (s *PostgresStore) ListActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	query := `
		SELECT id, action, entity_type, entity_id, snapshot, created_at
		FROM activity_log ORDER BY id DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, common.NewRemoteError("select", "activity_log", err)
	}
	defer rows.Close()

	result := make([]models.Activity, 0)
	for rows.Next() {
		var (
			a        models.Activity
			snapshot []byte
			created  time.Time
		)
		if err := rows.Scan(&a.ID, &a.Action, &a.EntityType, &a.EntityID, &snapshot, &created); err != nil {
			return nil, common.NewRemoteError("select", "activity_log", err)
		}
		if len(snapshot) > 0 {
			if err := json.Unmarshal(snapshot, &a.Snapshot); err != nil {
				return nil, fmt.Errorf("decode snapshot %s: %w", a.ID, err)
			}
		}
		a.CreatedAt = created
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewRemoteError("select", "activity_log", err)
	}
	return result, nil
}

// checkID rejects ids the uuid column could never hold.
func checkID(op, collection, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %s/%s: %w", op, collection, id, common.ErrorNotFound)
	}
	return nil
}

func expectOneRow(res sql.Result, op, collection, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.NewRemoteError(op, collection, fmt.Errorf("rows affected: %w", err))
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s %s/%s: %w", op, collection, id, common.ErrorNotFound)
	default:
		return common.NewRemoteError(op, collection, fmt.Errorf("unexpected rows affected: %d", n))
	}
}

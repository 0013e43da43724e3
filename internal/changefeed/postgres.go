package changefeed

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// DefaultPgChannel is the NOTIFY channel written by the content_records trigger.
const DefaultPgChannel = "content_changes"

type pgConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// connectPg is a seam for tests.
var connectPg = func(ctx context.Context, dsn string) (pgConn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// PgListener receives PostgreSQL LISTEN/NOTIFY payloads on a dedicated
// connection.
type PgListener struct {
	dsn     string
	channel string
	logger  logging.Logger
}

// NewPgListener constructs a listener for the given DSN and channel.
func NewPgListener(dsn, channel string, logger logging.Logger) *PgListener {
	if channel == "" {
		channel = DefaultPgChannel
	}
	return &PgListener{dsn: dsn, channel: channel, logger: logger}
}

// Listen implements Listener.
func (l *PgListener) Listen(ctx context.Context, ready func(), emit func(models.ChangeEvent)) error {
	conn, err := connectPg(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = conn.Close(context.Background())
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	ready()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil || ev.Collection == "" {
			l.logger.Warn(ctx, "malformed change notification", "payload", n.Payload, "error", err)
			continue
		}
		emit(ev)
	}
}

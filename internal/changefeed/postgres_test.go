package changefeed

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

type fakeConn struct {
	execSQL  []string
	execErr  error
	payloads []string
	closed   bool
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.NewCommandTag("LISTEN"), f.execErr
}

func (f *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	if len(f.payloads) == 0 {
		return nil, errors.New("conn closed")
	}
	p := f.payloads[0]
	f.payloads = f.payloads[1:]
	return &pgconn.Notification{Channel: DefaultPgChannel, Payload: p}, nil
}

func (f *fakeConn) Close(context.Context) error {
	f.closed = true
	return nil
}

func withConn(t *testing.T, conn pgConn, err error) {
	t.Helper()
	orig := connectPg
	connectPg = func(context.Context, string) (pgConn, error) { return conn, err }
	t.Cleanup(func() { connectPg = orig })
}

func TestPgListener_DecodesPayloads(t *testing.T) {
	conn := &fakeConn{payloads: []string{
		`{"collection":"services","kind":"insert","id":"abc"}`,
		`not json`,
		`{"kind":"delete"}`,
		`{"collection":"projects","kind":"delete","id":"p1"}`,
	}}
	withConn(t, conn, nil)

	l := NewPgListener("postgres://x", "", logging.Nop())
	var got []models.ChangeEvent
	readyCalled := false

	err := l.Listen(context.Background(), func() { readyCalled = true }, func(ev models.ChangeEvent) {
		got = append(got, ev)
	})

	require.ErrorContains(t, err, "wait for notification")
	assert.True(t, readyCalled)
	assert.True(t, conn.closed)
	assert.Equal(t, []string{`LISTEN "content_changes"`}, conn.execSQL)
	assert.Equal(t, []models.ChangeEvent{
		{Collection: "services", Kind: models.ChangeInsert, ID: "abc"},
		{Collection: "projects", Kind: models.ChangeDelete, ID: "p1"},
	}, got)
}

func TestPgListener_ConnectError(t *testing.T) {
	withConn(t, nil, errors.New("refused"))

	l := NewPgListener("postgres://x", "feed", logging.Nop())
	err := l.Listen(context.Background(), func() { t.Fatal("ready must not be called") }, func(models.ChangeEvent) {})
	require.ErrorContains(t, err, "connect: refused")
}

func TestPgListener_ListenError(t *testing.T) {
	conn := &fakeConn{execErr: errors.New("permission denied")}
	withConn(t, conn, nil)

	l := NewPgListener("postgres://x", "feed", logging.Nop())
	err := l.Listen(context.Background(), func() { t.Fatal("ready must not be called") }, func(models.ChangeEvent) {})
	require.ErrorContains(t, err, "listen feed")
	assert.True(t, conn.closed)
}

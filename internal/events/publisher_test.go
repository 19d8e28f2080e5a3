package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjit42/naming-service/internal/domain"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestPublishImportCompleted(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "roster.import.completed")
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	run := &domain.ImportRun{RunID: "r1", Source: "text", HeaderAccepted: true, TotalRows: 2, SuccessRowsNumber: 2}
	require.NoError(t, p.PublishImportCompleted(context.Background(), run))

	assert.Equal(t, "roster.import.completed", conn.subject)
	var got ImportCompleted
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, "import.completed", got.Event)
	assert.Equal(t, "r1", got.Run.RunID)
	assert.Equal(t, 2, got.Run.SuccessRowsNumber)
	assert.Equal(t, p.now(), got.At)
}

func TestPublishErrors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := NewPublisher(conn, "s")

	err := p.PublishImportCompleted(context.Background(), &domain.ImportRun{})
	assert.ErrorContains(t, err, "publish to s")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn.subject = ""
	assert.ErrorIs(t, p.PublishImportCompleted(ctx, &domain.ImportRun{}), context.Canceled)
	assert.Empty(t, conn.subject)
}

func TestCloseWithoutConnection(t *testing.T) {
	assert.NoError(t, NewPublisher(&fakeConn{}, "s").Close())
}

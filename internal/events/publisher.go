// Package events announces roster events on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Sanjit42/naming-service/internal/domain"
)

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

// ImportCompleted is the payload published when an import run finishes.
type ImportCompleted struct {
	Event string            `json:"event"`
	Run   *domain.ImportRun `json:"run"`
	At    time.Time         `json:"at"`
}

// Publisher publishes roster events to a single subject.
type Publisher struct {
	conn    Conn
	subject string
	nc      *nats.Conn
	now     func() time.Time
}

// NewPublisher publishes through conn.
func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject, now: time.Now}
}

// Connect dials the NATS server at url.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("naming-service"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := NewPublisher(nc, subject)
	p.nc = nc
	return p, nil
}

var _ domain.EventPublisher = (*Publisher)(nil)

// PublishImportCompleted publishes run as an ImportCompleted event.
func (p *Publisher) PublishImportCompleted(ctx context.Context, run *domain.ImportRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(ImportCompleted{Event: "import.completed", Run: run, At: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// Close drains the connection opened by Connect.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

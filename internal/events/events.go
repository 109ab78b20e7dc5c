// Package events publishes analytics events about links.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	LinkCreated = "link.created"
	LinkClicked = "link.clicked"
)

// Event is one analytics fact, JSON encoded on the wire.
type Event struct {
	Name        string    `json:"name"`
	ShortCode   string    `json:"short_code,omitempty"`
	LinkID      string    `json:"link_id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	HasPassword bool      `json:"has_password"`
	At          time.Time `json:"at"`
}

// Publisher delivers events to an analytics sink.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Conn is the part of *nats.Conn used for publishing.
type Conn interface {
	Publish(subj string, data []byte) error
}

// NATS publishes events on core NATS subjects "<prefix>.<event name>".
type NATS struct {
	conn   Conn
	prefix string
}

// NewNATS returns a publisher on conn. An empty prefix publishes on the
// bare event name.
func NewNATS(conn Conn, subjectPrefix string) *NATS {
	return &NATS{conn: conn, prefix: subjectPrefix}
}

// Subject returns the subject an event with the given name is published on.
func (p *NATS) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *NATS) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(ev.Name), data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Name, err)
	}
	return nil
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("linkgate"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
}

// Emit publishes ev and logs a failure instead of returning it.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event", ev.Name),
			zap.String("link_id", ev.LinkID),
			zap.Error(err))
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("todo-service"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

// Subject returns the subject an event of type typ is published on,
// e.g. "todo.events.todo.created".
func (p *NATSPublisher) Subject(typ string) string {
	return p.subject + "." + typ
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(ev.Type), b); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}

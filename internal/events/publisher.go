package events

import (
	"context"
	"time"

	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/google/uuid"
)

const (
	UserRegistered = "user.registered"
	TodoCreated    = "todo.created"
	TodoUpdated    = "todo.updated"
	TodoDeleted    = "todo.deleted"
)

// Event is the envelope written to the event transport.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Username   string      `json:"username"`
	RequestID  string      `json:"request_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
}

func New(ctx context.Context, typ, username string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Username:   username,
		RequestID:  utils.RequestIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

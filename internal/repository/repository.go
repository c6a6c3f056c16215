package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fathima-sithara/todo-service/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

const opTimeout = 5 * time.Second

var ErrNotFound = errors.New("document not found")

// DuplicateKeyError is returned when an insert hits a unique index.
// Field names the indexed field ("email" or "username") when it can be told
// from the server message.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

type UserRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, username string, upd models.UserUpdate) (*models.User, error)
}

type TodoRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, t *models.Todo) error
	FindByID(ctx context.Context, id string) (*models.Todo, error)
	ListByUsername(ctx context.Context, username string) ([]models.Todo, error)
	Update(ctx context.Context, id string, upd models.TodoUpdate) (*models.Todo, error)
	Delete(ctx context.Context, id string) (*models.Todo, error)
}

func duplicateKey(err error, fields ...string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	for _, f := range fields {
		if strings.Contains(msg, f+"_") || strings.Contains(msg, "{ "+f+":") {
			return &DuplicateKeyError{Field: f, Err: err}
		}
	}
	return &DuplicateKeyError{Err: err}
}

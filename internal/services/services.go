package services

import (
	"context"
	"errors"
	"time"

	"github.com/fathima-sithara/todo-service/internal/events"
	"github.com/fathima-sithara/todo-service/internal/models"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrForbidden          = errors.New("forbidden")
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService interface {
	Signup(ctx context.Context, in *utils.SignupInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type UserService interface {
	Get(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, in *utils.UserUpdateInput) (*models.User, error)
}

// TodoService manages todos. actor is the username from the caller's token,
// or "" when the route is unauthenticated.
type TodoService interface {
	Create(ctx context.Context, actor, username, content string) (*models.Todo, error)
	ListByUsername(ctx context.Context, username string) ([]models.Todo, error)
	Update(ctx context.Context, actor, id string, in *utils.TodoUpdateInput) (*models.Todo, error)
	Delete(ctx context.Context, actor, id string) (*models.Todo, error)
}

func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, ev events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed",
			zap.String("type", ev.Type),
			zap.String("event_id", ev.ID),
			zap.Error(err),
		)
	}
}

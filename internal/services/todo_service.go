package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fathima-sithara/todo-service/internal/events"
	"github.com/fathima-sithara/todo-service/internal/metrics"
	"github.com/fathima-sithara/todo-service/internal/models"
	"github.com/fathima-sithara/todo-service/internal/repository"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"go.uber.org/zap"
)

type todoService struct {
	todos            repository.TodoRepository
	users            repository.UserRepository
	validator        *utils.Validator
	enforceOwnership bool
	publisher        events.Publisher
	metrics          *metrics.Metrics
	log              *zap.Logger
	now              func() time.Time
}

func NewTodoService(
	todos repository.TodoRepository,
	users repository.UserRepository,
	validator *utils.Validator,
	enforceOwnership bool,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) TodoService {
	return &todoService{
		todos:            todos,
		users:            users,
		validator:        validator,
		enforceOwnership: enforceOwnership,
		publisher:        publisher,
		metrics:          m,
		log:              logger,
		now:              time.Now,
	}
}

func (s *todoService) checkOwner(actor, owner string) error {
	if s.enforceOwnership && actor != "" && actor != owner {
		return ErrForbidden
	}
	return nil
}

func (s *todoService) Create(ctx context.Context, actor, username, content string) (*models.Todo, error) {
	username = strings.TrimSpace(username)
	content = strings.TrimSpace(content)
	if username == "" || content == "" {
		return nil, utils.NewValidationError(utils.MsgTodoFieldsMissing)
	}
	if err := s.checkOwner(actor, username); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("check todo owner: %w", err)
	}

	t := &models.Todo{
		Username:  username,
		Content:   content,
		TimeAdded: models.FormatTimeAdded(s.now()),
	}
	if err := s.todos.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	publish(ctx, s.publisher, s.log, events.New(ctx, events.TodoCreated, t.Username, t))
	return t, nil
}

func (s *todoService) ListByUsername(ctx context.Context, username string) ([]models.Todo, error) {
	todos, err := s.todos.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *todoService) Update(ctx context.Context, actor, id string, in *utils.TodoUpdateInput) (*models.Todo, error) {
	if err := s.validator.ValidateTodoUpdate(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	t, err := s.todos.Update(ctx, id, models.TodoUpdate{Content: in.Content})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	publish(ctx, s.publisher, s.log, events.New(ctx, events.TodoUpdated, t.Username, t))
	return t, nil
}

func (s *todoService) Delete(ctx context.Context, actor, id string) (*models.Todo, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	t, err := s.todos.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete todo: %w", err)
	}

	publish(ctx, s.publisher, s.log, events.New(ctx, events.TodoDeleted, t.Username, t))
	return t, nil
}

// authorize looks the todo up only when ownership is enforced for an
// authenticated caller.
func (s *todoService) authorize(ctx context.Context, actor, id string) error {
	if !s.enforceOwnership || actor == "" {
		return nil
	}
	t, err := s.todos.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	if err != nil {
		return fmt.Errorf("find todo: %w", err)
	}
	return s.checkOwner(actor, t.Username)
}

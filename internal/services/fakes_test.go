package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fathima-sithara/todo-service/internal/events"
	"github.com/fathima-sithara/todo-service/internal/models"
	"github.com/fathima-sithara/todo-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- in-memory repositories ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User // by username
	// createErr, when set, is returned by Create without storing.
	createErr error
	findErr   error
}

func newMemUserRepo(seed ...models.User) *memUserRepo {
	r := &memUserRepo{users: map[string]models.User{}}
	for _, u := range seed {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.Username] = u
	}
	return r
}

func (r *memUserRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return &repository.DuplicateKeyError{Field: "email", Err: errors.New("E11000")}
		}
	}
	if _, ok := r.users[u.Username]; ok {
		return &repository.DuplicateKeyError{Field: "username", Err: errors.New("E11000")}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.Username] = *u
	return nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, username string, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Age != nil {
		u.Age = *upd.Age
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	r.users[username] = u
	return &u, nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memTodoRepo struct {
	mu    sync.Mutex
	todos map[primitive.ObjectID]models.Todo
	order []primitive.ObjectID
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{todos: map[primitive.ObjectID]models.Todo{}}
}

func (r *memTodoRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memTodoRepo) Create(_ context.Context, t *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = primitive.NewObjectID()
	r.todos[t.ID] = *t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *memTodoRepo) FindByID(_ context.Context, id string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	t, ok := r.todos[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *memTodoRepo) ListByUsername(_ context.Context, username string) ([]models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Todo, 0)
	for _, id := range r.order {
		if t, ok := r.todos[id]; ok && t.Username == username {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTodoRepo) Update(_ context.Context, id string, upd models.TodoUpdate) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	t, ok := r.todos[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Content != nil {
		t.Content = *upd.Content
	}
	r.todos[oid] = t
	return &t, nil
}

func (r *memTodoRepo) Delete(_ context.Context, id string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	t, ok := r.todos[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.todos, oid)
	return &t, nil
}

func (r *memTodoRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.todos)
}

// --- event capture ---

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

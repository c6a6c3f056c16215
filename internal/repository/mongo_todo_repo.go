package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fathima-sithara/todo-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTodoRepo struct {
	col *mongo.Collection
}

func NewMongoTodoRepo(db *mongo.Database, collection string) TodoRepository {
	return &mongoTodoRepo{col: db.Collection(collection)}
}

func (r *mongoTodoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create todo indexes: %w", err)
	}
	return nil
}

func (r *mongoTodoRepo) Create(ctx context.Context, t *models.Todo) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *mongoTodoRepo) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var t models.Todo
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find todo: %w", err)
	}
	return &t, nil
}

// ListByUsername never returns a nil slice so that an empty list encodes as [].
func (r *mongoTodoRepo) ListByUsername(ctx context.Context, username string) ([]models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}
	defer cur.Close(ctx)

	todos := make([]models.Todo, 0)
	if err := cur.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	return todos, nil
}

func (r *mongoTodoRepo) Update(ctx context.Context, id string, upd models.TodoUpdate) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Todo
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return &t, nil
}

func (r *mongoTodoRepo) Delete(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var t models.Todo
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete todo: %w", err)
	}
	return &t, nil
}

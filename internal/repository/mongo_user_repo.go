package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fathima-sithara/todo-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database, collection string) UserRepository {
	return &mongoUserRepo{col: db.Collection(collection)}
}

func (r *mongoUserRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", duplicateKey(err, "email", "username"))
	}
	return nil
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *mongoUserRepo) Update(ctx context.Context, username string, upd models.UserUpdate) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.FirstName != nil {
		set["firstName"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["lastName"] = *upd.LastName
	}
	if upd.Age != nil {
		set["age"] = *upd.Age
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Password != nil {
		set["password"] = *upd.Password
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"username": username}, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/fathima-sithara/todo-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	userNS = "userData.userProfile"
	todoNS = "userData.userlist"
)

func userDoc(id primitive.ObjectID, username string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "firstName", Value: "Alice"},
		{Key: "lastName", Value: "Smith"},
		{Key: "email", Value: "alice@example.com"},
		{Key: "username", Value: username},
		{Key: "age", Value: 30},
		{Key: "phone", Value: "5551234567"},
		{Key: "password", Value: "$2a$10$hash"},
	}
}

func todoDoc(id primitive.ObjectID, username, content string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "content", Value: content},
		{Key: "timeAdded", Value: "1/2/2024, 3:04:05 PM"},
	}
}

func findAndModifyResponse(doc interface{}) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

func TestMongoUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		require.NoError(mt, repo.EnsureIndexes(context.Background()))
	})

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		u := &models.User{Username: "alice", Email: "alice@example.com"}
		require.NoError(mt, repo.Create(context.Background(), u))
		assert.False(mt, u.ID.IsZero())
		assert.False(mt, u.CreatedAt.IsZero())
		assert.Equal(mt, u.CreatedAt, u.UpdatedAt)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: userData.userProfile index: email_1 dup key: { email: \"alice@example.com\" }",
		}))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		err := repo.Create(context.Background(), &models.User{Username: "alice"})
		var dup *DuplicateKeyError
		require.True(mt, errors.As(err, &dup))
		assert.Equal(mt, "email", dup.Field)
	})

	mt.Run("create duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: userData.userProfile index: username_1 dup key: { username: \"alice\" }",
		}))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		err := repo.Create(context.Background(), &models.User{Username: "alice"})
		var dup *DuplicateKeyError
		require.True(mt, errors.As(err, &dup))
		assert.Equal(mt, "username", dup.Field)
	})

	mt.Run("find by username", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, userNS, mtest.FirstBatch, userDoc(id, "alice")))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		u, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "alice", u.Username)
		assert.Equal(mt, 30, u.Age)
		assert.Equal(mt, "$2a$10$hash", u.Password)
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, userNS, mtest.FirstBatch))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find propagates server errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		_, err := repo.FindByUsername(context.Background(), "alice")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update returns document after change", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		doc := userDoc(id, "alice")
		doc[1].Value = "Alicia"
		mt.AddMockResponses(findAndModifyResponse(doc))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		name := "Alicia"
		u, err := repo.Update(context.Background(), "alice", models.UserUpdate{FirstName: &name})
		require.NoError(mt, err)
		assert.Equal(mt, "Alicia", u.FirstName)
		assert.Equal(mt, "Smith", u.LastName)
	})

	mt.Run("update unknown user", func(mt *mtest.T) {
		mt.AddMockResponses(findAndModifyResponse(nil))
		repo := NewMongoUserRepo(mt.DB, "userProfile")

		age := 40
		_, err := repo.Update(context.Background(), "ghost", models.UserUpdate{Age: &age})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoTodoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		todo := &models.Todo{Username: "alice", Content: "buy milk", TimeAdded: "1/2/2024, 3:04:05 PM"}
		require.NoError(mt, repo.Create(context.Background(), todo))
		assert.False(mt, todo.ID.IsZero())
	})

	mt.Run("list by username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, todoNS, mtest.FirstBatch,
			todoDoc(primitive.NewObjectID(), "alice", "buy milk"),
			todoDoc(primitive.NewObjectID(), "alice", "walk dog"),
		))
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		todos, err := repo.ListByUsername(context.Background(), "alice")
		require.NoError(mt, err)
		require.Len(mt, todos, 2)
		assert.Equal(mt, "buy milk", todos[0].Content)
		assert.NotEmpty(mt, todos[0].TimeAdded)
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, todoNS, mtest.FirstBatch))
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		todos, err := repo.ListByUsername(context.Background(), "nobody")
		require.NoError(mt, err)
		assert.NotNil(mt, todos)
		assert.Empty(mt, todos)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, todoNS, mtest.FirstBatch, todoDoc(id, "alice", "buy milk")))
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		todo, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "alice", todo.Username)
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		_, err := repo.FindByID(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, ErrNotFound)
		_, err = repo.Delete(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, ErrNotFound)
		content := "x"
		_, err = repo.Update(context.Background(), "not-an-id", models.TodoUpdate{Content: &content})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update content", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(findAndModifyResponse(todoDoc(id, "alice", "buy oat milk")))
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		content := "buy oat milk"
		todo, err := repo.Update(context.Background(), id.Hex(), models.TodoUpdate{Content: &content})
		require.NoError(mt, err)
		assert.Equal(mt, "buy oat milk", todo.Content)
		assert.Equal(mt, "alice", todo.Username)
	})

	mt.Run("delete returns removed todo", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(findAndModifyResponse(todoDoc(id, "alice", "buy milk")))
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		todo, err := repo.Delete(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id, todo.ID)
	})

	mt.Run("delete unknown id", func(mt *mtest.T) {
		mt.AddMockResponses(findAndModifyResponse(nil))
		repo := NewMongoTodoRepo(mt.DB, "userlist")

		_, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

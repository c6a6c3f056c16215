package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fathima-sithara/todo-service/internal/models"
	"github.com/fathima-sithara/todo-service/internal/repository"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"go.uber.org/zap"
)

type userService struct {
	users     repository.UserRepository
	validator *utils.Validator
	hashCost  int
	log       *zap.Logger
}

func NewUserService(users repository.UserRepository, validator *utils.Validator, hashCost int, logger *zap.Logger) UserService {
	return &userService{users: users, validator: validator, hashCost: hashCost, log: logger}
}

func (s *userService) Get(ctx context.Context, username string) (*models.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update applies the supplied profile fields only. A new password is hashed
// before it is stored.
func (s *userService) Update(ctx context.Context, username string, in *utils.UserUpdateInput) (*models.User, error) {
	if err := s.validator.ValidateUserUpdate(in); err != nil {
		return nil, err
	}

	upd := models.UserUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	if in.Age != nil {
		age, err := in.Age.Int()
		if err != nil {
			return nil, utils.NewValidationError(utils.MsgAgeInvalid)
		}
		upd.Age = &age
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password, s.hashCost)
		if err != nil {
			return nil, err
		}
		upd.Password = &hash
	}

	u, err := s.users.Update(ctx, username, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info("user updated", zap.String("username", username))
	return u, nil
}

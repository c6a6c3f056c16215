package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fathima-sithara/todo-service/internal/events"
	"github.com/fathima-sithara/todo-service/internal/metrics"
	"github.com/fathima-sithara/todo-service/internal/models"
	"github.com/fathima-sithara/todo-service/internal/repository"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	users     repository.UserRepository
	validator *utils.Validator
	jwt       *utils.JWTManager
	hashCost  int
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	validator *utils.Validator,
	jwtMgr *utils.JWTManager,
	hashCost int,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:     users,
		validator: validator,
		jwt:       jwtMgr,
		hashCost:  hashCost,
		publisher: publisher,
		metrics:   m,
		log:       logger,
	}
}

func hashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Signup validates in, checks email and username are free and stores the
// account with a bcrypt hash of the password.
func (s *authService) Signup(ctx context.Context, in *utils.SignupInput) (*models.User, error) {
	in.Normalize()
	if err := s.validator.ValidateSignup(in); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	age, err := in.Age.Int()
	if err != nil {
		return nil, utils.NewValidationError(utils.MsgAgeInvalid)
	}
	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Username:  in.Username,
		Age:       age,
		Phone:     in.Phone,
		Password:  hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		var dup *repository.DuplicateKeyError
		if errors.As(err, &dup) {
			switch dup.Field {
			case "email":
				return nil, ErrEmailExists
			case "username":
				return nil, ErrUsernameExists
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncSignup()
	publish(ctx, s.publisher, s.log, events.New(ctx, events.UserRegistered, u.Username, userRegisteredPayload(u)))
	s.log.Info("user registered", zap.String("username", u.Username))
	return u, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.IncLogin(metrics.LoginUnknownUser)
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.metrics.IncLogin(metrics.LoginInternalError)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.metrics.IncLogin(metrics.LoginBadPassword)
			return nil, ErrInvalidCredentials
		}
		s.metrics.IncLogin(metrics.LoginInternalError)
		return nil, fmt.Errorf("compare password: %w", err)
	}

	token, exp, err := s.jwt.Generate(u.Username)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginInternalError)
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.metrics.IncLogin(metrics.LoginSuccess)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// userRegisteredPayload leaves out the password hash.
func userRegisteredPayload(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID.Hex(),
		"username":  u.Username,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
	}
}

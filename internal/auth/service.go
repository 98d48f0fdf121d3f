package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("неверный email или пароль")
var ErrEmailTaken = errors.New("email уже занят")

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
}

// Service разрешает bearer-токен в Principal и ведёт регистрацию/вход.
type Service struct {
	users  UserRepository
	jwt    *JWTManager
	hasher *PasswordHasher
}

func NewService(users UserRepository, jwtManager *JWTManager) *Service {
	return &Service{
		users:  users,
		jwt:    jwtManager,
		hasher: NewPasswordHasher(),
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		logger.Warn("Auth: Попытка регистрации с занятым email", zap.String("email", email))
		return nil, ErrEmailTaken
	} else if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("проверка email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, rep.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Auth: Пользователь зарегистрирован", zap.String("user_id", newUser.ID.String()))
	return newUser, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("получение пользователя: %w", err)
	}

	if !s.hasher.Verify(password, found.PasswordHash) {
		logger.Warn("Auth: Неверный пароль", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(found.ID, found.Email)
	if err != nil {
		return "", fmt.Errorf("выпуск токена: %w", err)
	}
	return token, nil
}

// Authenticate разбирает токен и возвращает Principal запроса.
func (s *Service) Authenticate(ctx context.Context, token string) (user.Principal, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return user.Principal{}, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return user.Principal{}, ErrInvalidToken
	}

	return user.Principal{ID: id, Email: claims.Email}, nil
}

func (s *Service) CurrentUser(ctx context.Context, principal user.Principal) (*user.User, error) {
	found, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return found, nil
}

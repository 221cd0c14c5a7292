package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chat-gateway/internal/database"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound      = errors.New("user does not exist")
	ErrUserExists        = errors.New("user already exists")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// UserService persists user records as redis hashes under user:<username>.
// Usernames are immutable once created; records are never deleted.
type UserService struct {
	client *database.RedisClient
}

func NewUserService(client *database.RedisClient) *UserService {
	return &UserService{client: client}
}

func userKey(username string) string {
	return "user:" + username
}

// Create stores a new user record. The password is hashed with bcrypt
// before it touches the store.
func (s *UserService) Create(ctx context.Context, username, password string) error {
	rdb := s.client.GetClient()

	exists, err := rdb.Exists(ctx, userKey(username)).Result()
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists > 0 {
		return ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := rdb.HSet(ctx, userKey(username), map[string]interface{}{
		"username": username,
		"password": string(hashed),
	}).Err(); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User registered", "username", username)
	return nil
}

// Authenticate verifies a username/password pair against the store.
// Returns ErrUserNotFound when no record exists and ErrIncorrectPassword
// when the credential does not match.
func (s *UserService) Authenticate(ctx context.Context, username, password string) error {
	data, err := s.client.GetClient().HGetAll(ctx, userKey(username)).Result()
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if len(data) == 0 {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(data["password"]), []byte(password)); err != nil {
		return ErrIncorrectPassword
	}
	return nil
}

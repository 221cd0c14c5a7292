package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chat-gateway/internal/database"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionInvalid = errors.New("session is invalid")

// SessionService mints and validates ephemeral session tokens, stored as
// redis hashes under session:<token> with a fixed TTL. Tokens are never
// deleted explicitly; the store evicts them on expiry.
type SessionService struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewSessionService(client *database.RedisClient, ttl time.Duration) *SessionService {
	return &SessionService{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Mint creates a fresh opaque session token bound to username.
func (s *SessionService) Mint(ctx context.Context, username string) (string, error) {
	token := uuid.NewString()

	pipe := s.client.GetClient().Pipeline()
	pipe.HSet(ctx, sessionKey(token), "username", username)
	pipe.Expire(ctx, sessionKey(token), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	slog.Debug("Session minted", "username", username, "ttl", s.ttl)
	return token, nil
}

// Lookup resolves a session token to its username. An expired or unknown
// token yields ErrSessionInvalid.
func (s *SessionService) Lookup(ctx context.Context, token string) (string, error) {
	username, err := s.client.GetClient().HGet(ctx, sessionKey(token), "username").Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionInvalid
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	return username, nil
}

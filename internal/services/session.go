package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix is the Redis key prefix for sessions written by the auth service.
const SessionKeyPrefix = "session:"

// SessionValidator maps a bearer token to the owning user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (uuid.UUID, bool, error)
}

// RedisSessions reads "session:<token>" -> user id entries.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// ValidateSession checks if a session token is valid and returns the user ID.
// An unknown token is (uuid.Nil, false, nil).
func (s *RedisSessions) ValidateSession(ctx context.Context, token string) (uuid.UUID, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" || s.client == nil {
		return uuid.Nil, false, nil
	}

	userIDStr, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/config"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

const keyPrefix = "session:"

// RedisClient is the subset of *redis.Client the store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetXX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions as JSON documents that expire with the session.
type RedisStore struct {
	client RedisClient
	cb     *gobreaker.CircuitBreaker
}

var _ ports.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Sessions"),
	}
}

func (s *RedisStore) SaveSession(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	body, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, keyPrefix+session.ID, string(body), ttl).Err()
	})
	return err
}

// UpdateSession writes with SET XX KEEPTTL so a request still holding a
// logged-out session cannot bring it back.
func (s *RedisStore) UpdateSession(ctx context.Context, session *domain.Session) error {
	body, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = s.cb.Execute(func() (interface{}, error) {
		updated, err := s.client.SetXX(ctx, keyPrefix+session.ID, string(body), redis.KeepTTL).Result()
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, domain.ErrAccessDenied
		}
		return nil, nil
	})
	return err
}

func (s *RedisStore) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.cb.Execute(func() (interface{}, error) {
		val, err := s.client.Get(ctx, keyPrefix+id).Result()
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return val, err
	})
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw.(string)), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keyPrefix+id).Err()
	})
	return err
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"geo-upload/internal/config"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "upload_session:"

// SessionStore keeps upload sessions in redis, expiring them with key TTLs
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.SessionStore = (*SessionStore)(nil)

// NewClient creates a redis client from the session config
func NewClient(cfg config.SessionConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// NewSessionStore creates a SessionStore. A zero ttl keeps sessions forever.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.UploadSession, error) {
	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.UploadSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Save(ctx context.Context, token string, session domain.UploadSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+token, data, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

// PurgeExpired is a no-op, redis expires keys itself
func (s *SessionStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

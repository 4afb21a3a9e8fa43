package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

// RedisStore keeps the whole profile collection as one JSON document under a
// single key. SET replaces the value atomically, which satisfies the save
// atomicity requirement for the single-writer model.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a Redis-backed implementation.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]domain.UserProfile, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.UserProfile{}, nil
		}
		return nil, fmt.Errorf("load cache document: %w", err)
	}
	var profiles []domain.UserProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode cache document: %w", err)
	}
	return profiles, nil
}

func (s *RedisStore) Save(ctx context.Context, profiles []domain.UserProfile) error {
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("encode cache document: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save cache document: %w", err)
	}
	return nil
}

func (s *RedisStore) Upsert(ctx context.Context, profile domain.UserProfile) error {
	profiles, err := s.Load(ctx)
	if err != nil {
		return err
	}
	profiles, _ = upsertInto(profiles, profile)
	return s.Save(ctx, profiles)
}

func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	profiles, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Email == email {
			found := profiles[i]
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

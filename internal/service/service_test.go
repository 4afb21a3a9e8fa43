package service

import (
	"context"

	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/repository"
)

// memStore is an in-memory ProfileStore for service tests.
type memStore struct {
	profiles []domain.UserProfile
	saves    int
}

func newMemStore(profiles ...domain.UserProfile) *memStore {
	return &memStore{profiles: profiles}
}

func (m *memStore) Load(ctx context.Context) ([]domain.UserProfile, error) {
	return append([]domain.UserProfile{}, m.profiles...), nil
}

func (m *memStore) Save(ctx context.Context, profiles []domain.UserProfile) error {
	m.profiles = append([]domain.UserProfile{}, profiles...)
	m.saves++
	return nil
}

func (m *memStore) Upsert(ctx context.Context, profile domain.UserProfile) error {
	for i := range m.profiles {
		if m.profiles[i].Email == profile.Email {
			m.profiles[i] = profile
			return nil
		}
	}
	m.profiles = append(m.profiles, profile)
	return nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	for i := range m.profiles {
		if m.profiles[i].Email == email {
			found := m.profiles[i]
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) Ping(ctx context.Context) error {
	return nil
}

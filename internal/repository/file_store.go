package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

// FileStore persists the profile collection as a single JSON document on
// disk. Saves write a temp file in the same directory and rename it over the
// target so a concurrent Load never observes a partial document.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates the store and its parent directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) ([]domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() ([]domain.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.UserProfile{}, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	var profiles []domain.UserProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode cache file: %w", err)
	}
	return profiles, nil
}

func (s *FileStore) Save(ctx context.Context, profiles []domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(profiles)
}

func (s *FileStore) saveLocked(profiles []domain.UserProfile) error {
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".certCache-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Upsert(ctx context.Context, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles, err := s.loadLocked()
	if err != nil {
		return err
	}
	profiles, _ = upsertInto(profiles, profile)
	return s.saveLocked(profiles)
}

func (s *FileStore) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles, err := s.loadLocked()
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

// Ping verifies the cache directory is reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

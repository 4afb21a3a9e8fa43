package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

// ErrNotFound is returned by FindByEmail when no profile matches. Absence is
// a normal outcome; callers decide whether it is an error.
var ErrNotFound = errors.New("profile not found")

// ProfileStore is the persistence port for the cached profile collection.
//
// Load returns the full collection in stored order, empty when no prior
// state exists. Save persists the full collection and must appear atomic to
// subsequent Loads. Upsert replaces the profile with the same email in place
// or appends a new one at the end, preserving the order of other entries.
// FindByEmail is an exact, case-sensitive match returning ErrNotFound on
// absence.
type ProfileStore interface {
	Load(ctx context.Context) ([]domain.UserProfile, error)
	Save(ctx context.Context, profiles []domain.UserProfile) error
	Upsert(ctx context.Context, profile domain.UserProfile) error
	FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	Ping(ctx context.Context) error
}

// upsertInto applies the shared upsert ordering rule to a loaded collection
// and reports whether an existing entry was replaced.
func upsertInto(profiles []domain.UserProfile, profile domain.UserProfile) ([]domain.UserProfile, bool) {
	for i := range profiles {
		if profiles[i].Email == profile.Email {
			profiles[i] = profile
			return profiles, true
		}
	}
	return append(profiles, profile), false
}

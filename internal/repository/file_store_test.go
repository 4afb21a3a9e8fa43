package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "cache", "certCache.json"))
	require.NoError(t, err)
	return store
}

func profile(email, role string) domain.UserProfile {
	return domain.UserProfile{
		Email:          email,
		Role:           role,
		SearchString:   email,
		Certifications: []domain.CertificationRecord{},
	}
}

func TestFileStoreLoadWithoutPriorState(t *testing.T) {
	store := newTestFileStore(t)

	profiles, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	saved := []domain.UserProfile{
		{
			Email:        "a@x.com",
			Role:         "Admin",
			SearchString: "a",
			Certifications: []domain.CertificationRecord{{
				Provider: "Salesforce",
				Name:     "Administrator",
				EarnedAt: "2024-01-01",
				Status:   domain.CertificationStatusActive,
				Meta:     map[string]any{"Id": "abc"},
			}},
			LastUpdated: &now,
		},
		profile("b@x.com", "Analyst"),
	}

	require.NoError(t, store.Save(context.Background(), saved))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a@x.com", loaded[0].Email)
	assert.Equal(t, "Administrator", loaded[0].Certifications[0].Name)
	require.NotNil(t, loaded[0].LastUpdated)
	assert.True(t, loaded[0].LastUpdated.Equal(now))
	assert.Nil(t, loaded[1].LastUpdated)
}

func TestFileStoreUpsertReplacesInPlace(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, []domain.UserProfile{
		profile("a@x.com", "Admin"),
		profile("b@x.com", "Analyst"),
		profile("c@x.com", "Developer"),
	}))

	updated := profile("b@x.com", "Architect")
	require.NoError(t, store.Upsert(ctx, updated))

	profiles, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	// replaced entry keeps its slot; the others keep their order
	assert.Equal(t, "a@x.com", profiles[0].Email)
	assert.Equal(t, "b@x.com", profiles[1].Email)
	assert.Equal(t, "Architect", profiles[1].Role)
	assert.Equal(t, "c@x.com", profiles[2].Email)
}

func TestFileStoreUpsertAppendsNewEntry(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, profile("a@x.com", "Admin")))
	require.NoError(t, store.Upsert(ctx, profile("b@x.com", "Analyst")))

	profiles, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a@x.com", profiles[0].Email)
	assert.Equal(t, "b@x.com", profiles[1].Email)
}

func TestFileStoreFindByEmail(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, []domain.UserProfile{profile("a@x.com", "Admin")}))

	found, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Admin", found.Role)

	// exact match only
	_, err = store.FindByEmail(ctx, "A@X.COM")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "certCache.json"))
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), []domain.UserProfile{profile("a@x.com", "Admin")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "certCache.json", entries[0].Name())
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

func TestImportCSVMixedRows(t *testing.T) {
	store := newMemStore()
	svc := NewImportService(store, nil, zap.NewNop())

	content := "email,role,searchString\n" +
		"a@x.com,Admin,search1\n" +
		"bad-row\n" +
		"b@x.com,Analyst,search2\n"

	result, err := svc.ImportCSV(context.Background(), content)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Success)
	require.Len(t, result.Errors, 1)
	// row numbering is 1-based and includes the header line
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "Invalid row", result.Errors[0].Error)

	require.Len(t, store.profiles, 2)
	assert.Equal(t, "a@x.com", store.profiles[0].Email)
	assert.Equal(t, "Admin", store.profiles[0].Role)
	assert.Equal(t, "search1", store.profiles[0].SearchString)
	assert.Empty(t, store.profiles[0].Certifications)
	assert.Nil(t, store.profiles[0].LastUpdated)
	assert.Equal(t, "b@x.com", store.profiles[1].Email)
	assert.Equal(t, 1, store.saves)
}

func TestImportCSVTrimsFields(t *testing.T) {
	store := newMemStore()
	svc := NewImportService(store, nil, zap.NewNop())

	result, err := svc.ImportCSV(context.Background(), "email,role,searchString\n a@x.com , Admin , s1 \r\n")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, "a@x.com", store.profiles[0].Email)
	assert.Equal(t, "s1", store.profiles[0].SearchString)
}

func TestImportCSVRejectsBlankFields(t *testing.T) {
	store := newMemStore()
	svc := NewImportService(store, nil, zap.NewNop())

	result, err := svc.ImportCSV(context.Background(), "email,role,searchString\na@x.com,,search1\n")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Empty(t, store.profiles)
}

func TestImportCSVMergesExistingProfile(t *testing.T) {
	now := time.Now()
	store := newMemStore(
		domain.UserProfile{
			Email:          "a@x.com",
			Name:           "Ada",
			Role:           "Analyst",
			SearchString:   "old",
			Certifications: []domain.CertificationRecord{cert("Administrator")},
			LastUpdated:    &now,
		},
		domain.UserProfile{Email: "z@x.com", Role: "Admin", SearchString: "z"},
	)
	svc := NewImportService(store, nil, zap.NewNop())

	result, err := svc.ImportCSV(context.Background(), "email,role,searchString\na@x.com,Consultant,new\n")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	require.Len(t, store.profiles, 2)
	merged := store.profiles[0]
	assert.Equal(t, "a@x.com", merged.Email)
	assert.Equal(t, "Consultant", merged.Role)
	assert.Equal(t, "new", merged.SearchString)
	// row fields overwrite; fields the row does not carry are kept
	assert.Equal(t, "Ada", merged.Name)
	assert.Empty(t, merged.Certifications)
	assert.Nil(t, merged.LastUpdated)
	// order of untouched entries is preserved
	assert.Equal(t, "z@x.com", store.profiles[1].Email)
}

func TestImportCSVEmptyContent(t *testing.T) {
	store := newMemStore()
	svc := NewImportService(store, nil, zap.NewNop())

	result, err := svc.ImportCSV(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Empty(t, result.Errors)
}

package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementsForKnownRole(t *testing.T) {
	registry := NewRequirementRegistry(nil)

	required := registry.RequirementsFor("Admin")
	assert.Equal(t, []string{"Administrator", "Advanced Administrator"}, required)
}

func TestRequirementsForUnknownRoleIsEmpty(t *testing.T) {
	registry := NewRequirementRegistry(nil)

	assert.Empty(t, registry.RequirementsFor("UnknownRole"))
}

func TestAllRolesSorted(t *testing.T) {
	registry := NewRequirementRegistry(nil)

	assert.Equal(t, []string{"Admin", "Analyst", "Architect", "Consultant", "Developer"}, registry.AllRoles())
}

func TestRegistryCopiesInput(t *testing.T) {
	source := map[string][]string{"Ops": {"Cert A"}}
	registry := NewRequirementRegistry(source)

	source["Ops"][0] = "mutated"
	assert.Equal(t, []string{"Cert A"}, registry.RequirementsFor("Ops"))
}

func TestLoadRequirementRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	data, err := json.Marshal(map[string][]string{"Ops": {"Cert A", "Cert B"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	registry, err := LoadRequirementRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cert A", "Cert B"}, registry.RequirementsFor("Ops"))
	// file override replaces the defaults entirely
	assert.Empty(t, registry.RequirementsFor("Admin"))
}

func TestLoadRequirementRegistryBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := LoadRequirementRegistry(path)
	assert.Error(t, err)
}

func TestEarnedYearParsing(t *testing.T) {
	cases := []struct {
		earnedAt string
		year     int
		ok       bool
	}{
		{"2024-01-01", 2024, true},
		{"2023-12-31T10:00:00Z", 2023, true},
		{"", 0, false},
		{"not-a-date", 0, false},
	}

	for _, tc := range cases {
		year, ok := CertificationRecord{EarnedAt: tc.earnedAt}.EarnedYear()
		assert.Equal(t, tc.ok, ok, tc.earnedAt)
		assert.Equal(t, tc.year, year, tc.earnedAt)
	}
}

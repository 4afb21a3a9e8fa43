package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// RequirementRegistry maps a role name to its mandatory certification names.
// It is loaded once at process start and never mutated afterwards.
type RequirementRegistry struct {
	requirements map[string][]string
}

// defaultRequirements mirrors the role policy shipped with the service.
var defaultRequirements = map[string][]string{
	"Consultant": {"Sales Cloud Consultant", "Service Cloud Consultant", "Platform App Builder"},
	"Analyst":    {"Administrator", "Platform Developer I", "Data Cloud Consultant"},
	"Architect":  {"Application Architect", "System Architect", "Identity and Access Management Architect"},
	"Developer":  {"Platform Developer I", "Platform Developer II", "JavaScript Developer I"},
	"Admin":      {"Administrator", "Advanced Administrator"},
}

// NewRequirementRegistry builds a registry from the given role map. Nil means
// the built-in defaults. The input is copied so later mutation by the caller
// cannot leak into the registry.
func NewRequirementRegistry(requirements map[string][]string) *RequirementRegistry {
	if requirements == nil {
		requirements = defaultRequirements
	}
	copied := make(map[string][]string, len(requirements))
	for role, certs := range requirements {
		copied[role] = append([]string(nil), certs...)
	}
	return &RequirementRegistry{requirements: copied}
}

// LoadRequirementRegistry reads a role→certifications JSON map from path, or
// returns the default registry when path is empty.
func LoadRequirementRegistry(path string) (*RequirementRegistry, error) {
	if path == "" {
		return NewRequirementRegistry(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role requirements: %w", err)
	}
	var requirements map[string][]string
	if err := json.Unmarshal(data, &requirements); err != nil {
		return nil, fmt.Errorf("parse role requirements: %w", err)
	}
	return NewRequirementRegistry(requirements), nil
}

// RequirementsFor returns the mandatory certification names for a role. An
// unknown role yields an empty slice, not an error.
func (r *RequirementRegistry) RequirementsFor(role string) []string {
	return append([]string(nil), r.requirements[role]...)
}

// AllRoles returns the configured role names in alphabetical order.
func (r *RequirementRegistry) AllRoles() []string {
	roles := make([]string, 0, len(r.requirements))
	for role := range r.requirements {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Snapshot returns a copy of the full role→requirements map, for surfacing
// the registry over the API.
func (r *RequirementRegistry) Snapshot() map[string][]string {
	copied := make(map[string][]string, len(r.requirements))
	for role, certs := range r.requirements {
		copied[role] = append([]string(nil), certs...)
	}
	return copied
}

package domain

import "time"

// UserProfile is the cached certification profile for one employee. Email is
// the unique key within the cache; Role does not have to exist in the
// requirement registry. SearchString is the lookup key for the external
// credential source. Name is optional display data carried for reports.
type UserProfile struct {
	Email          string                `json:"email"`
	Name           string                `json:"name,omitempty"`
	Role           string                `json:"role"`
	SearchString   string                `json:"searchString"`
	Certifications []CertificationRecord `json:"certifications"`
	LastUpdated    *time.Time            `json:"lastUpdated"`
}

// CertificationNames returns the names of all held certifications in order,
// duplicates included.
func (p UserProfile) CertificationNames() []string {
	names := make([]string, 0, len(p.Certifications))
	for _, cert := range p.Certifications {
		names = append(names, cert.Name)
	}
	return names
}

// HasCertification reports whether the profile holds a certification with the
// given name.
func (p UserProfile) HasCertification(name string) bool {
	for _, cert := range p.Certifications {
		if cert.Name == name {
			return true
		}
	}
	return false
}

package domain

import "time"

// CertificationStatus enumerates lifecycle states for a certification record.
type CertificationStatus string

const (
	CertificationStatusActive  CertificationStatus = "active"
	CertificationStatusExpired CertificationStatus = "expired"
	CertificationStatusRevoked CertificationStatus = "revoked"
)

// CertificationRecord is a single certification held by a user. EarnedAt is
// kept as the raw date string delivered by the credential source ("" when
// unknown); it is parsed only at evaluation time.
type CertificationRecord struct {
	Provider  string              `json:"provider"`
	Name      string              `json:"name"`
	EarnedAt  string              `json:"earnedAt"`
	ExpiresAt *string             `json:"expiresAt"`
	Status    CertificationStatus `json:"status"`
	Meta      map[string]any      `json:"meta"`
}

// earnedAtLayouts are the accepted date encodings for EarnedAt.
var earnedAtLayouts = []string{"2006-01-02", time.RFC3339}

// EarnedYear parses EarnedAt and reports the calendar year. ok is false when
// the field is empty or not a recognized date.
func (c CertificationRecord) EarnedYear() (int, bool) {
	if c.EarnedAt == "" {
		return 0, false
	}
	for _, layout := range earnedAtLayouts {
		if t, err := time.Parse(layout, c.EarnedAt); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

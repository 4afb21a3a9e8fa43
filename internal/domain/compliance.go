package domain

// ComplianceRow is one evaluated report line for a user. CertStatus is keyed
// by certification name because the report's columns are derived from the
// whole dataset at evaluation time, not from a fixed schema. Rows are derived
// values and are never persisted.
type ComplianceRow struct {
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Role          string            `json:"role"`
	CertStatus    map[string]string `json:"certStatus"`
	PepCompliant  bool              `json:"pepCompliant"`
	CertsThisYear int               `json:"certsThisYear"`
}

// Cell values used in CertStatus. A held certification renders as CellYes or
// "Yes (<earnedAt>)" when dates are requested.
const (
	CellYes = "Yes"
	CellNo  = "No"
)

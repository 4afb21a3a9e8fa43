package dto

// ComplianceRowResponse is one report row on the wire. CertStatus carries
// the dynamically derived certification columns; PepCompliant renders the
// policy verdict as Yes/No the way the report displays it.
type ComplianceRowResponse struct {
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Role          string            `json:"role"`
	CertStatus    map[string]string `json:"certStatus"`
	PepCompliant  string            `json:"pepCompliant"`
	CertsThisYear int               `json:"certsThisYear"`
}

// ComplianceResponse wraps the evaluated report.
type ComplianceResponse struct {
	Columns []string                `json:"columns"`
	Rows    []ComplianceRowResponse `json:"rows"`
	Year    int                     `json:"year"`
	Role    string                  `json:"role,omitempty"`
}

package dto

// CertificationPayload mirrors a certification record on the wire.
type CertificationPayload struct {
	Provider  string         `json:"provider"`
	Name      string         `json:"name"`
	EarnedAt  string         `json:"earnedAt"`
	ExpiresAt *string        `json:"expiresAt"`
	Status    string         `json:"status"`
	Meta      map[string]any `json:"meta"`
}

// PutUserRequest payload for the validated profile write.
type PutUserRequest struct {
	Email          string                 `json:"email"`
	Name           string                 `json:"name"`
	Role           string                 `json:"role"`
	SearchString   string                 `json:"searchString"`
	Certifications []CertificationPayload `json:"certifications"`
}

// RefreshResponse reports a completed sync pass.
type RefreshResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

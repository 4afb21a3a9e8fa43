package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProfileUpdated  EventType = "profile_updated"
	EventSyncCompleted   EventType = "sync_completed"
	EventImportCompleted EventType = "import_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	Role               string `json:"role"`
	CertificationCount int    `json:"certification_count"`
}

// SyncCompletedPayload payload.
type SyncCompletedPayload struct {
	Processed     int `json:"processed"`
	FetchFailures int `json:"fetch_failures"`
}

// ImportCompletedPayload payload.
type ImportCompletedPayload struct {
	BatchID   string `json:"batch_id"`
	Processed int    `json:"processed"`
	Success   int    `json:"success"`
	Failed    int    `json:"failed"`
}

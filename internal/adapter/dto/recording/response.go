package recording

import "github.com/google/uuid"

// QuestionScheduledResponse acknowledges an accepted question request
type QuestionScheduledResponse struct {
	RecordingID uuid.UUID `json:"recording_id"`
	AttendeeID  uuid.UUID `json:"attendee_id"`
	Status      string    `json:"status"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status      string            `json:"status"`
	Environment string            `json:"environment"`
	Components  map[string]string `json:"components,omitempty"`
}

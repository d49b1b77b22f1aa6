package entities

import (
	"time"

	"github.com/google/uuid"
)

// Summary is one rolling summarization pass over the summarized chapters
type Summary struct {
	ID          uuid.UUID
	RecordingID uuid.UUID
	Text        string
	CreatedAt   time.Time
	Cost        Meter
}

// NewSummary creates an empty summary pass
func NewSummary(recordingID uuid.UUID) *Summary {
	return &Summary{
		ID:          uuid.New(),
		RecordingID: recordingID,
		CreatedAt:   time.Now(),
	}
}

// IsComplete reports whether the pass produced text
func (s *Summary) IsComplete() bool {
	return s.Text != ""
}

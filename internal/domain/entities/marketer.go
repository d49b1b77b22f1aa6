package entities

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPullQuoteCutoff is the minimum interest score kept as a pull quote
const DefaultPullQuoteCutoff = 50

// Marketer extracts pull quotes from sealed chapters
type Marketer struct {
	ID          uuid.UUID
	RecordingID uuid.UUID
	PullQuotes  []*PullQuote
	CreatedAt   time.Time
	Cost        Meter
}

// NewMarketer creates a marketer
func NewMarketer(recordingID uuid.UUID) *Marketer {
	return &Marketer{
		ID:          uuid.New(),
		RecordingID: recordingID,
		CreatedAt:   time.Now(),
	}
}

// PullQuote is a short, scored quote taken from a chapter
type PullQuote struct {
	ID         uuid.UUID
	MarketerID uuid.UUID
	ChapterID  uuid.UUID
	Text       string
	Score      int
	CreatedAt  time.Time
}

// NewPullQuote creates a pull quote
func NewPullQuote(marketerID, chapterID uuid.UUID, text string, score int) *PullQuote {
	return &PullQuote{
		ID:         uuid.New(),
		MarketerID: marketerID,
		ChapterID:  chapterID,
		Text:       text,
		Score:      score,
		CreatedAt:  time.Now(),
	}
}

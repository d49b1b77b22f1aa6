package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChapterState represents the lifecycle of a chapter
type ChapterState string

const (
	ChapterStateOpen   ChapterState = "open"
	ChapterStateSealed ChapterState = "sealed"
)

// Chapter is an ordered, fixed-capacity batch of chunks
type Chapter struct {
	ID           uuid.UUID
	RecordingID  uuid.UUID
	Number       int
	State        ChapterState
	ChunkIDs     []uuid.UUID
	Summary      *string
	SummarizedAt *time.Time
	CreatedAt    time.Time
	Cost         Meter
}

// NewChapter creates an open chapter with the given 1-based number
func NewChapter(recordingID uuid.UUID, number int) *Chapter {
	return &Chapter{
		ID:          uuid.New(),
		RecordingID: recordingID,
		Number:      number,
		State:       ChapterStateOpen,
		CreatedAt:   time.Now(),
	}
}

// IsSealed reports whether the chapter stopped accepting chunks
func (c *Chapter) IsSealed() bool {
	return c.State == ChapterStateSealed
}

// IsSummarized reports whether a summary was stored
func (c *Chapter) IsSummarized() bool {
	return c.Summary != nil && *c.Summary != ""
}

// SummaryText returns the summary or an empty string
func (c *Chapter) SummaryText() string {
	if c.Summary == nil {
		return ""
	}
	return *c.Summary
}

// Admit appends a chunk and seals the chapter once capacity is reached.
// It returns true only on the assignment that seals the chapter.
// Admitting into a sealed chapter is a programming error and panics.
func (c *Chapter) Admit(chunkID uuid.UUID, capacity int) bool {
	if c.IsSealed() {
		panic(&LogicError{Op: "chapter.admit", Detail: fmt.Sprintf("chapter %d is sealed", c.Number)})
	}
	c.ChunkIDs = append(c.ChunkIDs, chunkID)
	if len(c.ChunkIDs) >= capacity {
		c.State = ChapterStateSealed
		return true
	}
	return false
}

// MarkSummarized stores the chapter summary
func (c *Chapter) MarkSummarized(summary string) {
	now := time.Now()
	c.Summary = &summary
	c.SummarizedAt = &now
}

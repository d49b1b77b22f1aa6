package entities

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chunk is one recorded audio segment of a talk
type Chunk struct {
	ID               uuid.UUID
	RecordingID      uuid.UUID
	ChapterID        *uuid.UUID
	CreatedAt        time.Time
	Duration         time.Duration
	Audio            []byte
	AudioContentType string
	Transcript       *string
	TranscribedAt    *time.Time
	Cost             Meter
}

// NewChunk creates a new untranscribed chunk that owns its audio payload
func NewChunk(recordingID uuid.UUID, audio []byte, contentType string, duration time.Duration, createdAt time.Time) *Chunk {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &Chunk{
		ID:               uuid.New(),
		RecordingID:      recordingID,
		CreatedAt:        createdAt,
		Duration:         duration,
		Audio:            audio,
		AudioContentType: contentType,
	}
}

// IsTranscribed reports whether transcription succeeded
func (c *Chunk) IsTranscribed() bool {
	return c.Transcript != nil
}

// MarkTranscribed stores the transcript and releases the audio payload
func (c *Chunk) MarkTranscribed(text string) {
	now := time.Now()
	c.Transcript = &text
	c.TranscribedAt = &now
	c.Audio = nil
}

// TranscriptText returns the transcript or an empty string
func (c *Chunk) TranscriptText() string {
	if c.Transcript == nil {
		return ""
	}
	return *c.Transcript
}

// WordCount counts whitespace separated words of the transcript
func (c *Chunk) WordCount() int {
	return len(strings.Fields(c.TranscriptText()))
}

// DurationSeconds returns the chunk length in seconds
func (c *Chunk) DurationSeconds() float64 {
	return c.Duration.Seconds()
}

// WordsPerMinute returns nil when words or duration are unknown
func (c *Chunk) WordsPerMinute() *int {
	return wordsPerMinute(c.WordCount(), c.DurationSeconds())
}

func wordsPerMinute(words int, seconds float64) *int {
	if words == 0 || seconds <= 0 {
		return nil
	}
	wpm := int(math.Round(float64(words) / seconds * 60))
	return &wpm
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Illustrator turns one batch of transcribed chunks into illustrations
type Illustrator struct {
	ID            uuid.UUID
	RecordingID   uuid.UUID
	Style         string
	Transcript    string
	ChunkIDs      []uuid.UUID
	Illustrations []*Illustration
	CreatedAt     time.Time
	Cost          Meter
}

// NewIllustrator creates an illustrator for a batch
func NewIllustrator(recordingID uuid.UUID, style, transcript string, chunkIDs []uuid.UUID) *Illustrator {
	return &Illustrator{
		ID:          uuid.New(),
		RecordingID: recordingID,
		Style:       style,
		Transcript:  transcript,
		ChunkIDs:    chunkIDs,
		CreatedAt:   time.Now(),
	}
}

// Illustration is one generated image and the prompt that produced it
type Illustration struct {
	ID               uuid.UUID
	IllustratorID    uuid.UUID
	Name             string
	Prompt           string
	Reasoning        string
	Image            []byte
	ImageContentType string
	SourceURL        string
	MediaURL         string
	LightestRowPct   *float64
	PerceptualHash   string
	CreatedAt        time.Time
	Cost             Meter
}

// NewIllustration creates an illustration without an image
func NewIllustration(illustratorID uuid.UUID, name, prompt, reasoning string) *Illustration {
	return &Illustration{
		ID:            uuid.New(),
		IllustratorID: illustratorID,
		Name:          name,
		Prompt:        prompt,
		Reasoning:     reasoning,
		CreatedAt:     time.Now(),
	}
}

// HasImage reports whether image synthesis succeeded
func (i *Illustration) HasImage() bool {
	return len(i.Image) > 0 || i.SourceURL != ""
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTermScoreCutoff is the minimum newness, value and definability percentage
const DefaultTermScoreCutoff = 70

// VocabularyExtractor builds a deduplicated glossary for the audience
type VocabularyExtractor struct {
	ID          uuid.UUID
	RecordingID uuid.UUID
	Terms       []*Term
	CreatedAt   time.Time
	Cost        Meter
}

// NewVocabularyExtractor creates a vocabulary extractor
func NewVocabularyExtractor(recordingID uuid.UUID) *VocabularyExtractor {
	return &VocabularyExtractor{
		ID:          uuid.New(),
		RecordingID: recordingID,
		CreatedAt:   time.Now(),
	}
}

// TermTexts returns the canonical text of every known term in creation order
func (v *VocabularyExtractor) TermTexts() []string {
	texts := make([]string, len(v.Terms))
	for i, t := range v.Terms {
		texts[i] = t.Text
	}
	return texts
}

// Term is one glossary entry
type Term struct {
	ID                    uuid.UUID
	VocabularyExtractorID uuid.UUID
	ChunkID               uuid.UUID
	Text                  string
	Count                 int
	Definition            *string
	CreatedAt             time.Time
	Cost                  Meter
}

// NewTerm creates a term seen once
func NewTerm(extractorID, chunkID uuid.UUID, text string) *Term {
	return &Term{
		ID:                    uuid.New(),
		VocabularyExtractorID: extractorID,
		ChunkID:               chunkID,
		Text:                  text,
		Count:                 1,
		CreatedAt:             time.Now(),
	}
}

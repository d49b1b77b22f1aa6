package entities

import (
	"time"

	"github.com/google/uuid"
)

// SentimentEstimator scores the polarity and subjectivity of chapters
type SentimentEstimator struct {
	ID          uuid.UUID
	RecordingID uuid.UUID
	Estimates   []*SentimentEstimate
	CreatedAt   time.Time
	Cost        Meter
}

// NewSentimentEstimator creates a sentiment estimator
func NewSentimentEstimator(recordingID uuid.UUID) *SentimentEstimator {
	return &SentimentEstimator{
		ID:          uuid.New(),
		RecordingID: recordingID,
		CreatedAt:   time.Now(),
	}
}

// SentimentEstimate holds polarity in [-1,1] and subjectivity in [0,1]
type SentimentEstimate struct {
	ID                   uuid.UUID
	SentimentEstimatorID uuid.UUID
	ChapterID            uuid.UUID
	Polarity             float64
	Subjectivity         float64
	CreatedAt            time.Time
}

// NewSentimentEstimate creates an estimate for a chapter
func NewSentimentEstimate(estimatorID, chapterID uuid.UUID, polarity, subjectivity float64) *SentimentEstimate {
	return &SentimentEstimate{
		ID:                   uuid.New(),
		SentimentEstimatorID: estimatorID,
		ChapterID:            chapterID,
		Polarity:             polarity,
		Subjectivity:         subjectivity,
		CreatedAt:            time.Now(),
	}
}

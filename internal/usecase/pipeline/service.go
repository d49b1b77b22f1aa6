package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

// Service defines the interface for the talk pipeline use case
type Service interface {
	// CreateRecording starts a new in-memory recording session
	CreateRecording(ctx context.Context, input CreateRecordingInput) (*entities.RecordingSnapshot, error)

	// GetRecording returns a snapshot of the recording graph
	GetRecording(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingSnapshot, error)

	// GetCost returns the cost figures of a recording
	GetCost(ctx context.Context, recordingID uuid.UUID) (*CostReport, error)

	// AddChunk records an audio segment and schedules its transcription
	AddChunk(ctx context.Context, input AddChunkInput) (*entities.ChunkSnapshot, error)

	// AddAttendee registers a simulated attendee
	AddAttendee(ctx context.Context, input AddAttendeeInput) (*entities.AttendeeSnapshot, error)

	// AddMarketer registers a pull quote extractor
	AddMarketer(ctx context.Context, recordingID uuid.UUID) (*entities.MarketerSnapshot, error)

	// AddVocabularyExtractor registers a glossary builder
	AddVocabularyExtractor(ctx context.Context, recordingID uuid.UUID) (*entities.VocabularyExtractorSnap, error)

	// AddSentimentEstimator registers a per-chapter sentiment estimator
	AddSentimentEstimator(ctx context.Context, recordingID uuid.UUID) (*entities.SentimentEstimatorSnap, error)

	// AskQuestion schedules a question from an attendee about the latest summary
	AskQuestion(ctx context.Context, recordingID, attendeeID uuid.UUID) error

	// Shutdown cancels running tasks and waits for them to stop
	Shutdown(ctx context.Context) error
}

// CreateRecordingInput represents input for creating a recording.
// Zero batching values fall back to the pipeline defaults.
type CreateRecordingInput struct {
	Audience              string
	ChunksPerChapter      int
	ChunksPerIllustration int
	IllustrationStyle     string
}

// AddChunkInput represents one uploaded audio segment
type AddChunkInput struct {
	RecordingID uuid.UUID
	Audio       []byte
	ContentType string
	FileName    string
	Duration    time.Duration
	CreatedAt   time.Time
}

// AddAttendeeInput represents input for registering an attendee
type AddAttendeeInput struct {
	RecordingID uuid.UUID
	Name        string
	VoiceName   string
	Profile     string
}

// CostReport summarizes what a recording has cost so far
type CostReport struct {
	RecordingID     uuid.UUID `json:"recording_id"`
	TotalCost       float64   `json:"total_cost"`
	CostPerHour     *float64  `json:"cost_per_hour,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	WordCount       int       `json:"word_count"`
	WordsPerMinute  *int      `json:"words_per_minute,omitempty"`
}

// Ensure Orchestrator implements Service interface
var _ Service = (*Orchestrator)(nil)

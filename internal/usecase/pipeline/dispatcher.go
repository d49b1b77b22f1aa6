package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

// EventType names a graph mutation
type EventType string

const (
	EventRecordingCreated           EventType = "recording.created"
	EventChunkAdded                 EventType = "chunk.added"
	EventChunkTranscribed           EventType = "chunk.transcribed"
	EventChapterSealed              EventType = "chapter.sealed"
	EventChapterSummarized          EventType = "chapter.summarized"
	EventSummaryCreated             EventType = "summary.created"
	EventSummaryCompleted           EventType = "summary.completed"
	EventIllustratorCreated         EventType = "illustrator.created"
	EventIllustrationCreated        EventType = "illustration.created"
	EventIllustrationImaged         EventType = "illustration.imaged"
	EventIllustrationAnalyzed       EventType = "illustration.analyzed"
	EventMarketerCreated            EventType = "marketer.created"
	EventPullQuotesCreated          EventType = "pull_quotes.created"
	EventVocabularyExtractorCreated EventType = "vocabulary_extractor.created"
	EventTermsExtracted             EventType = "terms.extracted"
	EventTermDefined                EventType = "term.defined"
	EventSentimentEstimatorCreated  EventType = "sentiment_estimator.created"
	EventSentimentEstimated         EventType = "sentiment.estimated"
	EventAttendeeCreated            EventType = "attendee.created"
	EventQuestionCreated            EventType = "question.created"
	EventQuestionLabeled            EventType = "question.labeled"
	EventQuestionVoiced             EventType = "question.voiced"
	EventTaskFailed                 EventType = "task.failed"
)

// Event describes one mutation of a recording graph
type Event struct {
	Type        EventType                   `json:"type"`
	RecordingID uuid.UUID                   `json:"recording_id"`
	EntityID    uuid.UUID                   `json:"entity_id"`
	TaskKind    string                      `json:"task_kind,omitempty"`
	Error       string                      `json:"error,omitempty"`
	OccurredAt  time.Time                   `json:"occurred_at"`
	Snapshot    *entities.RecordingSnapshot `json:"snapshot,omitempty"`
}

// Observer receives every event after the mutation is committed.
// Notify is called synchronously outside the recording lock and must not block for long.
type Observer interface {
	Notify(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, event Event)

// Notify calls f
func (f ObserverFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}

type chunkTranscribedHandler interface {
	onChunkTranscribed(ctx context.Context, s *session, chunkID uuid.UUID)
}

type chapterSummarizedHandler interface {
	onChapterSummarized(ctx context.Context, s *session, chapterID uuid.UUID)
}

type summaryCompletedHandler interface {
	onSummaryCompleted(ctx context.Context, s *session, summaryID uuid.UUID)
}

// dispatcher fans completion events out to the consumers registered at construction.
// Each producer fires into a concrete handler list; there is no dispatch by name.
type dispatcher struct {
	chunkTranscribed  []chunkTranscribedHandler
	chapterSummarized []chapterSummarizedHandler
	summaryCompleted  []summaryCompletedHandler
	observers         []Observer
	logger            *zap.Logger
}

func (d *dispatcher) fireChunkTranscribed(ctx context.Context, s *session, chunkID uuid.UUID) {
	for _, h := range d.chunkTranscribed {
		h.onChunkTranscribed(ctx, s, chunkID)
	}
}

func (d *dispatcher) fireChapterSummarized(ctx context.Context, s *session, chapterID uuid.UUID) {
	for _, h := range d.chapterSummarized {
		h.onChapterSummarized(ctx, s, chapterID)
	}
}

func (d *dispatcher) fireSummaryCompleted(ctx context.Context, s *session, summaryID uuid.UUID) {
	for _, h := range d.summaryCompleted {
		h.onSummaryCompleted(ctx, s, summaryID)
	}
}

func (d *dispatcher) publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	d.logger.Debug("pipeline event",
		zap.String("type", string(event.Type)),
		zap.String("recording_id", event.RecordingID.String()),
		zap.String("entity_id", event.EntityID.String()),
	)
	for _, o := range d.observers {
		o.Notify(ctx, event)
	}
}

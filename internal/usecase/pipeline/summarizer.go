package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
)

// recordingSummarizer rolls every summarized chapter into a new Summary pass
type recordingSummarizer struct {
	o *Orchestrator
}

func (r *recordingSummarizer) onChapterSummarized(ctx context.Context, s *session, _ uuid.UUID) {
	summaryID, _ := r.o.mutate(ctx, s, EventSummaryCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		summary := entities.NewSummary(rec.ID)
		rec.Summaries = append(rec.Summaries, summary)
		return summary.ID, true
	})
	r.o.runner.submit(TaskSummarizeRecording, s.id(), func(ctx context.Context) error {
		return r.o.summarizeRecording(ctx, s, summaryID)
	})
}

// summarizeRecording writes the Smart Brevity summary of all chapter summaries.
// An empty pass stays in the graph and is never the latest summary.
func (o *Orchestrator) summarizeRecording(ctx context.Context, s *session, summaryID uuid.UUID) error {
	var (
		summary  *entities.Summary
		audience string
		chapters string
	)
	s.read(func(rec *entities.Recording) {
		summary = rec.Summary(summaryID)
		audience = rec.Audience
		chapters = rec.ChaptersSummary()
	})
	if summary == nil {
		return nil
	}

	out, err := gateway.Structured[summaryOutput](ctx, o.gateway, "summarize_recording", recordingSummaryMessages(audience, chapters), recordingSummaryFn, &summary.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "summarize_recording", err)
	}

	o.mutate(ctx, s, EventSummaryCompleted, func(rec *entities.Recording) (uuid.UUID, bool) {
		summary.Text = out.Summary
		return summary.ID, true
	})
	o.logger.Info("recording summary completed",
		zap.String("recording_id", s.id().String()),
		zap.String("summary_id", summaryID.String()),
	)
	o.dispatcher.fireSummaryCompleted(ctx, s, summaryID)
	return nil
}

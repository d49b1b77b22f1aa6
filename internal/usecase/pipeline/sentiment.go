package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
)

// sentimentFanout scores each summarized chapter with every estimator
type sentimentFanout struct {
	o *Orchestrator
}

func (f *sentimentFanout) onChapterSummarized(ctx context.Context, s *session, chapterID uuid.UUID) {
	var ids []uuid.UUID
	s.read(func(rec *entities.Recording) {
		for _, e := range rec.SentimentEstimators {
			ids = append(ids, e.ID)
		}
	})
	for _, id := range ids {
		estimatorID := id
		f.o.runner.submit(TaskEstimateSentiment, s.id(), func(ctx context.Context) error {
			return f.o.estimateSentiment(ctx, s, estimatorID, chapterID)
		})
	}
}

// estimateSentiment scores a chapter summary. Out-of-range values fail
// validation inside the gateway and consume an attempt.
func (o *Orchestrator) estimateSentiment(ctx context.Context, s *session, estimatorID, chapterID uuid.UUID) error {
	var (
		estimator *entities.SentimentEstimator
		audience  string
		summary   string
	)
	s.read(func(rec *entities.Recording) {
		estimator = rec.SentimentEstimator(estimatorID)
		if ch := rec.Chapter(chapterID); ch != nil {
			summary = ch.SummaryText()
		}
		audience = rec.Audience
	})
	if estimator == nil || summary == "" {
		return nil
	}

	out, err := gateway.Structured[sentimentOutput](ctx, o.gateway, "sentiment", sentimentMessages(audience, summary), sentimentFn, &estimator.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "sentiment", err)
	}

	o.mutate(ctx, s, EventSentimentEstimated, func(rec *entities.Recording) (uuid.UUID, bool) {
		estimate := entities.NewSentimentEstimate(estimator.ID, chapterID, out.Polarity, out.Subjectivity)
		estimator.Estimates = append(estimator.Estimates, estimate)
		return estimate.ID, true
	})
	return nil
}

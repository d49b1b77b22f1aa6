package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
)

// marketerFanout asks every marketer for pull quotes of a summarized chapter
type marketerFanout struct {
	o *Orchestrator
}

func (m *marketerFanout) onChapterSummarized(ctx context.Context, s *session, chapterID uuid.UUID) {
	var ids []uuid.UUID
	s.read(func(rec *entities.Recording) {
		for _, mk := range rec.Marketers {
			ids = append(ids, mk.ID)
		}
	})
	for _, id := range ids {
		marketerID := id
		m.o.runner.submit(TaskPullQuotes, s.id(), func(ctx context.Context) error {
			return m.o.createPullQuotes(ctx, s, marketerID, chapterID)
		})
	}
}

func (o *Orchestrator) createPullQuotes(ctx context.Context, s *session, marketerID, chapterID uuid.UUID) error {
	var (
		marketer   *entities.Marketer
		audience   string
		transcript string
	)
	s.read(func(rec *entities.Recording) {
		marketer = rec.Marketer(marketerID)
		if ch := rec.Chapter(chapterID); ch != nil {
			transcript = rec.ChapterTranscript(ch)
		}
		audience = rec.Audience
	})
	if marketer == nil {
		return nil
	}

	out, err := gateway.Structured[pullQuotesOutput](ctx, o.gateway, "pull_quotes", pullQuoteMessages(audience, transcript), pullQuotesFn, &marketer.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "pull_quotes", err)
	}

	kept := keepPullQuotes(out.Quotes, o.opts.PullQuoteCutoff)
	if len(kept) == 0 {
		return nil
	}
	o.mutate(ctx, s, EventPullQuotesCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		for _, q := range kept {
			marketer.PullQuotes = append(marketer.PullQuotes, entities.NewPullQuote(marketer.ID, chapterID, q.Text, q.Score))
		}
		return marketer.ID, true
	})
	return nil
}

// keepPullQuotes retains candidates scoring at or above cutoff
func keepPullQuotes(candidates []pullQuoteCandidate, cutoff int) []pullQuoteCandidate {
	var kept []pullQuoteCandidate
	for _, q := range candidates {
		if q.Score >= cutoff {
			kept = append(kept, q)
		}
	}
	return kept
}

package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
)

// chapterAggregator assigns transcribed chunks to the open chapter and
// schedules one summarization per sealed chapter.
type chapterAggregator struct {
	o *Orchestrator
}

func (a *chapterAggregator) onChunkTranscribed(ctx context.Context, s *session, chunkID uuid.UUID) {
	var sealed *entities.Chapter
	a.o.mutate(ctx, s, EventChapterSealed, func(rec *entities.Recording) (uuid.UUID, bool) {
		sealed = assignChapter(rec, chunkID)
		if sealed == nil {
			return uuid.Nil, false
		}
		return sealed.ID, true
	})
	if sealed == nil {
		return
	}

	a.o.logger.Info("chapter sealed",
		zap.String("recording_id", s.id().String()),
		zap.Int("chapter", sealed.Number),
	)
	chapterID := sealed.ID
	a.o.runner.submit(TaskSummarizeChapter, s.id(), func(ctx context.Context) error {
		return a.o.summarizeChapter(ctx, s, chapterID)
	})
}

// assignChapter places the chunk into the current open chapter, opening one
// when none exists. It returns the chapter only when this assignment sealed it.
// Chunks already assigned are ignored. Callers hold the recording lock.
func assignChapter(rec *entities.Recording, chunkID uuid.UUID) *entities.Chapter {
	chunk := rec.Chunk(chunkID)
	if chunk == nil || chunk.ChapterID != nil {
		return nil
	}
	ch := rec.CurrentChapter()
	if ch == nil {
		ch = rec.OpenChapter()
	}
	id := ch.ID
	chunk.ChapterID = &id
	if ch.Admit(chunk.ID, rec.ChunksPerChapter) {
		return ch
	}
	return nil
}

// summarizeChapter produces the bullet summary of a sealed chapter. A failed
// summary leaves the chapter sealed and is never retriggered.
func (o *Orchestrator) summarizeChapter(ctx context.Context, s *session, chapterID uuid.UUID) error {
	var (
		chapter    *entities.Chapter
		audience   string
		transcript string
	)
	s.read(func(rec *entities.Recording) {
		chapter = rec.Chapter(chapterID)
		if chapter != nil {
			audience = rec.Audience
			transcript = rec.ChapterTranscript(chapter)
		}
	})
	if chapter == nil {
		return nil
	}

	out, err := gateway.Structured[summaryOutput](ctx, o.gateway, "summarize_chapter", chapterSummaryMessages(audience, transcript), chapterSummaryFn, &chapter.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "summarize_chapter", err)
	}

	o.mutate(ctx, s, EventChapterSummarized, func(rec *entities.Recording) (uuid.UUID, bool) {
		chapter.MarkSummarized(out.Summary)
		return chapter.ID, true
	})
	o.dispatcher.fireChapterSummarized(ctx, s, chapterID)
	return nil
}

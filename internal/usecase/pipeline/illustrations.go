package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

// illustrationBatcher slices transcribed chunks into illustration batches
// behind the recording's illustration cursor.
type illustrationBatcher struct {
	o *Orchestrator
}

func (b *illustrationBatcher) onChunkTranscribed(ctx context.Context, s *session, _ uuid.UUID) {
	var illustrator *entities.Illustrator
	b.o.mutate(ctx, s, EventIllustratorCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		illustrator = nextIllustrationBatch(rec)
		if illustrator == nil {
			return uuid.Nil, false
		}
		return illustrator.ID, true
	})
	if illustrator == nil {
		return
	}

	b.o.logger.Info("illustration batch created",
		zap.String("recording_id", s.id().String()),
		zap.String("illustrator_id", illustrator.ID.String()),
		zap.Int("chunks", len(illustrator.ChunkIDs)),
	)
	illustratorID := illustrator.ID
	b.o.runner.submit(TaskIllustrate, s.id(), func(ctx context.Context) error {
		return b.o.illustrate(ctx, s, illustratorID)
	})
}

// nextIllustrationBatch evaluates the cursor arithmetic and, when a batch is
// due, creates its Illustrator and advances the cursor.
//
// The pending count is n - cursor + 1 and the cursor advances by B - 1, so
// consecutive batches share one chunk. A batch is only cut when B chunks are
// actually available from the cursor. A batch size of one still advances the
// cursor by one. Callers hold the recording lock.
func nextIllustrationBatch(rec *entities.Recording) *entities.Illustrator {
	size := rec.ChunksPerIllustration
	if size <= 0 {
		return nil
	}
	transcribed := rec.TranscribedChunks()
	n := len(transcribed)
	cursor := rec.LastChunkIllustrated

	pending := n - cursor + 1
	if pending < 0 {
		pending = 0
	}
	if pending < size || cursor+size > n {
		return nil
	}

	batch := transcribed[cursor : cursor+size]
	texts := make([]string, len(batch))
	ids := make([]uuid.UUID, len(batch))
	for i, c := range batch {
		texts[i] = c.TranscriptText()
		ids[i] = c.ID
	}

	illustrator := entities.NewIllustrator(rec.ID, rec.IllustrationStyle, strings.Join(texts, " "), ids)
	rec.Illustrators = append(rec.Illustrators, illustrator)
	advance := size - 1
	if advance < 1 {
		advance = 1
	}
	rec.LastChunkIllustrated = cursor + advance
	return illustrator
}

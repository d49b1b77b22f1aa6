package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

// AddChunk records an audio segment in creation order and schedules its transcription
func (o *Orchestrator) AddChunk(ctx context.Context, input AddChunkInput) (*entities.ChunkSnapshot, error) {
	if err := o.accepting(); err != nil {
		return nil, err
	}
	if len(input.Audio) == 0 {
		return nil, usecaseErrors.ErrEmptyAudio
	}
	s, err := o.session(input.RecordingID)
	if err != nil {
		return nil, err
	}

	var out *entities.ChunkSnapshot
	chunkID, _ := o.mutate(ctx, s, EventChunkAdded, func(rec *entities.Recording) (uuid.UUID, bool) {
		c := entities.NewChunk(rec.ID, input.Audio, input.ContentType, input.Duration, input.CreatedAt)
		rec.AddChunk(c)
		out = &entities.ChunkSnapshot{
			ID:              c.ID,
			DurationSeconds: c.DurationSeconds(),
			CreatedAt:       c.CreatedAt,
		}
		return c.ID, true
	})

	fileName := input.FileName
	o.runner.submit(TaskTranscribe, s.id(), func(ctx context.Context) error {
		return o.transcribe(ctx, s, chunkID, fileName)
	})
	return out, nil
}

// transcribe converts one chunk to text, using the previous chunk's transcript
// as a continuation hint. The hint is re-read on every attempt. Every failure
// kind is returned.
func (o *Orchestrator) transcribe(ctx context.Context, s *session, chunkID uuid.UUID, fileName string) error {
	var chunk *entities.Chunk
	s.read(func(rec *entities.Recording) {
		chunk = rec.Chunk(chunkID)
	})
	if chunk == nil {
		return fmt.Errorf("transcribe chunk %s: %w", chunkID, usecaseErrors.ErrChunkNotFound)
	}

	build := func() ai.TranscriptionRequest {
		var req ai.TranscriptionRequest
		s.read(func(rec *entities.Recording) {
			var previous string
			if prev := rec.PreviousChunk(chunkID); prev != nil {
				previous = prev.TranscriptText()
			}
			req = ai.TranscriptionRequest{
				Audio:    chunk.Audio,
				FileName: fileName,
				Model:    o.opts.TranscriptionModel,
				Prompt:   transcriptionPrompt(previous),
				Duration: chunk.Duration,
			}
		})
		return req
	}

	text, err := o.gateway.TranscribeFunc(ctx, "transcribe", build, &chunk.Cost)
	if err != nil {
		return fmt.Errorf("transcribe chunk %s: %w", chunkID, err)
	}

	o.mutate(ctx, s, EventChunkTranscribed, func(rec *entities.Recording) (uuid.UUID, bool) {
		chunk.MarkTranscribed(text)
		return chunk.ID, true
	})
	o.logger.Debug("chunk transcribed",
		zap.String("recording_id", s.id().String()),
		zap.String("chunk_id", chunkID.String()),
		zap.Int("chars", len(text)),
	)

	o.dispatcher.fireChunkTranscribed(ctx, s, chunkID)
	return nil
}

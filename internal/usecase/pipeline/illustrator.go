package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	"github.com/johnquangdev/talk-assistant/internal/usecase/imaging"
)

// illustrate runs prompt synthesis then image synthesis for one batch.
// A failed prompt leaves no Illustration; a failed image leaves one without a payload.
func (o *Orchestrator) illustrate(ctx context.Context, s *session, illustratorID uuid.UUID) error {
	var illustrator *entities.Illustrator
	s.read(func(rec *entities.Recording) {
		illustrator = rec.Illustrator(illustratorID)
	})
	if illustrator == nil {
		return nil
	}

	prompt, err := gateway.Structured[illustrationPromptOutput](ctx, o.gateway, "illustration_prompt",
		illustrationMessages(illustrator.Style, illustrator.Transcript), illustrationFn, &illustrator.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "illustration_prompt", err)
	}

	var illustration *entities.Illustration
	o.mutate(ctx, s, EventIllustrationCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		illustration = entities.NewIllustration(illustrator.ID, prompt.Name, prompt.Prompt, prompt.Reasoning)
		illustrator.Illustrations = append(illustrator.Illustrations, illustration)
		return illustration.ID, true
	})

	image, err := o.gateway.Image(ctx, "illustration_image", prompt.Prompt, &illustration.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "illustration_image", err)
	}

	mediaURL := o.store(ctx, fmt.Sprintf("recordings/%s/illustrations/%s.%s", s.id(), illustration.ID, extensionFor(image.ContentType)), image.Data, image.ContentType)

	o.mutate(ctx, s, EventIllustrationImaged, func(rec *entities.Recording) (uuid.UUID, bool) {
		illustration.Image = image.Data
		illustration.ImageContentType = image.ContentType
		illustration.SourceURL = image.URL
		illustration.MediaURL = mediaURL
		return illustration.ID, true
	})

	illustrationID := illustration.ID
	o.runner.submit(TaskAnalyzeIllustrated, s.id(), func(ctx context.Context) error {
		o.analyzeIllustration(ctx, s, illustrationID)
		return nil
	})
	return nil
}

// analyzeIllustration derives layout metadata. Failures are logged and ignored.
func (o *Orchestrator) analyzeIllustration(ctx context.Context, s *session, illustrationID uuid.UUID) {
	var data []byte
	s.read(func(rec *entities.Recording) {
		if img := rec.Illustration(illustrationID); img != nil {
			data = img.Image
		}
	})

	analysis, err := imaging.Analyze(data)
	if err != nil {
		o.logger.Warn("illustration analysis skipped",
			zap.String("recording_id", s.id().String()),
			zap.String("illustration_id", illustrationID.String()),
			zap.Error(err),
		)
		return
	}

	o.mutate(ctx, s, EventIllustrationAnalyzed, func(rec *entities.Recording) (uuid.UUID, bool) {
		img := rec.Illustration(illustrationID)
		if img == nil {
			return uuid.Nil, false
		}
		pct := analysis.LightestRowPct
		img.LightestRowPct = &pct
		img.PerceptualHash = analysis.PerceptualHash
		return img.ID, true
	})
}

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

// attendeeFanout makes every attendee ask about each completed summary
type attendeeFanout struct {
	o *Orchestrator
}

func (f *attendeeFanout) onSummaryCompleted(ctx context.Context, s *session, summaryID uuid.UUID) {
	var ids []uuid.UUID
	s.read(func(rec *entities.Recording) {
		for _, a := range rec.Attendees {
			ids = append(ids, a.ID)
		}
	})
	for _, id := range ids {
		attendeeID := id
		f.o.runner.submit(TaskAskQuestion, s.id(), func(ctx context.Context) error {
			return f.o.askQuestion(ctx, s, attendeeID, summaryID)
		})
	}
}

// AskQuestion schedules a question from an attendee about the latest summary
func (o *Orchestrator) AskQuestion(ctx context.Context, recordingID, attendeeID uuid.UUID) error {
	if err := o.accepting(); err != nil {
		return err
	}
	s, err := o.session(recordingID)
	if err != nil {
		return err
	}

	var (
		found     bool
		summaryID uuid.UUID
	)
	s.read(func(rec *entities.Recording) {
		found = rec.Attendee(attendeeID) != nil
		if latest := rec.LatestSummary(); latest != nil {
			summaryID = latest.ID
		}
	})
	if !found {
		return usecaseErrors.ErrAttendeeNotFound
	}
	if summaryID == uuid.Nil {
		return usecaseErrors.ErrNoSummary
	}

	o.runner.submit(TaskAskQuestion, recordingID, func(ctx context.Context) error {
		return o.askQuestion(ctx, s, attendeeID, summaryID)
	})
	return nil
}

// askQuestion generates the question text, then its label, then its audio.
// The question is kept when labeling or speech fail.
func (o *Orchestrator) askQuestion(ctx context.Context, s *session, attendeeID, summaryID uuid.UUID) error {
	var (
		attendee *entities.Attendee
		messages []ai.Message
	)
	s.read(func(rec *entities.Recording) {
		attendee = rec.Attendee(attendeeID)
		summary := rec.Summary(summaryID)
		if attendee == nil || summary == nil {
			return
		}
		messages = questionMessages(attendee.Name, rec.Audience, attendee.Profile, attendee.PreviousQuestions(), summary.Text)
	})
	if messages == nil {
		return nil
	}

	text, err := o.gateway.Text(ctx, "attendee_question", messages, &attendee.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "attendee_question", err)
	}
	text = strings.TrimSpace(text)

	var question *entities.AttendeeQuestion
	o.mutate(ctx, s, EventQuestionCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		question = entities.NewAttendeeQuestion(attendee.ID, summaryID, text)
		attendee.Questions = append(attendee.Questions, question)
		return question.ID, true
	})

	var failed error
	label, err := gateway.Structured[questionLabelOutput](ctx, o.gateway, "question_label", questionLabelMessages(text), questionLabelFn, &attendee.Cost)
	if err != nil {
		failed = o.dropOutputFailure(ctx, "question_label", err)
	} else {
		o.mutate(ctx, s, EventQuestionLabeled, func(rec *entities.Recording) (uuid.UUID, bool) {
			question.Name = label.Name
			return question.ID, true
		})
	}

	speech, err := o.gateway.Speech(ctx, "question_speech", ai.SpeechRequest{
		Text:          text,
		VoiceName:     attendee.VoiceName,
		LanguageCode:  o.opts.LanguageCode,
		AudioEncoding: o.opts.AudioEncoding,
		Pitch:         o.opts.Pitch,
		SpeakingRate:  o.opts.SpeakingRate,
	}, &attendee.Cost)
	if err != nil {
		if err := o.dropOutputFailure(ctx, "question_speech", err); err != nil {
			return err
		}
		return failed
	}

	audioURL := o.store(ctx, fmt.Sprintf("recordings/%s/questions/%s.%s", s.id(), question.ID, extensionFor(speech.ContentType)), speech.Audio, speech.ContentType)
	o.mutate(ctx, s, EventQuestionVoiced, func(rec *entities.Recording) (uuid.UUID, bool) {
		question.Audio = speech.Audio
		question.AudioContentType = speech.ContentType
		question.AudioURL = audioURL
		return question.ID, true
	})
	o.logger.Info("attendee asked a question",
		zap.String("recording_id", s.id().String()),
		zap.String("attendee_id", attendeeID.String()),
		zap.String("question_id", question.ID.String()),
	)
	return failed
}

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/dedup"
	usecaseErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	"github.com/johnquangdev/talk-assistant/pkg/config"
	"github.com/johnquangdev/talk-assistant/pkg/jobcontext"
)

// MediaStore persists generated media and returns a URL clients can fetch
type MediaStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Options tunes batching, filtering and task execution
type Options struct {
	ChunksPerChapter      int
	ChunksPerIllustration int
	IllustrationStyle     string
	PoolSize              int
	TaskTimeout           time.Duration
	PullQuoteCutoff       int
	TermScoreCutoff       int
	TermMatchThreshold    float64
	AutoAskQuestions      bool
	TranscriptionModel    string
	LanguageCode          string
	AudioEncoding         string
	SpeakingRate          float64
	Pitch                 float64
}

// DefaultOptions returns the stock pipeline settings
func DefaultOptions() Options {
	return Options{
		ChunksPerChapter:      entities.DefaultChunksPerChapter,
		ChunksPerIllustration: entities.DefaultChunksPerIllustration,
		IllustrationStyle:     entities.DefaultIllustrationStyle,
		PoolSize:              DefaultPoolSize,
		PullQuoteCutoff:       entities.DefaultPullQuoteCutoff,
		TermScoreCutoff:       entities.DefaultTermScoreCutoff,
		TermMatchThreshold:    dedup.DefaultThreshold,
		LanguageCode:          "en-US",
		AudioEncoding:         "MP3",
		SpeakingRate:          1.2,
	}
}

// OptionsFromConfig maps configuration onto pipeline options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ChunksPerChapter:      cfg.Pipeline.ChunksPerChapter,
		ChunksPerIllustration: cfg.Pipeline.ChunksPerIllustration,
		IllustrationStyle:     cfg.Pipeline.IllustrationStyle,
		PoolSize:              cfg.Pipeline.PoolSize,
		TaskTimeout:           cfg.Pipeline.TaskTimeout,
		PullQuoteCutoff:       cfg.Pipeline.PullQuoteCutoff,
		TermScoreCutoff:       cfg.Pipeline.TermScoreCutoff,
		TermMatchThreshold:    cfg.Pipeline.TermMatchThreshold,
		AutoAskQuestions:      cfg.Pipeline.AutoAskQuestions,
		TranscriptionModel:    cfg.OpenAI.TranscriptionModel,
		LanguageCode:          cfg.Speech.LanguageCode,
		AudioEncoding:         cfg.Speech.AudioEncoding,
		SpeakingRate:          cfg.Speech.SpeakingRate,
		Pitch:                 cfg.Speech.Pitch,
	}
}

// Dependencies groups the collaborators of the orchestrator
type Dependencies struct {
	Gateway   *gateway.Gateway
	Media     MediaStore
	Observers []Observer
	Logger    *zap.Logger
}

// Orchestrator drives the incremental derivation of artifacts for every
// live recording it holds in memory.
type Orchestrator struct {
	gateway    *gateway.Gateway
	media      MediaStore
	opts       Options
	runner     *runner
	dispatcher *dispatcher
	logger     *zap.Logger
	closed     atomic.Bool

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewOrchestrator wires the pipeline components and their trigger lists
func NewOrchestrator(deps Dependencies, opts Options) (*Orchestrator, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("pipeline: gateway is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		gateway:  deps.Gateway,
		media:    deps.Media,
		opts:     opts,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}

	r, err := newRunner(opts.PoolSize, opts.TaskTimeout, logger, o.taskFailed)
	if err != nil {
		return nil, err
	}
	o.runner = r

	chapters := &chapterAggregator{o: o}
	summarizer := &recordingSummarizer{o: o}
	marketers := &marketerFanout{o: o}
	sentiments := &sentimentFanout{o: o}

	o.dispatcher = &dispatcher{
		chunkTranscribed: []chunkTranscribedHandler{
			&vocabularyFanout{o: o},
			&illustrationBatcher{o: o},
			chapters,
		},
		chapterSummarized: []chapterSummarizedHandler{summarizer, marketers, sentiments},
		observers:         deps.Observers,
		logger:            logger,
	}
	if opts.AutoAskQuestions {
		o.dispatcher.summaryCompleted = append(o.dispatcher.summaryCompleted, &attendeeFanout{o: o})
	}
	return o, nil
}

// Wait blocks until all scheduled tasks, and the tasks they trigger, have finished
func (o *Orchestrator) Wait() {
	o.runner.wait()
}

// Shutdown rejects new work, cancels running tasks and waits for them up to ctx
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	if !o.closed.CompareAndSwap(false, true) {
		return nil
	}
	return o.runner.close(ctx)
}

func (o *Orchestrator) accepting() error {
	if o.closed.Load() {
		return usecaseErrors.ErrPipelineClosed
	}
	return nil
}

func (o *Orchestrator) session(recordingID uuid.UUID) (*session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.sessions[recordingID]
	if !ok {
		return nil, usecaseErrors.ErrRecordingNotFound
	}
	return s, nil
}

// taskFailed publishes surfaced task errors so subscribers see failed derivations
func (o *Orchestrator) taskFailed(ctx context.Context, kind string, recordingID uuid.UUID, err error) {
	o.dispatcher.publish(ctx, Event{
		Type:        EventTaskFailed,
		RecordingID: recordingID,
		TaskKind:    kind,
		Error:       err.Error(),
	})
}

// dropOutputFailure swallows parse and validation failures of enrichers.
// Those calls end without a record; transport failures are returned.
func (o *Orchestrator) dropOutputFailure(ctx context.Context, op string, err error) error {
	if gateway.IsOutputFailure(err) {
		o.logger.Debug("discarding unusable model output",
			zap.String("op", op),
			zap.String("recording_id", recordingIDFrom(ctx)),
			zap.Error(err),
		)
		return nil
	}
	return err
}

// CreateRecording starts a new in-memory recording session
func (o *Orchestrator) CreateRecording(ctx context.Context, input CreateRecordingInput) (*entities.RecordingSnapshot, error) {
	if err := o.accepting(); err != nil {
		return nil, err
	}
	if input.ChunksPerChapter < 0 || input.ChunksPerIllustration < 0 {
		return nil, usecaseErrors.ErrInvalidBatchSize
	}
	cpc := input.ChunksPerChapter
	if cpc == 0 {
		cpc = o.opts.ChunksPerChapter
	}
	cpi := input.ChunksPerIllustration
	if cpi == 0 {
		cpi = o.opts.ChunksPerIllustration
	}
	style := strings.TrimSpace(input.IllustrationStyle)
	if style == "" {
		style = o.opts.IllustrationStyle
	}

	rec := entities.NewRecording(input.Audience, cpc, cpi, style)
	s := newSession(rec)
	o.mutate(ctx, s, EventRecordingCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		return rec.ID, true
	})

	o.mu.Lock()
	o.sessions[rec.ID] = s
	o.mu.Unlock()

	o.logger.Info("recording created",
		zap.String("recording_id", rec.ID.String()),
		zap.Int("chunks_per_chapter", rec.ChunksPerChapter),
		zap.Int("chunks_per_illustration", rec.ChunksPerIllustration),
	)

	return s.snapshot(), nil
}

// GetRecording returns a snapshot of the recording graph
func (o *Orchestrator) GetRecording(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingSnapshot, error) {
	s, err := o.session(recordingID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// GetCost returns the cost figures of a recording
func (o *Orchestrator) GetCost(ctx context.Context, recordingID uuid.UUID) (*CostReport, error) {
	s, err := o.session(recordingID)
	if err != nil {
		return nil, err
	}
	var report *CostReport
	s.read(func(rec *entities.Recording) {
		report = &CostReport{
			RecordingID:     rec.ID,
			TotalCost:       rec.TotalCost(),
			CostPerHour:     rec.CostPerHour(),
			DurationSeconds: rec.DurationSeconds(),
			WordCount:       rec.WordCount(),
			WordsPerMinute:  rec.WordsPerMinute(),
		}
	})
	return report, nil
}

// AddAttendee registers a simulated attendee
func (o *Orchestrator) AddAttendee(ctx context.Context, input AddAttendeeInput) (*entities.AttendeeSnapshot, error) {
	s, err := o.session(input.RecordingID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: attendee name is required", usecaseErrors.ErrInvalidInput)
	}
	var out *entities.AttendeeSnapshot
	o.mutate(ctx, s, EventAttendeeCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		a := entities.NewAttendee(rec.ID, input.Name, input.VoiceName, input.Profile)
		rec.Attendees = append(rec.Attendees, a)
		out = &entities.AttendeeSnapshot{ID: a.ID, Name: a.Name, VoiceName: a.VoiceName, Profile: a.Profile}
		return a.ID, true
	})
	return out, nil
}

// AddMarketer registers a pull quote extractor
func (o *Orchestrator) AddMarketer(ctx context.Context, recordingID uuid.UUID) (*entities.MarketerSnapshot, error) {
	s, err := o.session(recordingID)
	if err != nil {
		return nil, err
	}
	var out *entities.MarketerSnapshot
	o.mutate(ctx, s, EventMarketerCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		m := entities.NewMarketer(rec.ID)
		rec.Marketers = append(rec.Marketers, m)
		out = &entities.MarketerSnapshot{ID: m.ID}
		return m.ID, true
	})
	return out, nil
}

// AddVocabularyExtractor registers a glossary builder
func (o *Orchestrator) AddVocabularyExtractor(ctx context.Context, recordingID uuid.UUID) (*entities.VocabularyExtractorSnap, error) {
	s, err := o.session(recordingID)
	if err != nil {
		return nil, err
	}
	var out *entities.VocabularyExtractorSnap
	o.mutate(ctx, s, EventVocabularyExtractorCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		v := entities.NewVocabularyExtractor(rec.ID)
		rec.VocabularyExtractors = append(rec.VocabularyExtractors, v)
		out = &entities.VocabularyExtractorSnap{ID: v.ID}
		return v.ID, true
	})
	return out, nil
}

// AddSentimentEstimator registers a per-chapter sentiment estimator
func (o *Orchestrator) AddSentimentEstimator(ctx context.Context, recordingID uuid.UUID) (*entities.SentimentEstimatorSnap, error) {
	s, err := o.session(recordingID)
	if err != nil {
		return nil, err
	}
	var out *entities.SentimentEstimatorSnap
	o.mutate(ctx, s, EventSentimentEstimatorCreated, func(rec *entities.Recording) (uuid.UUID, bool) {
		e := entities.NewSentimentEstimator(rec.ID)
		rec.SentimentEstimators = append(rec.SentimentEstimators, e)
		out = &entities.SentimentEstimatorSnap{ID: e.ID}
		return e.ID, true
	})
	return out, nil
}

func recordingIDFrom(ctx context.Context) string {
	id, _ := jobcontext.GetRecordingID(ctx)
	return id.String()
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/pkg/jobcontext"
)

// DefaultPoolSize bounds concurrently running tasks
const DefaultPoolSize = 64

// Task kinds
const (
	TaskTranscribe         = "transcribe"
	TaskSummarizeChapter   = "summarize_chapter"
	TaskSummarizeRecording = "summarize_recording"
	TaskIllustrate         = "illustrate"
	TaskAnalyzeIllustrated = "analyze_illustration"
	TaskExtractTerms       = "extract_terms"
	TaskDefineTerm         = "define_term"
	TaskPullQuotes         = "pull_quotes"
	TaskEstimateSentiment  = "estimate_sentiment"
	TaskAskQuestion        = "ask_question"
)

type failureFunc func(ctx context.Context, kind string, recordingID uuid.UUID, err error)

// runner executes one task per trigger on a bounded pool. Submissions never
// block the caller: when the pool is saturated the task runs on its own goroutine.
type runner struct {
	pool      *ants.Pool
	base      context.Context
	cancel    context.CancelFunc
	timeout   time.Duration
	wg        sync.WaitGroup
	onFailure failureFunc
	logger    *zap.Logger
}

func newRunner(size int, timeout time.Duration, logger *zap.Logger, onFailure failureFunc) (*runner, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("panic in worker pool", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	base, cancel := context.WithCancel(context.Background())
	return &runner{
		pool:      pool,
		base:      base,
		cancel:    cancel,
		timeout:   timeout,
		onFailure: onFailure,
		logger:    logger,
	}, nil
}

// submit schedules fn as an independent task. The task context is detached
// from the caller and carries task metadata and the task timeout.
func (r *runner) submit(kind string, recordingID uuid.UUID, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	task := func() {
		defer r.wg.Done()
		ctx, cancel := jobcontext.TaskBegin(r.base, uuid.New(), kind, recordingID, r.timeout)
		defer cancel()

		err := jobcontext.Run(ctx, fn)
		if err == nil {
			r.logger.Debug("task completed", jobcontext.Fields(ctx)...)
			return
		}
		r.logger.Error("task failed", append(jobcontext.Fields(ctx), zap.Error(err))...)
		if r.onFailure != nil {
			r.onFailure(ctx, kind, recordingID, err)
		}
	}

	if err := r.pool.Submit(task); err != nil {
		if !errors.Is(err, ants.ErrPoolOverload) {
			r.logger.Warn("worker pool rejected task", zap.String("task_kind", kind), zap.Error(err))
		}
		go task()
	}
}

// wait blocks until every submitted task, including tasks submitted by
// running tasks, has finished.
func (r *runner) wait() {
	r.wg.Wait()
}

// close cancels running tasks and waits for them up to ctx
func (r *runner) close(ctx context.Context) error {
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	defer r.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

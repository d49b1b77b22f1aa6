package archive

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/domain/repositories"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
)

// DefaultFlushInterval is how often pending snapshots are written
const DefaultFlushInterval = 2 * time.Second

type pendingSnapshot struct {
	snap  *entities.RecordingSnapshot
	event pipeline.EventType
}

// Persister archives recording snapshots and task failures.
// Notify only buffers; only the highest snapshot version per recording is
// written on each flush, and older versions arriving later are ignored.
type Persister struct {
	repo     repositories.ArchiveRepository
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	pending  map[uuid.UUID]pendingSnapshot
	versions map[uuid.UUID]uint64
	failures []*entities.TaskFailure

	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewPersister creates a persister. Call Start to begin periodic flushing.
func NewPersister(repo repositories.ArchiveRepository, interval time.Duration, logger *zap.Logger) *Persister {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		repo:     repo,
		interval: interval,
		logger:   logger,
		pending:  make(map[uuid.UUID]pendingSnapshot),
		versions: make(map[uuid.UUID]uint64),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

var _ pipeline.Observer = (*Persister)(nil)

// Notify buffers the event
func (p *Persister) Notify(_ context.Context, event pipeline.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Type == pipeline.EventTaskFailed {
		occurred := event.OccurredAt
		if occurred.IsZero() {
			occurred = time.Now()
		}
		p.failures = append(p.failures, &entities.TaskFailure{
			ID:          uuid.New(),
			RecordingID: event.RecordingID,
			TaskKind:    event.TaskKind,
			Error:       event.Error,
			OccurredAt:  occurred.UTC(),
		})
	}
	if event.Snapshot != nil {
		if seen, ok := p.versions[event.RecordingID]; ok && event.Snapshot.Version < seen {
			return
		}
		p.versions[event.RecordingID] = event.Snapshot.Version
		p.pending[event.RecordingID] = pendingSnapshot{snap: event.Snapshot, event: event.Type}
	}
}

// Start flushes on every interval until Stop is called
func (p *Persister) Start() {
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), p.interval)
				p.Flush(ctx)
				cancel()
			}
		}
	}()
}

// Stop ends periodic flushing and writes whatever is still buffered
func (p *Persister) Stop(ctx context.Context) {
	p.once.Do(func() {
		close(p.stop)
		select {
		case <-p.stopped:
		case <-ctx.Done():
		}
	})
	p.Flush(ctx)
}

// Flush writes buffered snapshots and failures. Rows that fail to write are
// logged and dropped; the next snapshot of the recording replaces them.
func (p *Persister) Flush(ctx context.Context) {
	p.mu.Lock()
	pending := p.pending
	failures := p.failures
	p.pending = make(map[uuid.UUID]pendingSnapshot)
	p.failures = nil
	p.mu.Unlock()

	for id, item := range pending {
		payload, err := json.Marshal(item.snap)
		if err != nil {
			p.logger.Error("failed to encode snapshot", zap.String("recording_id", id.String()), zap.Error(err))
			continue
		}
		archive := entities.NewRecordingArchive(item.snap, payload, string(item.event))
		if err := p.repo.UpsertArchive(ctx, archive); err != nil {
			p.logger.Error("failed to archive recording", zap.String("recording_id", id.String()), zap.Error(err))
		}
	}

	for _, f := range failures {
		if err := p.repo.SaveTaskFailure(ctx, f); err != nil {
			p.logger.Error("failed to save task failure",
				zap.String("recording_id", f.RecordingID.String()),
				zap.String("task_kind", f.TaskKind),
				zap.Error(err),
			)
		}
	}

	if len(pending) > 0 || len(failures) > 0 {
		p.logger.Debug("archive flushed", zap.Int("recordings", len(pending)), zap.Int("failures", len(failures)))
	}
}

package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
	"github.com/johnquangdev/talk-assistant/pkg/config"
)

// ErrNotFound is returned by Load when no checkpoint exists for a recording
var ErrNotFound = errors.New("checkpoint not found")

// Store keeps the latest snapshot of each recording
type Store interface {
	Save(ctx context.Context, snap *entities.RecordingSnapshot) error
	Load(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingSnapshot, error)
	Close() error
}

// New opens the backend selected in cfg. It returns nil for backend "none".
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Checkpoint.Backend {
	case "none", "":
		return nil, nil
	case "memory":
		return NewMemoryStore(cfg.Checkpoint.TTL), nil
	case "redis":
		return NewRedisStore(ctx, cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Checkpoint.TTL)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Checkpoint.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Checkpoint.Backend)
	}
}

func encode(snap *entities.RecordingSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*entities.RecordingSnapshot, error) {
	var snap entities.RecordingSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Observer writes the snapshot carried by each pipeline event to a Store
type Observer struct {
	store   Store
	timeout time.Duration
	logger  *zap.Logger
}

// NewObserver creates an observer. Writes are bounded by timeout.
func NewObserver(store Store, timeout time.Duration, logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Observer{store: store, timeout: timeout, logger: logger}
}

var _ pipeline.Observer = (*Observer)(nil)

// Notify saves the event snapshot. Failures are logged and never reach the pipeline.
func (o *Observer) Notify(ctx context.Context, event pipeline.Event) {
	if event.Snapshot == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	if err := o.store.Save(ctx, event.Snapshot); err != nil {
		o.logger.Warn("failed to checkpoint recording",
			zap.String("recording_id", event.RecordingID.String()),
			zap.String("event", string(event.Type)),
			zap.Error(err),
		)
	}
}

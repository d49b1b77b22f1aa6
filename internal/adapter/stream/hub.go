package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
)

// DefaultBuffer is the number of events queued per subscriber before drops
const DefaultBuffer = 64

// Hub fans pipeline events out to websocket subscribers of a recording.
// Slow subscribers lose events instead of slowing the pipeline down.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	buffer int
	logger *zap.Logger
}

type subscriber struct {
	events  chan pipeline.Event
	dropped atomic.Int64
}

// NewHub creates an empty hub
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

var _ pipeline.Observer = (*Hub)(nil)

// Notify queues the event for every subscriber of its recording
func (h *Hub) Notify(_ context.Context, event pipeline.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[event.RecordingID] {
		select {
		case sub.events <- event:
		default:
			sub.dropped.Inc()
		}
	}
}

// Subscribers returns the number of live subscribers of a recording
func (h *Hub) Subscribers(recordingID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[recordingID])
}

func (h *Hub) subscribe(recordingID uuid.UUID) *subscriber {
	sub := &subscriber{events: make(chan pipeline.Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[recordingID] == nil {
		h.subs[recordingID] = make(map[*subscriber]struct{})
	}
	h.subs[recordingID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(recordingID uuid.UUID, sub *subscriber) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[recordingID], sub)
	if len(h.subs[recordingID]) == 0 {
		delete(h.subs, recordingID)
	}
	return sub.dropped.Load()
}

// Serve upgrades the request and streams events of recordingID until the
// client goes away or ctx is done.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, recordingID uuid.UUID, origins []string) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	sub := h.subscribe(recordingID)
	defer func() {
		if dropped := h.unsubscribe(recordingID, sub); dropped > 0 {
			h.logger.Warn("subscriber dropped events",
				zap.String("recording_id", recordingID.String()),
				zap.Int64("dropped", dropped),
			)
		}
	}()

	// the client never sends; CloseRead handles control frames and cancels on close
	ctx = conn.CloseRead(ctx)
	h.logger.Info("websocket connected",
		zap.String("recording_id", recordingID.String()),
		zap.String("remote", r.RemoteAddr),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-sub.events:
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				h.logger.Debug("websocket write error", zap.Error(err))
				return nil
			}
		}
	}
}

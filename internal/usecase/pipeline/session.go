package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

// session owns one in-memory recording graph. Every read or write of the
// graph goes through mu; model calls run outside it.
type session struct {
	mu      sync.Mutex
	rec     *entities.Recording
	version uint64

	// published is the last version delivered to observers. Events are
	// delivered strictly in version order.
	pubMu     sync.Mutex
	pubCond   *sync.Cond
	published uint64
}

func newSession(rec *entities.Recording) *session {
	s := &session{rec: rec}
	s.pubCond = sync.NewCond(&s.pubMu)
	return s
}

func (s *session) id() uuid.UUID {
	return s.rec.ID
}

// read runs fn under the lock
func (s *session) read(fn func(rec *entities.Recording)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rec)
}

func (s *session) snapshot() *entities.RecordingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.rec.Snapshot()
	snap.Version = s.version
	return snap
}

// awaitTurn blocks until every version before v was delivered
func (s *session) awaitTurn(v uint64) {
	s.pubMu.Lock()
	for s.published != v-1 {
		s.pubCond.Wait()
	}
	s.pubMu.Unlock()
}

func (s *session) delivered(v uint64) {
	s.pubMu.Lock()
	s.published = v
	s.pubMu.Unlock()
	s.pubCond.Broadcast()
}

// mutate applies fn under the lock and publishes an event carrying a
// versioned snapshot of the graph taken before the lock is released.
// Observers see events of one recording in mutation order. A false return
// from fn skips the event.
func (o *Orchestrator) mutate(ctx context.Context, s *session, eventType EventType, fn func(rec *entities.Recording) (uuid.UUID, bool)) (uuid.UUID, bool) {
	s.mu.Lock()
	entityID, changed := fn(s.rec)
	var snap *entities.RecordingSnapshot
	if changed {
		s.version++
		snap = s.rec.Snapshot()
		snap.Version = s.version
	}
	s.mu.Unlock()

	if !changed {
		return entityID, false
	}

	s.awaitTurn(snap.Version)
	defer s.delivered(snap.Version)
	o.dispatcher.publish(ctx, Event{
		Type:        eventType,
		RecordingID: s.id(),
		EntityID:    entityID,
		Snapshot:    snap,
	})
	return entityID, true
}

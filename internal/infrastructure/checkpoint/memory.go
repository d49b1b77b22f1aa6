package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

// MemoryStore keeps encoded snapshots in process with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*memoryItem
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	data       []byte
	expireTime time.Time
}

// NewMemoryStore creates a store whose entries expire ttl after their last save.
// A non-positive ttl keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	store := &MemoryStore{
		items: make(map[uuid.UUID]*memoryItem),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	if ttl > 0 {
		go store.cleanupExpired(ttl)
	}
	return store
}

// Save stores the snapshot, replacing any previous one
func (ms *MemoryStore) Save(_ context.Context, snap *entities.RecordingSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	item := &memoryItem{data: data}
	if ms.ttl > 0 {
		item.expireTime = time.Now().Add(ms.ttl)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[snap.ID] = item
	return nil
}

// Load returns a decoded copy of the latest snapshot
func (ms *MemoryStore) Load(_ context.Context, recordingID uuid.UUID) (*entities.RecordingSnapshot, error) {
	ms.mu.RLock()
	item, exists := ms.items[recordingID]
	ms.mu.RUnlock()

	if !exists || item.expired(time.Now()) {
		return nil, ErrNotFound
	}
	return decode(item.data)
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() { close(ms.done) })
	return nil
}

func (i *memoryItem) expired(now time.Time) bool {
	return !i.expireTime.IsZero() && now.After(i.expireTime)
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	if every > 5*time.Minute {
		every = 5 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if item.expired(now) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}

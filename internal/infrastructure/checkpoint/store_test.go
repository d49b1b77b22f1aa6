package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
)

func sampleSnapshot(summary string) *entities.RecordingSnapshot {
	text := "hello world"
	return &entities.RecordingSnapshot{
		ID:               uuid.New(),
		Audience:         "engineers",
		ChunksPerChapter: 6,
		LatestSummary:    summary,
		TotalCost:        0.25,
		Chunks: []entities.ChunkSnapshot{
			{ID: uuid.New(), Transcript: &text, WordCount: 2, DurationSeconds: 5},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	memory := NewMemoryStore(time.Hour)
	t.Cleanup(func() {
		_ = sqlite.Close()
		_ = memory.Close()
	})
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
				t.Fatalf("got %v, want ErrNotFound", err)
			}

			snap := sampleSnapshot("first")
			if err := store.Save(ctx, snap); err != nil {
				t.Fatalf("Save: %v", err)
			}
			snap.LatestSummary = "second"
			if err := store.Save(ctx, snap); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := store.Load(ctx, snap.ID)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.LatestSummary != "second" {
				t.Errorf("got summary %q, want %q", got.LatestSummary, "second")
			}
			if len(got.Chunks) != 1 || *got.Chunks[0].Transcript != "hello world" {
				t.Errorf("chunks not round-tripped: %+v", got.Chunks)
			}
			if !got.CreatedAt.Equal(snap.CreatedAt) {
				t.Errorf("got created_at %v, want %v", got.CreatedAt, snap.CreatedAt)
			}
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	defer store.Close()

	snap := sampleSnapshot("x")
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Load(context.Background(), snap.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after expiry", err)
	}
}

func TestObserver_SavesSnapshots(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	obs := NewObserver(store, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := sampleSnapshot("done")
	obs.Notify(ctx, pipeline.Event{Type: pipeline.EventTaskFailed, RecordingID: snap.ID})
	if _, err := store.Load(context.Background(), snap.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("events without a snapshot must not be stored")
	}

	obs.Notify(ctx, pipeline.Event{Type: pipeline.EventSummaryCompleted, RecordingID: snap.ID, Snapshot: snap})
	got, err := store.Load(context.Background(), snap.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LatestSummary != "done" {
		t.Errorf("got %q, want %q", got.LatestSummary, "done")
	}
}

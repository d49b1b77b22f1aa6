package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
)

func TestHub_StreamsRecordingEvents(t *testing.T) {
	hub := NewHub(8, nil)
	recordingID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(r.Context(), w, r, recordingID, nil)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(recordingID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify(ctx, pipeline.Event{Type: pipeline.EventChunkAdded, RecordingID: uuid.New()})
	hub.Notify(ctx, pipeline.Event{Type: pipeline.EventChapterSealed, RecordingID: recordingID})

	var got pipeline.Event
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Type != pipeline.EventChapterSealed || got.RecordingID != recordingID {
		t.Errorf("got %s for %s, want %s for %s", got.Type, got.RecordingID, pipeline.EventChapterSealed, recordingID)
	}
}

func TestHub_DropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub(1, nil)
	recordingID := uuid.New()
	sub := hub.subscribe(recordingID)

	for i := 0; i < 3; i++ {
		hub.Notify(context.Background(), pipeline.Event{Type: pipeline.EventChunkAdded, RecordingID: recordingID})
	}
	if len(sub.events) != 1 {
		t.Fatalf("got %d queued, want 1", len(sub.events))
	}
	if dropped := hub.unsubscribe(recordingID, sub); dropped != 2 {
		t.Fatalf("got %d dropped, want 2", dropped)
	}
	if hub.Subscribers(recordingID) != 0 {
		t.Fatal("subscriber not removed")
	}
}

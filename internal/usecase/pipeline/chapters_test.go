package pipeline

import (
	"testing"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

func TestAssignChapter_SealsFloorNOverC(t *testing.T) {
	tests := []struct {
		n, c int
	}{
		{0, 3}, {2, 3}, {3, 3}, {7, 3}, {12, 6}, {13, 6}, {5, 1},
	}
	for _, tt := range tests {
		rec := transcribedRecording(tt.n, tt.c, 6)
		triggers := 0
		for _, chunk := range rec.TranscribedChunks() {
			if assignChapter(rec, chunk.ID) != nil {
				triggers++
			}
		}
		want := tt.n / tt.c
		if got := len(rec.SealedChapters()); got != want {
			t.Errorf("n=%d c=%d: sealed %d chapters, want %d", tt.n, tt.c, got, want)
		}
		if triggers != want {
			t.Errorf("n=%d c=%d: %d summarization triggers, want %d", tt.n, tt.c, triggers, want)
		}
	}
}

func TestAssignChapter_IgnoresAssignedChunk(t *testing.T) {
	rec := transcribedRecording(2, 2, 6)
	first := rec.TranscribedChunks()[0]

	assignChapter(rec, first.ID)
	if sealed := assignChapter(rec, first.ID); sealed != nil {
		t.Fatal("reassigning a chunk must not seal a chapter")
	}
	if got := len(rec.Chapters[0].ChunkIDs); got != 1 {
		t.Fatalf("got %d members, want 1", got)
	}
}

func TestAssignChapter_NumbersChaptersSequentially(t *testing.T) {
	rec := transcribedRecording(5, 2, 6)
	for _, c := range rec.TranscribedChunks() {
		assignChapter(rec, c.ID)
	}
	if len(rec.Chapters) != 3 {
		t.Fatalf("got %d chapters, want 3", len(rec.Chapters))
	}
	for i, ch := range rec.Chapters {
		if ch.Number != i+1 {
			t.Errorf("chapter %d has number %d", i, ch.Number)
		}
	}
	if rec.Chapters[2].State != entities.ChapterStateOpen {
		t.Fatalf("last chapter should stay open, got %s", rec.Chapters[2].State)
	}
}

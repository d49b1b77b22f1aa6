package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

func setupRecording(t *testing.T, h *harness, chunksPerChapter, chunksPerIllustration int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	rec, err := h.o.CreateRecording(ctx, CreateRecordingInput{
		Audience:              "Product managers new to machine learning",
		ChunksPerChapter:      chunksPerChapter,
		ChunksPerIllustration: chunksPerIllustration,
	})
	if err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}
	if _, err := h.o.AddVocabularyExtractor(ctx, rec.ID); err != nil {
		t.Fatalf("AddVocabularyExtractor failed: %v", err)
	}
	if _, err := h.o.AddMarketer(ctx, rec.ID); err != nil {
		t.Fatalf("AddMarketer failed: %v", err)
	}
	if _, err := h.o.AddSentimentEstimator(ctx, rec.ID); err != nil {
		t.Fatalf("AddSentimentEstimator failed: %v", err)
	}
	if _, err := h.o.AddAttendee(ctx, AddAttendeeInput{RecordingID: rec.ID, Name: "Ada", Profile: "CTO of a logistics startup"}); err != nil {
		t.Fatalf("AddAttendee failed: %v", err)
	}
	return rec.ID
}

func TestOrchestrator_DerivesFullGraph(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.AutoAskQuestions = true })
	id := setupRecording(t, h, 2, 2)

	h.addChunks(t, id, 0, 4)

	snap, err := h.o.GetRecording(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRecording failed: %v", err)
	}

	for _, c := range snap.Chunks {
		if c.Transcript == nil || c.ChapterID == nil {
			t.Fatalf("chunk %s not transcribed and assigned", c.ID)
		}
	}
	if len(snap.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(snap.Chapters))
	}
	for _, ch := range snap.Chapters {
		if ch.State != entities.ChapterStateSealed || ch.Summary == nil {
			t.Fatalf("chapter %d not sealed and summarized", ch.Number)
		}
	}
	if len(snap.Summaries) != 2 || snap.LatestSummary == "" {
		t.Fatalf("expected 2 rolling summaries, got %d (latest %q)", len(snap.Summaries), snap.LatestSummary)
	}

	if len(snap.Illustrators) != 3 {
		t.Fatalf("got %d illustrators, want 3", len(snap.Illustrators))
	}
	if snap.LastChunkIllustrated != 3 {
		t.Fatalf("cursor = %d, want 3", snap.LastChunkIllustrated)
	}
	for _, il := range snap.Illustrators {
		if len(il.Illustrations) != 1 {
			t.Fatalf("illustrator %s has %d illustrations", il.ID, len(il.Illustrations))
		}
		img := il.Illustrations[0]
		if !img.HasImage || img.Name != "Quiet Pines" || !strings.HasPrefix(img.MediaURL, "https://media.test/") {
			t.Fatalf("unexpected illustration %+v", img)
		}
		if img.LightestRowPct == nil || img.PerceptualHash == "" {
			t.Fatalf("illustration %s was not analyzed", img.ID)
		}
	}

	terms := snap.VocabularyExtractors[0].Terms
	if len(terms) != 1 {
		t.Fatalf("got %d terms, want 1", len(terms))
	}
	if terms[0].Count != 4 || terms[0].Definition == nil {
		t.Fatalf("unexpected term %+v", terms[0])
	}
	if n := h.chat.count("defineTerm"); n != 1 {
		t.Fatalf("defineTerm called %d times, want 1", n)
	}

	quotes := snap.Marketers[0].PullQuotes
	if len(quotes) != 2 {
		t.Fatalf("got %d pull quotes, want 2", len(quotes))
	}
	for _, q := range quotes {
		if q.Score < 50 {
			t.Fatalf("kept low scoring quote %+v", q)
		}
	}

	if got := len(snap.SentimentEstimators[0].Estimates); got != 2 {
		t.Fatalf("got %d sentiment estimates, want 2", got)
	}

	questions := snap.Attendees[0].Questions
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	for _, q := range questions {
		if q.Name != "Scaling question" || !q.HasAudio || q.AudioURL == "" {
			t.Fatalf("unexpected question %+v", q)
		}
	}

	if snap.TotalCost <= 0 {
		t.Fatalf("expected positive total cost, got %v", snap.TotalCost)
	}
	if len(h.events.ofType(EventTaskFailed)) != 0 {
		t.Fatalf("unexpected failures: %+v", h.events.ofType(EventTaskFailed))
	}
}

func TestOrchestrator_TranscriptionUsesPreviousChunk(t *testing.T) {
	h := newHarness(t, nil)
	id := setupRecording(t, h, 6, 6)

	h.addChunks(t, id, 0, 2)

	h.transcriber.mu.Lock()
	defer h.transcriber.mu.Unlock()
	if len(h.transcriber.prompts) != 2 {
		t.Fatalf("got %d transcriptions, want 2", len(h.transcriber.prompts))
	}
	if h.transcriber.prompts[0] != "" {
		t.Fatalf("first chunk should have no prompt, got %q", h.transcriber.prompts[0])
	}
	want := `The transcript of the previous audio chunk was: "today chunk-0 covers neural networks"`
	if h.transcriber.prompts[1] != want {
		t.Fatalf("got prompt %q, want %q", h.transcriber.prompts[1], want)
	}
}

func TestOrchestrator_ConcurrentChunksSummarizeOncePerChapter(t *testing.T) {
	h := newHarness(t, nil)
	rec, err := h.o.CreateRecording(context.Background(), CreateRecordingInput{Audience: "students", ChunksPerChapter: 3, ChunksPerIllustration: 50})
	if err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.o.AddChunk(context.Background(), AddChunkInput{
				RecordingID: rec.ID,
				Audio:       []byte(fmt.Sprintf("c%d", i)),
				Duration:    time.Second,
				CreatedAt:   epoch.Add(time.Duration(i) * time.Second),
			})
			if err != nil {
				t.Errorf("AddChunk failed: %v", err)
			}
		}(i)
	}
	wg.Wait()
	h.o.Wait()

	snap, _ := h.o.GetRecording(context.Background(), rec.ID)
	sealed := 0
	for _, ch := range snap.Chapters {
		if ch.State == entities.ChapterStateSealed {
			sealed++
		}
	}
	if sealed != n/3 {
		t.Fatalf("sealed %d chapters, want %d", sealed, n/3)
	}
	if got := h.chat.count("chapter_summary"); got != n/3 {
		t.Fatalf("chapter summary requested %d times, want %d", got, n/3)
	}
}

func TestOrchestrator_ParseFailureLeavesNoRecord(t *testing.T) {
	h := newHarness(t, nil)
	h.chat.set("sentiment", func() (*ai.ChatResponse, error) {
		return functionResponse("sentiment", `{"polarity":1.5,"subjectivity":0.5}`), nil
	})
	h.chat.set("pullQuotes", func() (*ai.ChatResponse, error) {
		return functionResponse("pullQuotes", `{"quotes":`), nil
	})
	id := setupRecording(t, h, 2, 10)

	h.addChunks(t, id, 0, 2)

	snap, _ := h.o.GetRecording(context.Background(), id)
	if got := len(snap.SentimentEstimators[0].Estimates); got != 0 {
		t.Fatalf("got %d estimates, want 0", got)
	}
	if got := len(snap.Marketers[0].PullQuotes); got != 0 {
		t.Fatalf("got %d pull quotes, want 0", got)
	}
	if got := h.chat.count("sentiment"); got != 3 {
		t.Fatalf("sentiment attempted %d times, want 3", got)
	}
	if got := len(h.events.ofType(EventTaskFailed)); got != 0 {
		t.Fatalf("parse failures must stay silent, got %d failure events", got)
	}
	if snap.SentimentEstimators[0].Cost <= 0 {
		t.Fatalf("rejected responses still consume tokens, got cost %v", snap.SentimentEstimators[0].Cost)
	}
}

func TestOrchestrator_TransportFailureIsSurfaced(t *testing.T) {
	h := newHarness(t, nil)
	h.chat.set("sentiment", func() (*ai.ChatResponse, error) {
		return nil, &ai.StatusError{Service: "openai", StatusCode: 503, Body: "overloaded"}
	})
	id := setupRecording(t, h, 2, 10)

	h.addChunks(t, id, 0, 2)

	failures := h.events.ofType(EventTaskFailed)
	if len(failures) != 1 {
		t.Fatalf("got %d failure events, want 1", len(failures))
	}
	if failures[0].TaskKind != TaskEstimateSentiment || !strings.Contains(failures[0].Error, "503") {
		t.Fatalf("unexpected failure event %+v", failures[0])
	}
	snap, _ := h.o.GetRecording(context.Background(), id)
	if got := len(snap.SentimentEstimators[0].Estimates); got != 0 {
		t.Fatalf("got %d estimates, want 0", got)
	}
	if got := len(snap.Marketers[0].PullQuotes); got != 1 {
		t.Fatalf("other enrichers should proceed, got %d pull quotes", got)
	}
}

func TestOrchestrator_FailedPromptCreatesNoIllustration(t *testing.T) {
	h := newHarness(t, nil)
	h.chat.set("prompt", func() (*ai.ChatResponse, error) {
		return functionResponse("prompt", `{"prompt":"","name":""}`), nil
	})
	id := setupRecording(t, h, 10, 2)

	h.addChunks(t, id, 0, 2)

	snap, _ := h.o.GetRecording(context.Background(), id)
	if len(snap.Illustrators) != 1 {
		t.Fatalf("got %d illustrators, want 1", len(snap.Illustrators))
	}
	if got := len(snap.Illustrators[0].Illustrations); got != 0 {
		t.Fatalf("got %d illustrations, want 0", got)
	}
	if h.images.calls != 0 {
		t.Fatalf("image synthesis should not run, got %d calls", h.images.calls)
	}
}

func TestOrchestrator_AskQuestion(t *testing.T) {
	h := newHarness(t, nil)
	id := setupRecording(t, h, 2, 10)
	snap, _ := h.o.GetRecording(context.Background(), id)
	attendeeID := snap.Attendees[0].ID

	if err := h.o.AskQuestion(context.Background(), id, attendeeID); !errors.Is(err, usecaseErrors.ErrNoSummary) {
		t.Fatalf("expected ErrNoSummary, got %v", err)
	}
	if err := h.o.AskQuestion(context.Background(), id, uuid.New()); !errors.Is(err, usecaseErrors.ErrAttendeeNotFound) {
		t.Fatalf("expected ErrAttendeeNotFound, got %v", err)
	}

	h.addChunks(t, id, 0, 2)
	snap, _ = h.o.GetRecording(context.Background(), id)
	if got := len(snap.Attendees[0].Questions); got != 0 {
		t.Fatalf("questions should not be asked automatically, got %d", got)
	}

	if err := h.o.AskQuestion(context.Background(), id, attendeeID); err != nil {
		t.Fatalf("AskQuestion failed: %v", err)
	}
	h.o.Wait()

	snap, _ = h.o.GetRecording(context.Background(), id)
	questions := snap.Attendees[0].Questions
	if len(questions) != 1 || !questions[0].HasAudio {
		t.Fatalf("unexpected questions %+v", questions)
	}
}

func TestOrchestrator_InputErrors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	if _, err := h.o.GetRecording(ctx, uuid.New()); !errors.Is(err, usecaseErrors.ErrRecordingNotFound) {
		t.Fatalf("expected ErrRecordingNotFound, got %v", err)
	}
	rec, _ := h.o.CreateRecording(ctx, CreateRecordingInput{Audience: "x"})
	if _, err := h.o.AddChunk(ctx, AddChunkInput{RecordingID: rec.ID}); !errors.Is(err, usecaseErrors.ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio, got %v", err)
	}
	if _, err := h.o.CreateRecording(ctx, CreateRecordingInput{ChunksPerChapter: -1}); !errors.Is(err, usecaseErrors.ErrInvalidBatchSize) {
		t.Fatalf("expected ErrInvalidBatchSize, got %v", err)
	}
	if rec.ChunksPerChapter != entities.DefaultChunksPerChapter || rec.IllustrationStyle != entities.DefaultIllustrationStyle {
		t.Fatalf("defaults not applied: %+v", rec)
	}
}

func TestOrchestrator_GetCost(t *testing.T) {
	h := newHarness(t, nil)
	id := setupRecording(t, h, 6, 6)
	h.addChunks(t, id, 0, 2)

	report, err := h.o.GetCost(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCost failed: %v", err)
	}
	if report.DurationSeconds != 10 {
		t.Fatalf("duration = %v, want 10", report.DurationSeconds)
	}
	if report.WordCount != 10 || report.WordsPerMinute == nil || *report.WordsPerMinute != 60 {
		t.Fatalf("unexpected word metrics %+v", report)
	}
	if report.TotalCost <= 0 || report.CostPerHour == nil {
		t.Fatalf("unexpected cost %+v", report)
	}
}

func TestOrchestrator_ShutdownRejectsNewWork(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	rec, err := h.o.CreateRecording(ctx, CreateRecordingInput{})
	if err != nil {
		t.Fatalf("CreateRecording: %v", err)
	}
	if err := h.o.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := h.o.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}

	if _, err := h.o.CreateRecording(ctx, CreateRecordingInput{}); !errors.Is(err, usecaseErrors.ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
	_, err = h.o.AddChunk(ctx, AddChunkInput{RecordingID: rec.ID, Audio: []byte("a")})
	if !errors.Is(err, usecaseErrors.ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
	if _, err := h.o.GetRecording(ctx, rec.ID); err != nil {
		t.Fatalf("reads should still work after shutdown: %v", err)
	}
}

// slowObserver stalls on the first marketer event it receives
type slowObserver struct {
	mu        sync.Mutex
	stalled   bool
	snapshots []*entities.RecordingSnapshot
}

func (s *slowObserver) Notify(ctx context.Context, event Event) {
	s.mu.Lock()
	stall := event.Type == EventMarketerCreated && !s.stalled
	if stall {
		s.stalled = true
	}
	s.mu.Unlock()
	if stall {
		time.Sleep(100 * time.Millisecond)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, event.Snapshot)
}

func TestOrchestrator_ObserversSeeMutationOrder(t *testing.T) {
	obs := &slowObserver{}
	gw := gateway.New(gateway.Clients{Chat: newFakeChat()}, gateway.Options{Attempts: 1})
	o, err := NewOrchestrator(Dependencies{Gateway: gw, Observers: []Observer{obs}}, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })

	ctx := context.Background()
	rec, err := o.CreateRecording(ctx, CreateRecordingInput{Audience: "engineers"})
	if err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.AddMarketer(ctx, rec.ID); err != nil {
				t.Errorf("AddMarketer failed: %v", err)
			}
		}()
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.snapshots) != 3 {
		t.Fatalf("got %d events, want 3", len(obs.snapshots))
	}
	for i, snap := range obs.snapshots {
		if snap.Version != uint64(i+1) {
			t.Fatalf("event %d carries version %d, want %d", i, snap.Version, i+1)
		}
	}
	if last := obs.snapshots[2]; len(last.Marketers) != 2 {
		t.Fatalf("last snapshot has %d marketers, want 2", len(last.Marketers))
	}
}

func TestOrchestrator_SummaryPassIsPublishedBeforeCompletion(t *testing.T) {
	h := newHarness(t, nil)
	id := setupRecording(t, h, 2, 10)

	h.addChunks(t, id, 0, 2)

	created := h.events.ofType(EventSummaryCreated)
	completed := h.events.ofType(EventSummaryCompleted)
	if len(created) != 1 || len(completed) != 1 {
		t.Fatalf("got %d created and %d completed events, want 1 each", len(created), len(completed))
	}
	if created[0].EntityID != completed[0].EntityID {
		t.Fatalf("created %s but completed %s", created[0].EntityID, completed[0].EntityID)
	}
	if created[0].Snapshot.Version >= completed[0].Snapshot.Version {
		t.Fatalf("created at version %d, completed at %d", created[0].Snapshot.Version, completed[0].Snapshot.Version)
	}

	var pending *entities.SummarySnapshot
	for i := range created[0].Snapshot.Summaries {
		if created[0].Snapshot.Summaries[i].ID == created[0].EntityID {
			pending = &created[0].Snapshot.Summaries[i]
		}
	}
	if pending == nil || pending.Text != "" {
		t.Fatalf("expected an empty pending pass in the snapshot, got %+v", pending)
	}
}

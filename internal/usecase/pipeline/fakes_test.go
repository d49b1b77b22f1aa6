package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

// fakeChat answers by forced function name; plain completions are keyed "question".
// Chapter summaries are keyed "chapter_summary" to tell them from rolling summaries.
type fakeChat struct {
	mu       sync.Mutex
	calls    map[string]int
	override map[string]func() (*ai.ChatResponse, error)
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		calls:    make(map[string]int),
		override: make(map[string]func() (*ai.ChatResponse, error)),
	}
}

var defaultArguments = map[string]string{
	"chapter_summary": `{"summary":"- the speaker introduced neural networks"}`,
	"summary":         `{"summary":"**Why it matters:** neural networks are everywhere."}`,
	"prompt":          `{"prompt":"Misty pine forest at dawn, Sumi-e.","name":"Quiet Pines","reasoning":"calm tone"}`,
	"extractTerms":    `{"terms":[{"term":"neural network","newnessPct":90,"valuePct":85,"definablePct":95},{"term":"slide","newnessPct":10,"valuePct":20,"definablePct":99}]}`,
	"defineTerm":      `{"definition":"A model made of layers of connected units."}`,
	"pullQuotes":      `{"quotes":[{"text":"Networks learn from data.","score":80},{"text":"Um, so yeah.","score":20}]}`,
	"sentiment":       `{"polarity":0.4,"subjectivity":0.6}`,
	"name":            `{"name":"Scaling question"}`,
}

func (f *fakeChat) key(req ai.ChatRequest) string {
	if req.FunctionCall == nil {
		return "question"
	}
	if req.FunctionCall.Name == "summary" && len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "bullet point summary") {
		return "chapter_summary"
	}
	return req.FunctionCall.Name
}

func (f *fakeChat) set(key string, fn func() (*ai.ChatResponse, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.override[key] = fn
}

func (f *fakeChat) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	key := f.key(req)
	f.mu.Lock()
	f.calls[key]++
	override := f.override[key]
	f.mu.Unlock()

	if override != nil {
		return override()
	}
	usage := &ai.Usage{PromptTokens: 100, CompletionTokens: 50}
	if key == "question" {
		return &ai.ChatResponse{
			Choices: []ai.ChatChoice{{Message: ai.ChatMessage{Content: "I'm Ada, a CTO. How does this scale?"}}},
			Usage:   usage,
		}, nil
	}
	return functionResponse(req.FunctionCall.Name, defaultArguments[key]), nil
}

func functionResponse(name, args string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.ChatChoice{{Message: ai.ChatMessage{FunctionCall: &ai.FunctionCall{Name: name, Arguments: args}}}},
		Usage:   &ai.Usage{PromptTokens: 100, CompletionTokens: 50},
	}
}

type fakeImages struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeImages) GenerateImage(ctx context.Context, req ai.ImageRequest) (*ai.Image, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &ai.Image{Data: testPNG(), ContentType: "image/png"}, nil
}

type fakeSpeech struct{}

func (fakeSpeech) Synthesize(ctx context.Context, req ai.SpeechRequest) (*ai.Speech, error) {
	return &ai.Speech{Audio: []byte("ID3-mp3-bytes"), ContentType: "audio/mpeg"}, nil
}

type fakeTranscriber struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req ai.TranscriptionRequest) (*ai.TranscriptionResponse, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	return &ai.TranscriptionResponse{Text: "today " + string(req.Audio) + " covers neural networks"}, nil
}

type fakeMedia struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeMedia) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://media.test/" + key, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(ctx context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	o           *Orchestrator
	chat        *fakeChat
	images      *fakeImages
	transcriber *fakeTranscriber
	media       *fakeMedia
	events      *recorder
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		chat:        newFakeChat(),
		images:      &fakeImages{},
		transcriber: &fakeTranscriber{},
		media:       &fakeMedia{},
		events:      &recorder{},
	}
	gw := gateway.New(gateway.Clients{
		Chat:        h.chat,
		Images:      h.images,
		Speech:      fakeSpeech{},
		Transcriber: h.transcriber,
	}, gateway.Options{Attempts: 3, CallTimeout: time.Second})

	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	o, err := NewOrchestrator(Dependencies{
		Gateway:   gw,
		Media:     h.media,
		Observers: []Observer{h.events},
	}, opts)
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}
	t.Cleanup(func() {
		_ = o.Shutdown(context.Background())
	})
	h.o = o
	return h
}

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// addChunks uploads n chunks one at a time, waiting for each to settle
func (h *harness) addChunks(t *testing.T, recordingID uuid.UUID, from, n int) {
	t.Helper()
	for i := from; i < from+n; i++ {
		_, err := h.o.AddChunk(context.Background(), AddChunkInput{
			RecordingID: recordingID,
			Audio:       []byte(fmt.Sprintf("chunk-%d", i)),
			ContentType: "audio/webm",
			Duration:    5 * time.Second,
			CreatedAt:   epoch.Add(time.Duration(i) * 5 * time.Second),
		})
		if err != nil {
			t.Fatalf("AddChunk(%d) failed: %v", i, err)
		}
		h.o.Wait()
	}
}

func testPNG() []byte {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := uint8(30)
			if y == 2 {
				v = 240
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// transcribedRecording builds a recording with n transcribed chunks in order
func transcribedRecording(n, chunksPerChapter, chunksPerIllustration int) *entities.Recording {
	rec := entities.NewRecording("engineers", chunksPerChapter, chunksPerIllustration, "")
	for i := 0; i < n; i++ {
		c := entities.NewChunk(rec.ID, []byte("a"), "audio/webm", time.Second, epoch.Add(time.Duration(i)*time.Second))
		c.MarkTranscribed(fmt.Sprintf("t%d", i+1))
		rec.AddChunk(c)
	}
	return rec
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/talk-assistant/errors"
	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/infrastructure/http/middleware"
	usecaseErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
	"github.com/johnquangdev/talk-assistant/pkg/config"
	"github.com/johnquangdev/talk-assistant/pkg/jwt"
	"github.com/johnquangdev/talk-assistant/pkg/validator"
)

type fakeService struct {
	known     uuid.UUID
	lastChunk pipeline.AddChunkInput
	created   pipeline.CreateRecordingInput
	askErr    error
}

func (f *fakeService) CreateRecording(_ context.Context, in pipeline.CreateRecordingInput) (*entities.RecordingSnapshot, error) {
	if in.ChunksPerChapter < 0 {
		return nil, usecaseErrors.ErrInvalidBatchSize
	}
	f.created = in
	return &entities.RecordingSnapshot{ID: f.known, Audience: in.Audience}, nil
}

func (f *fakeService) GetRecording(_ context.Context, id uuid.UUID) (*entities.RecordingSnapshot, error) {
	if id != f.known {
		return nil, usecaseErrors.ErrRecordingNotFound
	}
	return &entities.RecordingSnapshot{ID: id}, nil
}

func (f *fakeService) GetCost(_ context.Context, id uuid.UUID) (*pipeline.CostReport, error) {
	if id != f.known {
		return nil, usecaseErrors.ErrRecordingNotFound
	}
	return &pipeline.CostReport{RecordingID: id, TotalCost: 0.5}, nil
}

func (f *fakeService) AddChunk(_ context.Context, in pipeline.AddChunkInput) (*entities.ChunkSnapshot, error) {
	if len(in.Audio) == 0 {
		return nil, usecaseErrors.ErrEmptyAudio
	}
	f.lastChunk = in
	return &entities.ChunkSnapshot{ID: uuid.New(), DurationSeconds: in.Duration.Seconds()}, nil
}

func (f *fakeService) AddAttendee(_ context.Context, in pipeline.AddAttendeeInput) (*entities.AttendeeSnapshot, error) {
	return &entities.AttendeeSnapshot{ID: uuid.New(), Name: in.Name}, nil
}

func (f *fakeService) AddMarketer(context.Context, uuid.UUID) (*entities.MarketerSnapshot, error) {
	return &entities.MarketerSnapshot{ID: uuid.New()}, nil
}

func (f *fakeService) AddVocabularyExtractor(context.Context, uuid.UUID) (*entities.VocabularyExtractorSnap, error) {
	return &entities.VocabularyExtractorSnap{ID: uuid.New()}, nil
}

func (f *fakeService) AddSentimentEstimator(context.Context, uuid.UUID) (*entities.SentimentEstimatorSnap, error) {
	return &entities.SentimentEstimatorSnap{ID: uuid.New()}, nil
}

func (f *fakeService) AskQuestion(context.Context, uuid.UUID, uuid.UUID) error {
	return f.askErr
}

func (f *fakeService) Shutdown(context.Context) error { return nil }

var _ pipeline.Service = (*fakeService)(nil)

func newTestServer(t *testing.T, svc *fakeService, manager *jwt.Manager) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = validator.New()
	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}
	var auth echo.MiddlewareFunc
	if manager != nil {
		auth = middleware.EchoAuth(manager, nil)
	}
	NewRouter(cfg, NewRecordingHandler(svc, nil), nil, auth).Setup(e)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs {
	t.Helper()
	var body errs
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRecording_Create(t *testing.T) {
	svc := &fakeService{known: uuid.New()}
	e := newTestServer(t, svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/recordings",
		strings.NewReader(`{"audience":"engineers","chunks_per_chapter":3,"style":"Ukiyo-e."}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if svc.created.ChunksPerChapter != 3 || svc.created.IllustrationStyle != "Ukiyo-e." {
		t.Errorf("unexpected input %+v", svc.created)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/recordings", strings.NewReader(`{"chunks_per_chapter":-1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = serve(e, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestRecording_ErrorMapping(t *testing.T) {
	svc := &fakeService{known: uuid.New()}
	e := newTestServer(t, svc, nil)

	tests := []struct {
		name   string
		path   string
		status int
		code   errors.ErrorCode
	}{
		{"unknown recording", "/v1/recordings/" + uuid.NewString(), http.StatusNotFound, errors.ErrorCode_RECORDING_NOT_FOUND},
		{"malformed id", "/v1/recordings/not-a-uuid", http.StatusBadRequest, errors.ErrorCode_INVALID_ARGUMENT},
		{"unknown cost", "/v1/recordings/" + uuid.NewString() + "/cost", http.StatusNotFound, errors.ErrorCode_RECORDING_NOT_FOUND},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("got status %d, want %d", rec.Code, tt.status)
			}
			body := decodeError(t, rec)
			if fmt.Sprint(body.Code) != fmt.Sprint(float64(tt.code)) {
				t.Errorf("got code %v, want %d", body.Code, tt.code)
			}
		})
	}
}

func TestRecording_AddChunk(t *testing.T) {
	svc := &fakeService{known: uuid.New()}
	e := newTestServer(t, svc, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", "chunk-1.webm")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake-audio"))
	w.WriteField("duration_ms", "5000")
	w.WriteField("created_at", "2026-01-02T15:04:05Z")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/recordings/"+svc.known.String()+"/chunks", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := serve(e, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d, want 202: %s", rec.Code, rec.Body.String())
	}
	in := svc.lastChunk
	if string(in.Audio) != "fake-audio" || in.FileName != "chunk-1.webm" {
		t.Errorf("unexpected chunk input %+v", in)
	}
	if in.Duration != 5*time.Second {
		t.Errorf("got duration %v, want 5s", in.Duration)
	}
	if want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC); !in.CreatedAt.Equal(want) {
		t.Errorf("got created_at %v, want %v", in.CreatedAt, want)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/recordings/"+svc.known.String()+"/chunks", strings.NewReader("duration_ms=10"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = serve(e, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing audio: got status %d, want 400", rec.Code)
	}
}

func TestRecording_AskQuestion(t *testing.T) {
	svc := &fakeService{known: uuid.New(), askErr: usecaseErrors.ErrNoSummary}
	e := newTestServer(t, svc, nil)
	path := fmt.Sprintf("/v1/recordings/%s/attendees/%s/questions", svc.known, uuid.New())

	rec := serve(e, httptest.NewRequest(http.MethodPost, path, nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("got status %d, want 409", rec.Code)
	}

	svc.askErr = nil
	rec = serve(e, httptest.NewRequest(http.MethodPost, path, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d, want 202", rec.Code)
	}
}

func TestRecording_AttendeeValidation(t *testing.T) {
	svc := &fakeService{known: uuid.New()}
	e := newTestServer(t, svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/recordings/"+svc.known.String()+"/attendees", strings.NewReader(`{"profile":"curious"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); !strings.Contains(body.Info, "name") {
		t.Errorf("validation error should name the field, got %q", body.Info)
	}
}

func TestRouter_Auth(t *testing.T) {
	svc := &fakeService{known: uuid.New()}
	manager := jwt.NewManager("secret", time.Hour, "")
	e := newTestServer(t, svc, manager)
	path := "/v1/recordings/" + svc.known.String()

	if rec := serve(e, httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}

	token, err := manager.GenerateAccessToken("console", "")
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := serve(e, req); rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, path+"?access_token="+token, nil)
	if rec := serve(e, req); rec.Code != http.StatusOK {
		t.Fatalf("query token: got status %d, want 200", rec.Code)
	}

	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Fatalf("health should stay open, got %d", rec.Code)
	}
}

package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/errors"
	"github.com/johnquangdev/talk-assistant/internal/adapter/dto/recording"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
)

// MaxChunkBytes caps the size of an uploaded audio chunk
const MaxChunkBytes = 25 << 20

// Recording handles recording-related HTTP requests
type Recording struct {
	service pipeline.Service
	logger  *zap.Logger
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(service pipeline.Service, logger *zap.Logger) *Recording {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recording{
		service: service,
		logger:  logger,
	}
}

// CreateRecording handles POST /recordings
// @Summary      Start a recording
// @Description  Creates an in-memory recording session that accepts audio chunks
// @Tags         Recordings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      recording.CreateRecordingRequest  true  "Recording settings"
// @Success      201      {object}  entities.RecordingSnapshot
// @Failure      400      {object}  map[string]interface{}
// @Router       /recordings [post]
func (h *Recording) CreateRecording(c echo.Context) error {
	var req recording.CreateRecordingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	snap, err := h.service.CreateRecording(c.Request().Context(), pipeline.CreateRecordingInput{
		Audience:              req.Audience,
		ChunksPerChapter:      req.ChunksPerChapter,
		ChunksPerIllustration: req.ChunksPerIllustration,
		IllustrationStyle:     req.Style,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, snap)
}

// GetRecording handles GET /recordings/:id
// @Summary      Get recording snapshot
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      200  {object}  entities.RecordingSnapshot
// @Failure      404  {object}  map[string]interface{}
// @Router       /recordings/{id} [get]
func (h *Recording) GetRecording(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	snap, err := h.service.GetRecording(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, snap)
}

// GetCost handles GET /recordings/:id/cost
// @Summary      Get recording cost
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      200  {object}  pipeline.CostReport
// @Router       /recordings/{id}/cost [get]
func (h *Recording) GetCost(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	report, err := h.service.GetCost(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// AddChunk handles POST /recordings/:id/chunks
// @Summary      Upload an audio chunk
// @Description  Accepts one recorded segment as multipart field "audio" and schedules its transcription
// @Tags         Recordings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true   "Recording ID (UUID)"
// @Param        audio        formData  file    true   "Audio segment"
// @Param        duration_ms  formData  int     false  "Segment length in milliseconds"
// @Param        created_at   formData  string  false  "RFC3339 capture time"
// @Success      202          {object}  entities.ChunkSnapshot
// @Failure      400          {object}  map[string]interface{}
// @Router       /recordings/{id}/chunks [post]
func (h *Recording) AddChunk(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req recording.AddChunkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("audio file is required"))
	}
	if file.Size > MaxChunkBytes {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(fmt.Sprintf("audio exceeds %d bytes", MaxChunkBytes)))
	}
	src, err := file.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer src.Close()

	audio, err := io.ReadAll(io.LimitReader(src, MaxChunkBytes))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	var createdAt time.Time
	if req.CreatedAt != "" {
		createdAt, _ = time.Parse(time.RFC3339, req.CreatedAt)
	}

	chunk, err := h.service.AddChunk(c.Request().Context(), pipeline.AddChunkInput{
		RecordingID: id,
		Audio:       audio,
		ContentType: file.Header.Get(echo.HeaderContentType),
		FileName:    file.Filename,
		Duration:    time.Duration(req.DurationMs) * time.Millisecond,
		CreatedAt:   createdAt,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusAccepted, chunk)
}

// AddAttendee handles POST /recordings/:id/attendees
// @Summary      Register a simulated attendee
// @Tags         Enrichers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Recording ID (UUID)"
// @Param        request  body      recording.AddAttendeeRequest     true  "Attendee persona"
// @Success      201      {object}  entities.AttendeeSnapshot
// @Router       /recordings/{id}/attendees [post]
func (h *Recording) AddAttendee(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req recording.AddAttendeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	attendee, err := h.service.AddAttendee(c.Request().Context(), pipeline.AddAttendeeInput{
		RecordingID: id,
		Name:        req.Name,
		VoiceName:   req.VoiceName,
		Profile:     req.Profile,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, attendee)
}

// AddMarketer handles POST /recordings/:id/marketers
// @Summary      Register a pull quote extractor
// @Tags         Enrichers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      201  {object}  entities.MarketerSnapshot
// @Router       /recordings/{id}/marketers [post]
func (h *Recording) AddMarketer(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	m, err := h.service.AddMarketer(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, m)
}

// AddVocabularyExtractor handles POST /recordings/:id/vocabulary-extractors
// @Summary      Register a glossary builder
// @Tags         Enrichers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      201  {object}  entities.VocabularyExtractorSnap
// @Router       /recordings/{id}/vocabulary-extractors [post]
func (h *Recording) AddVocabularyExtractor(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	v, err := h.service.AddVocabularyExtractor(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, v)
}

// AddSentimentEstimator handles POST /recordings/:id/sentiment-estimators
// @Summary      Register a sentiment estimator
// @Tags         Enrichers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      201  {object}  entities.SentimentEstimatorSnap
// @Router       /recordings/{id}/sentiment-estimators [post]
func (h *Recording) AddSentimentEstimator(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	e, err := h.service.AddSentimentEstimator(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, e)
}

// AskQuestion handles POST /recordings/:id/attendees/:attendee_id/questions
// @Summary      Ask a question about the latest summary
// @Tags         Enrichers
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Recording ID (UUID)"
// @Param        attendee_id  path      string  true  "Attendee ID (UUID)"
// @Success      202          {object}  recording.QuestionScheduledResponse
// @Failure      409          {object}  map[string]interface{}  "No summary yet"
// @Router       /recordings/{id}/attendees/{attendee_id}/questions [post]
func (h *Recording) AskQuestion(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	attendeeID, err := parseUUIDParam(c, "attendee_id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if err := h.service.AskQuestion(c.Request().Context(), id, attendeeID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusAccepted, recording.QuestionScheduledResponse{
		RecordingID: id,
		AttendeeID:  attendeeID,
		Status:      "scheduled",
	})
}

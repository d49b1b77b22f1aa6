package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/adapter/stream"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
)

// Events streams pipeline events of a recording over a websocket
type Events struct {
	hub     *stream.Hub
	service pipeline.Service
	origins []string
	logger  *zap.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *stream.Hub, service pipeline.Service, origins []string, logger *zap.Logger) *Events {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Events{hub: hub, service: service, origins: origins, logger: logger}
}

// Stream handles GET /recordings/:id/events
// @Summary      Live event stream
// @Description  Websocket that emits one JSON event per graph mutation
// @Tags         Recordings
// @Security     BearerAuth
// @Param        id   path  string  true  "Recording ID (UUID)"
// @Router       /recordings/{id}/events [get]
func (h *Events) Stream(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if _, err := h.service.GetRecording(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.hub.Serve(c.Request().Context(), c.Response(), c.Request(), id, h.origins); err != nil {
		h.logger.Warn("websocket accept error", zap.String("recording_id", id.String()), zap.Error(err))
	}
	return nil
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/talk-assistant/internal/adapter/dto/recording"
	"github.com/johnquangdev/talk-assistant/pkg/config"
)

// HealthChecker reports whether an optional dependency is reachable
type HealthChecker func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	recordingHandler *Recording
	eventsHandler    *Events
	auth             echo.MiddlewareFunc
	checks           map[string]HealthChecker
}

// NewRouter creates a new router with all handlers.
// auth guards the /v1 group; nil leaves it open.
func NewRouter(cfg *config.Config, recordingHandler *Recording, eventsHandler *Events, auth echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:              cfg,
		recordingHandler: recordingHandler,
		eventsHandler:    eventsHandler,
		auth:             auth,
		checks:           make(map[string]HealthChecker),
	}
}

// AddHealthCheck registers a dependency check reported by /health
func (rt *Router) AddHealthCheck(name string, check HealthChecker) {
	rt.checks[name] = check
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	if rt.auth != nil {
		v1.Use(rt.auth)
	}

	rt.setupRecordingRoutes(v1)
}

// setupRecordingRoutes configures recording and enricher routes
func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	recordings := g.Group("/recordings")

	if rt.recordingHandler == nil {
		recordings.Any("*", rt.notImplemented)
		return
	}

	h := rt.recordingHandler
	recordings.POST("", h.CreateRecording)
	recordings.GET("/:id", h.GetRecording)
	recordings.GET("/:id/cost", h.GetCost)
	recordings.POST("/:id/chunks", h.AddChunk)
	recordings.POST("/:id/attendees", h.AddAttendee)
	recordings.POST("/:id/attendees/:attendee_id/questions", h.AskQuestion)
	recordings.POST("/:id/marketers", h.AddMarketer)
	recordings.POST("/:id/vocabulary-extractors", h.AddVocabularyExtractor)
	recordings.POST("/:id/sentiment-estimators", h.AddSentimentEstimator)

	if rt.eventsHandler != nil {
		recordings.GET("/:id/events", rt.eventsHandler.Stream)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status and the state of optional dependencies
func (rt *Router) healthCheck(c echo.Context) error {
	resp := recording.HealthResponse{
		Status:      "ok",
		Environment: rt.cfg.Server.Environment,
	}
	status := http.StatusOK

	if len(rt.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		resp.Components = make(map[string]string, len(rt.checks))
		for name, check := range rt.checks {
			if err := check(ctx); err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "ok"
		}
	}
	return c.JSON(status, resp)
}

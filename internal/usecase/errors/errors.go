package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// Auth errors
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Recording errors
var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrChunkNotFound     = errors.New("chunk not found")
	ErrEmptyAudio        = errors.New("chunk audio is empty")
	ErrInvalidBatchSize  = errors.New("batch size must be positive")
)

// Enricher errors
var (
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrNoSummary        = errors.New("recording has no summary yet")
)

// Pipeline errors
var (
	ErrPipelineClosed = errors.New("pipeline is shutting down")
)

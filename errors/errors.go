package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	ucErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
)

// AppError is the error shape returned to HTTP clients
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_UNAVAILABLE,
		Message:  "Service is shutting down",
	}
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid authentication token",
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:  "Authentication token has expired",
	}
}

// Recording Errors
func ErrRecordingNotFound(recordingID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_RECORDING_NOT_FOUND,
		Message:  "Recording not found",
	}.WithDetail("recording_id", recordingID)
}

func ErrRecordingInvalidConfig(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_RECORDING_INVALID_CONFIG,
		Message:  "Invalid recording configuration",
	}
}

func ErrEmptyAudio() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_CHUNK_EMPTY_AUDIO,
		Message:  "Audio chunk is empty",
	}
}

func ErrAttendeeNotFound(attendeeID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_ATTENDEE_NOT_FOUND,
		Message:  "Attendee not found",
	}.WithDetail("attendee_id", attendeeID)
}

func ErrSummaryNotReady() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SUMMARY_NOT_READY,
		Message:  "No summary is available yet",
	}
}

// AI Errors
func ErrAITranscriptionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_AI_TRANSCRIPTION_FAILED,
		Message:  "Audio transcription failed",
	}
}

func ErrAIServiceUnavailable(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_AI_SERVICE_UNAVAILABLE,
		Message:  "AI service temporarily unavailable",
	}.WithDetail("service", service)
}

// Custom Errors
func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// FromUsecase maps errors returned by the pipeline to the response shape.
// Errors that are already an AppError pass through unchanged.
func FromUsecase(err error) AppError {
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, ucErrors.ErrRecordingNotFound):
		return ErrRecordingNotFound("").WithDetail("reason", err.Error())
	case stdErrors.Is(err, ucErrors.ErrAttendeeNotFound):
		return ErrAttendeeNotFound("").WithDetail("reason", err.Error())
	case stdErrors.Is(err, ucErrors.ErrNotFound):
		return ErrNotFound(err.Error())
	case stdErrors.Is(err, ucErrors.ErrEmptyAudio):
		return ErrEmptyAudio()
	case stdErrors.Is(err, ucErrors.ErrNoSummary):
		return ErrSummaryNotReady()
	case stdErrors.Is(err, ucErrors.ErrInvalidBatchSize):
		return ErrRecordingInvalidConfig(err)
	case stdErrors.Is(err, ucErrors.ErrInvalidInput):
		return ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, ucErrors.ErrUnauthorized), stdErrors.Is(err, ucErrors.ErrTokenInvalid):
		return ErrInvalidToken()
	case stdErrors.Is(err, ucErrors.ErrTokenExpired):
		return ErrTokenExpired()
	case stdErrors.Is(err, ucErrors.ErrPipelineClosed):
		return ErrUnavailable(err)
	}

	var callErr *gateway.CallError
	if stdErrors.As(err, &callErr) {
		if callErr.Kind == gateway.KindTransport {
			return ErrAIServiceUnavailable(callErr.Op, err)
		}
		return ErrAITranscriptionFailed(err)
	}
	return ErrInternal(err)
}

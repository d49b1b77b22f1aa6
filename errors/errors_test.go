package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	ucErrors "github.com/johnquangdev/talk-assistant/internal/usecase/errors"
)

func TestFromUsecase(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode ErrorCode
	}{
		{"recording missing", fmt.Errorf("get: %w", ucErrors.ErrRecordingNotFound), http.StatusNotFound, ErrorCode_RECORDING_NOT_FOUND},
		{"attendee missing", ucErrors.ErrAttendeeNotFound, http.StatusNotFound, ErrorCode_ATTENDEE_NOT_FOUND},
		{"empty audio", ucErrors.ErrEmptyAudio, http.StatusBadRequest, ErrorCode_CHUNK_EMPTY_AUDIO},
		{"no summary", ucErrors.ErrNoSummary, http.StatusConflict, ErrorCode_SUMMARY_NOT_READY},
		{"bad batch size", ucErrors.ErrInvalidBatchSize, http.StatusBadRequest, ErrorCode_RECORDING_INVALID_CONFIG},
		{"closed", ucErrors.ErrPipelineClosed, http.StatusServiceUnavailable, ErrorCode_UNAVAILABLE},
		{"expired token", ucErrors.ErrTokenExpired, http.StatusUnauthorized, ErrorCode_AUTH_TOKEN_EXPIRED},
		{
			"transport exhausted",
			&gateway.CallError{Op: "chunk.transcribe", Kind: gateway.KindTransport, Attempts: 3, Err: stdErrors.New("503")},
			http.StatusServiceUnavailable,
			ErrorCode_AI_SERVICE_UNAVAILABLE,
		},
		{
			"parse exhausted",
			&gateway.CallError{Op: "chunk.transcribe", Kind: gateway.KindParse, Attempts: 3, Err: stdErrors.New("bad json")},
			http.StatusBadGateway,
			ErrorCode_AI_TRANSCRIPTION_FAILED,
		},
		{"unknown", stdErrors.New("boom"), http.StatusInternalServerError, ErrorCode_INTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUsecase(tt.err)
			if got.HTTPCode != tt.wantHTTP {
				t.Errorf("HTTPCode = %d, want %d", got.HTTPCode, tt.wantHTTP)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFromUsecase_PassesAppErrorThrough(t *testing.T) {
	in := ErrInvalidArgument("bad id").WithDetail("id", "x")
	got := FromUsecase(fmt.Errorf("wrapped: %w", in))
	if got.Code != ErrorCode_INVALID_ARGUMENT || got.Details["id"] != "x" {
		t.Errorf("unexpected AppError: %+v", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	raw := stdErrors.New("disk full")
	err := ErrInternal(raw)
	if !stdErrors.Is(err, raw) {
		t.Error("expected AppError to unwrap to its raw error")
	}
	if got := err.Error(); got != "[INTERNAL] Internal server error: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

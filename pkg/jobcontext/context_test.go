package jobcontext

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskBegin_CarriesMetadata(t *testing.T) {
	taskID, recordingID := uuid.New(), uuid.New()
	ctx, cancel := TaskBegin(context.Background(), taskID, "chapter.summarize", recordingID, time.Minute)
	defer cancel()

	md := GetTaskMetadata(ctx)
	if md.TaskID != taskID || md.RecordingID != recordingID || md.Kind != "chapter.summarize" {
		t.Errorf("unexpected metadata: %+v", md)
	}
	if md.StartTime.IsZero() {
		t.Error("expected start time to be set")
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline")
	}
	if got := len(Fields(ctx)); got != 4 {
		t.Errorf("len(Fields) = %d, want 4", got)
	}
}

func TestTaskBegin_DefaultTimeout(t *testing.T) {
	ctx, cancel := TaskBegin(context.Background(), uuid.New(), "x", uuid.New(), 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if remaining := time.Until(deadline); remaining < DefaultTimeout-time.Minute {
		t.Errorf("remaining = %v, want about %v", remaining, DefaultTimeout)
	}
}

func TestRun(t *testing.T) {
	sentinel := errors.New("failed")
	if err := Run(context.Background(), func(context.Context) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("Run() error = %v, want sentinel", err)
	}

	err := Run(context.Background(), func(context.Context) error { panic("sealed chapter") })
	if err == nil || !strings.Contains(err.Error(), "panic recovered: sealed chapter") {
		t.Errorf("Run() error = %v, want recovered panic", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err = Run(ctx, func(context.Context) error { called = true; return nil })
	if called || !errors.Is(err, context.Canceled) {
		t.Errorf("Run() on cancelled ctx: called=%v err=%v", called, err)
	}
}

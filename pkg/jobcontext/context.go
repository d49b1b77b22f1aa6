package jobcontext

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyTaskID        KeyContext = "task_id"
	keyTaskKind      KeyContext = "task_kind"
	keyRecordingID   KeyContext = "recording_id"
	keyTaskStartTime KeyContext = "task_start_time"
)

// DefaultTimeout bounds a task when the caller passes no timeout
const DefaultTimeout = 5 * time.Minute

// TaskMetadata holds metadata for one triggered derivation
type TaskMetadata struct {
	TaskID      uuid.UUID
	Kind        string
	RecordingID uuid.UUID
	StartTime   time.Time
}

// TaskBegin derives a task context carrying metadata and a timeout
func TaskBegin(parentCtx context.Context, taskID uuid.UUID, kind string, recordingID uuid.UUID, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Create context with timeout to prevent infinite hanging
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyTaskID, taskID)
	ctx = context.WithValue(ctx, keyTaskKind, kind)
	ctx = context.WithValue(ctx, keyRecordingID, recordingID)
	ctx = context.WithValue(ctx, keyTaskStartTime, time.Now())

	return ctx, cancel
}

// Run executes the task once, converting a panic into an error.
// Retries belong to the model-call gateway, not to the task.
func Run(ctx context.Context, taskFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v\n%s", p, debug.Stack())
		}
	}()

	// Check if context was cancelled before execution
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before task execution: %w", ctx.Err())
	}

	return taskFunc(ctx)
}

// GetTaskID extracts task ID from context
func GetTaskID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyTaskID).(uuid.UUID)
	return id, ok
}

// GetTaskKind extracts task kind from context
func GetTaskKind(ctx context.Context) (string, bool) {
	kind, ok := ctx.Value(keyTaskKind).(string)
	return kind, ok
}

// GetRecordingID extracts the recording the task works on
func GetRecordingID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyRecordingID).(uuid.UUID)
	return id, ok
}

// GetTaskStartTime extracts task start time from context
func GetTaskStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyTaskStartTime).(time.Time)
	return startTime, ok
}

// GetTaskMetadata extracts all task metadata from context
func GetTaskMetadata(ctx context.Context) *TaskMetadata {
	taskID, _ := GetTaskID(ctx)
	kind, _ := GetTaskKind(ctx)
	recordingID, _ := GetRecordingID(ctx)
	startTime, _ := GetTaskStartTime(ctx)

	return &TaskMetadata{
		TaskID:      taskID,
		Kind:        kind,
		RecordingID: recordingID,
		StartTime:   startTime,
	}
}

// Fields returns zap fields describing the task in ctx
func Fields(ctx context.Context) []zap.Field {
	md := GetTaskMetadata(ctx)
	fields := []zap.Field{
		zap.String("task_id", md.TaskID.String()),
		zap.String("task_kind", md.Kind),
		zap.String("recording_id", md.RecordingID.String()),
	}
	if !md.StartTime.IsZero() {
		fields = append(fields, zap.Duration("elapsed", time.Since(md.StartTime)))
	}
	return fields
}

package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

// ArchiveRepository persists recording snapshots and failed tasks
type ArchiveRepository interface {
	UpsertArchive(ctx context.Context, archive *entities.RecordingArchive) error
	GetArchive(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingArchive, error)
	SaveTaskFailure(ctx context.Context, failure *entities.TaskFailure) error
	ListTaskFailures(ctx context.Context, recordingID uuid.UUID) ([]*entities.TaskFailure, error)
}

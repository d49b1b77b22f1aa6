package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/domain/repositories"
)

// ArchiveRepository handles recording archive data operations
type ArchiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

var _ repositories.ArchiveRepository = (*ArchiveRepository)(nil)

// UpsertArchive inserts the archive or overwrites every column of the existing row
func (r *ArchiveRepository) UpsertArchive(ctx context.Context, archive *entities.RecordingArchive) error {
	if archive == nil {
		return errors.New("archive cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(archiveColumns),
		}).
		Create(archive).Error
}

var archiveColumns = []string{
	"audience",
	"chunk_count",
	"chapter_count",
	"illustration_count",
	"word_count",
	"duration_seconds",
	"total_cost",
	"latest_summary",
	"last_event",
	"snapshot",
	"updated_at",
}

// GetArchive retrieves an archive by recording ID
func (r *ArchiveRepository) GetArchive(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingArchive, error) {
	var archive entities.RecordingArchive
	if err := r.db.WithContext(ctx).Where("id = ?", recordingID).First(&archive).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &archive, nil
}

// SaveTaskFailure creates a failure row
func (r *ArchiveRepository) SaveTaskFailure(ctx context.Context, failure *entities.TaskFailure) error {
	if failure == nil {
		return errors.New("failure cannot be nil")
	}
	return r.db.WithContext(ctx).Create(failure).Error
}

// ListTaskFailures returns failures of a recording, oldest first
func (r *ArchiveRepository) ListTaskFailures(ctx context.Context, recordingID uuid.UUID) ([]*entities.TaskFailure, error) {
	var failures []*entities.TaskFailure
	if err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("occurred_at ASC").
		Find(&failures).Error; err != nil {
		return nil, err
	}
	return failures, nil
}

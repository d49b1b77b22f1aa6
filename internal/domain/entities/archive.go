package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RecordingArchive is the persisted copy of a recording snapshot
type RecordingArchive struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Audience          string         `json:"audience" gorm:"type:text"`
	ChunkCount        int            `json:"chunk_count" gorm:"type:integer;not null;default:0"`
	ChapterCount      int            `json:"chapter_count" gorm:"type:integer;not null;default:0"`
	IllustrationCount int            `json:"illustration_count" gorm:"type:integer;not null;default:0"`
	WordCount         int            `json:"word_count" gorm:"type:integer;not null;default:0"`
	DurationSeconds   float64        `json:"duration_seconds" gorm:"type:double precision;not null;default:0"`
	TotalCost         float64        `json:"total_cost" gorm:"type:double precision;not null;default:0"`
	LatestSummary     string         `json:"latest_summary" gorm:"type:text"`
	LastEvent         string         `json:"last_event" gorm:"type:varchar(64)"`
	Snapshot          datatypes.JSON `json:"snapshot" gorm:"type:jsonb;not null"`
	StartedAt         time.Time      `json:"started_at" gorm:"type:timestamp;not null"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name
func (RecordingArchive) TableName() string {
	return "recording_archives"
}

// NewRecordingArchive flattens the headline figures of a snapshot next to its JSON
func NewRecordingArchive(snap *RecordingSnapshot, payload []byte, lastEvent string) *RecordingArchive {
	illustrations := 0
	for _, il := range snap.Illustrators {
		illustrations += len(il.Illustrations)
	}
	return &RecordingArchive{
		ID:                snap.ID,
		Audience:          snap.Audience,
		ChunkCount:        len(snap.Chunks),
		ChapterCount:      len(snap.Chapters),
		IllustrationCount: illustrations,
		WordCount:         snap.WordCount,
		DurationSeconds:   snap.DurationSeconds,
		TotalCost:         snap.TotalCost,
		LatestSummary:     snap.LatestSummary,
		LastEvent:         lastEvent,
		Snapshot:          datatypes.JSON(payload),
		StartedAt:         snap.CreatedAt,
	}
}

// TaskFailure records a derivation task that ended with a surfaced error
type TaskFailure struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecordingID uuid.UUID `json:"recording_id" gorm:"type:uuid;not null;index"`
	TaskKind    string    `json:"task_kind" gorm:"type:varchar(50);not null;index"`
	Error       string    `json:"error" gorm:"type:text;not null"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"type:timestamp;not null"`
}

// TableName specifies the table name
func (TaskFailure) TableName() string {
	return "task_failures"
}

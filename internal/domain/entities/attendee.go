package entities

import (
	"time"

	"github.com/google/uuid"
)

// DefaultVoiceName is the text-to-speech voice used when none is configured
const DefaultVoiceName = "en-US-Neural2-J"

// Attendee is a synthetic persona that asks the speaker questions
type Attendee struct {
	ID          uuid.UUID
	RecordingID uuid.UUID
	Name        string
	VoiceName   string
	Profile     string
	Questions   []*AttendeeQuestion
	CreatedAt   time.Time
	Cost        Meter
}

// NewAttendee creates an attendee persona
func NewAttendee(recordingID uuid.UUID, name, voiceName, profile string) *Attendee {
	if voiceName == "" {
		voiceName = DefaultVoiceName
	}
	return &Attendee{
		ID:          uuid.New(),
		RecordingID: recordingID,
		Name:        name,
		VoiceName:   voiceName,
		Profile:     profile,
		CreatedAt:   time.Now(),
	}
}

// PreviousQuestions returns the text of every question asked so far
func (a *Attendee) PreviousQuestions() []string {
	out := make([]string, 0, len(a.Questions))
	for _, q := range a.Questions {
		out = append(out, q.Question)
	}
	return out
}

// AttendeeQuestion is a generated question with optional synthesized audio
type AttendeeQuestion struct {
	ID               uuid.UUID
	AttendeeID       uuid.UUID
	SummaryID        uuid.UUID
	Question         string
	Name             string
	Audio            []byte
	AudioContentType string
	AudioURL         string
	CreatedAt        time.Time
}

// NewAttendeeQuestion creates a question
func NewAttendeeQuestion(attendeeID, summaryID uuid.UUID, question string) *AttendeeQuestion {
	return &AttendeeQuestion{
		ID:         uuid.New(),
		AttendeeID: attendeeID,
		SummaryID:  summaryID,
		Question:   question,
		CreatedAt:  time.Now(),
	}
}

// HasAudio reports whether speech synthesis succeeded
func (q *AttendeeQuestion) HasAudio() bool {
	return len(q.Audio) > 0
}

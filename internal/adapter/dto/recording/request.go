package recording

// CreateRecordingRequest represents the request to start a recording
type CreateRecordingRequest struct {
	Audience              string `json:"audience" validate:"max=2000"`
	ChunksPerChapter      int    `json:"chunks_per_chapter" validate:"gte=0,lte=100"`
	ChunksPerIllustration int    `json:"chunks_per_illustration" validate:"gte=0,lte=100"`
	Style                 string `json:"style" validate:"max=200"`
}

// AddChunkRequest carries the form fields sent next to the audio file
type AddChunkRequest struct {
	DurationMs int64  `form:"duration_ms" validate:"gte=0"`
	CreatedAt  string `form:"created_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AddAttendeeRequest represents the request to register an attendee
type AddAttendeeRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	VoiceName string `json:"voice_name" validate:"max=100"`
	Profile   string `json:"profile" validate:"max=4000"`
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// RecordingSnapshot is a detached, read-only copy of a recording graph.
// Raw audio and image payloads are omitted.
type RecordingSnapshot struct {
	ID                    uuid.UUID                 `json:"id"`
	Version               uint64                    `json:"version"`
	Audience              string                    `json:"audience"`
	ChunksPerChapter      int                       `json:"chunks_per_chapter"`
	ChunksPerIllustration int                       `json:"chunks_per_illustration"`
	IllustrationStyle     string                    `json:"illustration_style"`
	LastChunkIllustrated  int                       `json:"last_chunk_illustrated"`
	WordCount             int                       `json:"word_count"`
	DurationSeconds       float64                   `json:"duration_seconds"`
	WordsPerMinute        *int                      `json:"words_per_minute,omitempty"`
	TotalCost             float64                   `json:"total_cost"`
	CostPerHour           *float64                  `json:"cost_per_hour,omitempty"`
	LatestSummary         string                    `json:"latest_summary,omitempty"`
	Chunks                []ChunkSnapshot           `json:"chunks"`
	Chapters              []ChapterSnapshot         `json:"chapters"`
	Summaries             []SummarySnapshot         `json:"summaries"`
	Illustrators          []IllustratorSnapshot     `json:"illustrators"`
	Marketers             []MarketerSnapshot        `json:"marketers"`
	VocabularyExtractors  []VocabularyExtractorSnap `json:"vocabulary_extractors"`
	SentimentEstimators   []SentimentEstimatorSnap  `json:"sentiment_estimators"`
	Attendees             []AttendeeSnapshot        `json:"attendees"`
	CreatedAt             time.Time                 `json:"created_at"`
}

type ChunkSnapshot struct {
	ID              uuid.UUID  `json:"id"`
	ChapterID       *uuid.UUID `json:"chapter_id,omitempty"`
	Transcript      *string    `json:"transcript,omitempty"`
	WordCount       int        `json:"word_count"`
	DurationSeconds float64    `json:"duration_seconds"`
	Cost            float64    `json:"cost"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ChapterSnapshot struct {
	ID        uuid.UUID    `json:"id"`
	Number    int          `json:"number"`
	State     ChapterState `json:"state"`
	ChunkIDs  []uuid.UUID  `json:"chunk_ids"`
	Summary   *string      `json:"summary,omitempty"`
	Cost      float64      `json:"cost"`
	CreatedAt time.Time    `json:"created_at"`
}

type SummarySnapshot struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

type IllustratorSnapshot struct {
	ID            uuid.UUID              `json:"id"`
	Style         string                 `json:"style"`
	Transcript    string                 `json:"transcript"`
	ChunkIDs      []uuid.UUID            `json:"chunk_ids"`
	Illustrations []IllustrationSnapshot `json:"illustrations"`
	Cost          float64                `json:"cost"`
}

type IllustrationSnapshot struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Prompt         string    `json:"prompt"`
	Reasoning      string    `json:"reasoning,omitempty"`
	HasImage       bool      `json:"has_image"`
	MediaURL       string    `json:"media_url,omitempty"`
	SourceURL      string    `json:"source_url,omitempty"`
	LightestRowPct *float64  `json:"lightest_row_pct,omitempty"`
	PerceptualHash string    `json:"perceptual_hash,omitempty"`
	Cost           float64   `json:"cost"`
	CreatedAt      time.Time `json:"created_at"`
}

type MarketerSnapshot struct {
	ID         uuid.UUID           `json:"id"`
	PullQuotes []PullQuoteSnapshot `json:"pull_quotes"`
	Cost       float64             `json:"cost"`
}

type PullQuoteSnapshot struct {
	ID        uuid.UUID `json:"id"`
	ChapterID uuid.UUID `json:"chapter_id"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type VocabularyExtractorSnap struct {
	ID    uuid.UUID      `json:"id"`
	Terms []TermSnapshot `json:"terms"`
	Cost  float64        `json:"cost"`
}

type TermSnapshot struct {
	ID         uuid.UUID `json:"id"`
	ChunkID    uuid.UUID `json:"chunk_id"`
	Text       string    `json:"text"`
	Count      int       `json:"count"`
	Definition *string   `json:"definition,omitempty"`
	Cost       float64   `json:"cost"`
}

type SentimentEstimatorSnap struct {
	ID        uuid.UUID                   `json:"id"`
	Estimates []SentimentEstimateSnapshot `json:"estimates"`
	Cost      float64                     `json:"cost"`
}

type SentimentEstimateSnapshot struct {
	ID           uuid.UUID `json:"id"`
	ChapterID    uuid.UUID `json:"chapter_id"`
	Polarity     float64   `json:"polarity"`
	Subjectivity float64   `json:"subjectivity"`
	CreatedAt    time.Time `json:"created_at"`
}

type AttendeeSnapshot struct {
	ID        uuid.UUID                  `json:"id"`
	Name      string                     `json:"name"`
	VoiceName string                     `json:"voice_name"`
	Profile   string                     `json:"profile"`
	Questions []AttendeeQuestionSnapshot `json:"questions"`
	Cost      float64                    `json:"cost"`
}

type AttendeeQuestionSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Name      string    `json:"name,omitempty"`
	HasAudio  bool      `json:"has_audio"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot copies the graph. Callers must hold the recording's lock.
func (r *Recording) Snapshot() *RecordingSnapshot {
	s := &RecordingSnapshot{
		ID:                    r.ID,
		Audience:              r.Audience,
		ChunksPerChapter:      r.ChunksPerChapter,
		ChunksPerIllustration: r.ChunksPerIllustration,
		IllustrationStyle:     r.IllustrationStyle,
		LastChunkIllustrated:  r.LastChunkIllustrated,
		WordCount:             r.WordCount(),
		DurationSeconds:       r.DurationSeconds(),
		WordsPerMinute:        r.WordsPerMinute(),
		TotalCost:             r.TotalCost(),
		CostPerHour:           r.CostPerHour(),
		CreatedAt:             r.CreatedAt,
	}
	if latest := r.LatestSummary(); latest != nil {
		s.LatestSummary = latest.Text
	}

	for _, c := range r.SortedChunks() {
		cs := ChunkSnapshot{
			ID:              c.ID,
			WordCount:       c.WordCount(),
			DurationSeconds: c.DurationSeconds(),
			Cost:            c.Cost.Value(),
			CreatedAt:       c.CreatedAt,
		}
		if c.ChapterID != nil {
			id := *c.ChapterID
			cs.ChapterID = &id
		}
		if c.Transcript != nil {
			text := *c.Transcript
			cs.Transcript = &text
		}
		s.Chunks = append(s.Chunks, cs)
	}

	for _, ch := range r.Chapters {
		cs := ChapterSnapshot{
			ID:        ch.ID,
			Number:    ch.Number,
			State:     ch.State,
			ChunkIDs:  append([]uuid.UUID(nil), ch.ChunkIDs...),
			Cost:      ch.Cost.Value(),
			CreatedAt: ch.CreatedAt,
		}
		if ch.Summary != nil {
			text := *ch.Summary
			cs.Summary = &text
		}
		s.Chapters = append(s.Chapters, cs)
	}

	for _, sm := range r.Summaries {
		s.Summaries = append(s.Summaries, SummarySnapshot{
			ID:        sm.ID,
			Text:      sm.Text,
			Cost:      sm.Cost.Value(),
			CreatedAt: sm.CreatedAt,
		})
	}

	for _, il := range r.Illustrators {
		is := IllustratorSnapshot{
			ID:         il.ID,
			Style:      il.Style,
			Transcript: il.Transcript,
			ChunkIDs:   append([]uuid.UUID(nil), il.ChunkIDs...),
			Cost:       il.Cost.Value(),
		}
		for _, img := range il.Illustrations {
			snap := IllustrationSnapshot{
				ID:             img.ID,
				Name:           img.Name,
				Prompt:         img.Prompt,
				Reasoning:      img.Reasoning,
				HasImage:       img.HasImage(),
				MediaURL:       img.MediaURL,
				SourceURL:      img.SourceURL,
				PerceptualHash: img.PerceptualHash,
				Cost:           img.Cost.Value(),
				CreatedAt:      img.CreatedAt,
			}
			if img.LightestRowPct != nil {
				pct := *img.LightestRowPct
				snap.LightestRowPct = &pct
			}
			is.Illustrations = append(is.Illustrations, snap)
		}
		s.Illustrators = append(s.Illustrators, is)
	}

	for _, m := range r.Marketers {
		ms := MarketerSnapshot{ID: m.ID, Cost: m.Cost.Value()}
		for _, q := range m.PullQuotes {
			ms.PullQuotes = append(ms.PullQuotes, PullQuoteSnapshot{
				ID:        q.ID,
				ChapterID: q.ChapterID,
				Text:      q.Text,
				Score:     q.Score,
				CreatedAt: q.CreatedAt,
			})
		}
		s.Marketers = append(s.Marketers, ms)
	}

	for _, v := range r.VocabularyExtractors {
		vs := VocabularyExtractorSnap{ID: v.ID, Cost: v.Cost.Value()}
		for _, t := range v.Terms {
			ts := TermSnapshot{
				ID:      t.ID,
				ChunkID: t.ChunkID,
				Text:    t.Text,
				Count:   t.Count,
				Cost:    t.Cost.Value(),
			}
			if t.Definition != nil {
				def := *t.Definition
				ts.Definition = &def
			}
			vs.Terms = append(vs.Terms, ts)
		}
		s.VocabularyExtractors = append(s.VocabularyExtractors, vs)
	}

	for _, se := range r.SentimentEstimators {
		ss := SentimentEstimatorSnap{ID: se.ID, Cost: se.Cost.Value()}
		for _, e := range se.Estimates {
			ss.Estimates = append(ss.Estimates, SentimentEstimateSnapshot{
				ID:           e.ID,
				ChapterID:    e.ChapterID,
				Polarity:     e.Polarity,
				Subjectivity: e.Subjectivity,
				CreatedAt:    e.CreatedAt,
			})
		}
		s.SentimentEstimators = append(s.SentimentEstimators, ss)
	}

	for _, a := range r.Attendees {
		as := AttendeeSnapshot{
			ID:        a.ID,
			Name:      a.Name,
			VoiceName: a.VoiceName,
			Profile:   a.Profile,
			Cost:      a.Cost.Value(),
		}
		for _, q := range a.Questions {
			as.Questions = append(as.Questions, AttendeeQuestionSnapshot{
				ID:        q.ID,
				Question:  q.Question,
				Name:      q.Name,
				HasAudio:  q.HasAudio(),
				AudioURL:  q.AudioURL,
				CreatedAt: q.CreatedAt,
			})
		}
		s.Attendees = append(s.Attendees, as)
	}

	return s
}

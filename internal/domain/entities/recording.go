package entities

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultChunksPerChapter      = 6
	DefaultChunksPerIllustration = 6
	DefaultIllustrationStyle     = "Sumi-e."
)

// Recording is the root aggregate of one talk session.
// It owns every artifact derived from the talk; children refer back by ID.
type Recording struct {
	ID                    uuid.UUID
	Audience              string
	ChunksPerChapter      int
	ChunksPerIllustration int
	IllustrationStyle     string
	LastChunkIllustrated  int
	CreatedAt             time.Time

	Chunks               []*Chunk
	Chapters             []*Chapter
	Summaries            []*Summary
	Illustrators         []*Illustrator
	Marketers            []*Marketer
	VocabularyExtractors []*VocabularyExtractor
	SentimentEstimators  []*SentimentEstimator
	Attendees            []*Attendee
}

// NewRecording creates a recording, falling back to defaults for unset batching parameters
func NewRecording(audience string, chunksPerChapter, chunksPerIllustration int, style string) *Recording {
	if chunksPerChapter <= 0 {
		chunksPerChapter = DefaultChunksPerChapter
	}
	if chunksPerIllustration <= 0 {
		chunksPerIllustration = DefaultChunksPerIllustration
	}
	if style == "" {
		style = DefaultIllustrationStyle
	}
	return &Recording{
		ID:                    uuid.New(),
		Audience:              audience,
		ChunksPerChapter:      chunksPerChapter,
		ChunksPerIllustration: chunksPerIllustration,
		IllustrationStyle:     style,
		CreatedAt:             time.Now(),
	}
}

// AddChunk inserts the chunk keeping creation order
func (r *Recording) AddChunk(c *Chunk) {
	i := sort.Search(len(r.Chunks), func(i int) bool {
		return r.Chunks[i].CreatedAt.After(c.CreatedAt)
	})
	r.Chunks = append(r.Chunks, nil)
	copy(r.Chunks[i+1:], r.Chunks[i:])
	r.Chunks[i] = c
}

// SortedChunks returns all chunks ordered by creation time
func (r *Recording) SortedChunks() []*Chunk {
	out := make([]*Chunk, len(r.Chunks))
	copy(out, r.Chunks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// TranscribedChunks returns chunks with a transcript in arrival order
func (r *Recording) TranscribedChunks() []*Chunk {
	var out []*Chunk
	for _, c := range r.SortedChunks() {
		if c.IsTranscribed() {
			out = append(out, c)
		}
	}
	return out
}

// Chunk looks a chunk up by ID
func (r *Recording) Chunk(id uuid.UUID) *Chunk {
	for _, c := range r.Chunks {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// PreviousChunk returns the chunk created immediately before id, or nil
func (r *Recording) PreviousChunk(id uuid.UUID) *Chunk {
	var prev *Chunk
	for _, c := range r.SortedChunks() {
		if c.ID == id {
			return prev
		}
		prev = c
	}
	return nil
}

// WordCount sums words over transcribed chunks
func (r *Recording) WordCount() int {
	n := 0
	for _, c := range r.TranscribedChunks() {
		n += c.WordCount()
	}
	return n
}

// DurationSeconds sums the duration of transcribed chunks only, so pending
// or failed transcriptions do not dilute the rates derived from it.
func (r *Recording) DurationSeconds() float64 {
	var d time.Duration
	for _, c := range r.TranscribedChunks() {
		d += c.Duration
	}
	return d.Seconds()
}

// WordsPerMinute is nil when no words were transcribed or duration is unknown
func (r *Recording) WordsPerMinute() *int {
	return wordsPerMinute(r.WordCount(), r.DurationSeconds())
}

// CostPerHour extrapolates the total cost to an hour of talk
func (r *Recording) CostPerHour() *float64 {
	seconds := r.DurationSeconds()
	if seconds <= 0 {
		return nil
	}
	perHour := math.Round(r.TotalCost() / seconds * 3600)
	return &perHour
}

// Chapter looks a chapter up by ID
func (r *Recording) Chapter(id uuid.UUID) *Chapter {
	for _, ch := range r.Chapters {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

// CurrentChapter returns the most recently created chapter if it is still open
func (r *Recording) CurrentChapter() *Chapter {
	if len(r.Chapters) == 0 {
		return nil
	}
	last := r.Chapters[len(r.Chapters)-1]
	if last.IsSealed() {
		return nil
	}
	return last
}

// OpenChapter appends a new open chapter numbered after the last one
func (r *Recording) OpenChapter() *Chapter {
	ch := NewChapter(r.ID, len(r.Chapters)+1)
	r.Chapters = append(r.Chapters, ch)
	return ch
}

// SealedChapters returns chapters that reached capacity
func (r *Recording) SealedChapters() []*Chapter {
	var out []*Chapter
	for _, ch := range r.Chapters {
		if ch.IsSealed() {
			out = append(out, ch)
		}
	}
	return out
}

// SummarizedChapters returns chapters with a summary ordered by number
func (r *Recording) SummarizedChapters() []*Chapter {
	var out []*Chapter
	for _, ch := range r.Chapters {
		if ch.IsSummarized() {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// ChaptersSummary joins the chapter summaries in chapter order
func (r *Recording) ChaptersSummary() string {
	chapters := r.SummarizedChapters()
	parts := make([]string, len(chapters))
	for i, ch := range chapters {
		parts[i] = ch.SummaryText()
	}
	return strings.Join(parts, "\n")
}

// ChapterTranscript joins the transcripts of a chapter's chunks in creation order
func (r *Recording) ChapterTranscript(ch *Chapter) string {
	members := make(map[uuid.UUID]bool, len(ch.ChunkIDs))
	for _, id := range ch.ChunkIDs {
		members[id] = true
	}
	var parts []string
	for _, c := range r.TranscribedChunks() {
		if members[c.ID] {
			parts = append(parts, c.TranscriptText())
		}
	}
	return strings.Join(parts, " ")
}

// LatestSummary returns the newest summary with text, or nil
func (r *Recording) LatestSummary() *Summary {
	var latest *Summary
	for _, s := range r.Summaries {
		if !s.IsComplete() {
			continue
		}
		if latest == nil || !s.CreatedAt.Before(latest.CreatedAt) {
			latest = s
		}
	}
	return latest
}

// Illustrator looks an illustrator up by ID
func (r *Recording) Illustrator(id uuid.UUID) *Illustrator {
	for _, il := range r.Illustrators {
		if il.ID == id {
			return il
		}
	}
	return nil
}

// Illustration looks an illustration up across all illustrators
func (r *Recording) Illustration(id uuid.UUID) *Illustration {
	for _, il := range r.Illustrators {
		for _, img := range il.Illustrations {
			if img.ID == id {
				return img
			}
		}
	}
	return nil
}

// Summary looks a summary pass up by ID
func (r *Recording) Summary(id uuid.UUID) *Summary {
	for _, s := range r.Summaries {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Marketer looks a marketer up by ID
func (r *Recording) Marketer(id uuid.UUID) *Marketer {
	for _, m := range r.Marketers {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// VocabularyExtractor looks an extractor up by ID
func (r *Recording) VocabularyExtractor(id uuid.UUID) *VocabularyExtractor {
	for _, v := range r.VocabularyExtractors {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Term looks a term up across all extractors
func (r *Recording) Term(id uuid.UUID) *Term {
	for _, v := range r.VocabularyExtractors {
		for _, t := range v.Terms {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// SentimentEstimator looks an estimator up by ID
func (r *Recording) SentimentEstimator(id uuid.UUID) *SentimentEstimator {
	for _, e := range r.SentimentEstimators {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Attendee looks an attendee up by ID
func (r *Recording) Attendee(id uuid.UUID) *Attendee {
	for _, a := range r.Attendees {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// TotalCost sums every cost meter in the graph. Concurrent additions may or
// may not be observed; the result is a snapshot.
func (r *Recording) TotalCost() float64 {
	total := 0.0
	for _, c := range r.Chunks {
		total += c.Cost.Value()
	}
	for _, ch := range r.Chapters {
		total += ch.Cost.Value()
	}
	for _, s := range r.Summaries {
		total += s.Cost.Value()
	}
	for _, il := range r.Illustrators {
		total += il.Cost.Value()
		for _, img := range il.Illustrations {
			total += img.Cost.Value()
		}
	}
	for _, m := range r.Marketers {
		total += m.Cost.Value()
	}
	for _, v := range r.VocabularyExtractors {
		total += v.Cost.Value()
		for _, t := range v.Terms {
			total += t.Cost.Value()
		}
	}
	for _, s := range r.SentimentEstimators {
		total += s.Cost.Value()
	}
	for _, a := range r.Attendees {
		total += a.Cost.Value()
	}
	return total
}

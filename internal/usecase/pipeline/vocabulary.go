package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/dedup"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
)

// vocabularyFanout runs every vocabulary extractor over a transcribed chunk
type vocabularyFanout struct {
	o *Orchestrator
}

func (v *vocabularyFanout) onChunkTranscribed(ctx context.Context, s *session, chunkID uuid.UUID) {
	var ids []uuid.UUID
	s.read(func(rec *entities.Recording) {
		for _, x := range rec.VocabularyExtractors {
			ids = append(ids, x.ID)
		}
	})
	for _, id := range ids {
		extractorID := id
		v.o.runner.submit(TaskExtractTerms, s.id(), func(ctx context.Context) error {
			return v.o.extractTerms(ctx, s, extractorID, chunkID)
		})
	}
}

func (o *Orchestrator) extractTerms(ctx context.Context, s *session, extractorID, chunkID uuid.UUID) error {
	var (
		extractor  *entities.VocabularyExtractor
		audience   string
		transcript string
	)
	s.read(func(rec *entities.Recording) {
		extractor = rec.VocabularyExtractor(extractorID)
		if c := rec.Chunk(chunkID); c != nil {
			transcript = c.TranscriptText()
		}
		audience = rec.Audience
	})
	if extractor == nil || transcript == "" {
		return nil
	}

	out, err := gateway.Structured[extractTermsOutput](ctx, o.gateway, "extract_terms", extractTermsMessages(audience, transcript), extractTermsFn, &extractor.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "extract_terms", err)
	}

	candidates := keepTerms(out.Terms, o.opts.TermScoreCutoff)
	if len(candidates) == 0 {
		return nil
	}

	var created []*entities.Term
	o.mutate(ctx, s, EventTermsExtracted, func(rec *entities.Recording) (uuid.UUID, bool) {
		created = mergeTerms(extractor, chunkID, candidates, o.opts.TermMatchThreshold)
		return extractor.ID, true
	})

	for _, t := range created {
		termID := t.ID
		o.runner.submit(TaskDefineTerm, s.id(), func(ctx context.Context) error {
			return o.defineTerm(ctx, s, termID)
		})
	}
	return nil
}

// keepTerms retains candidates whose newness, value and definability all reach cutoff
func keepTerms(candidates []termCandidate, cutoff int) []termCandidate {
	var kept []termCandidate
	for _, c := range candidates {
		if c.NewnessPct >= cutoff && c.ValuePct >= cutoff && c.DefinablePct >= cutoff {
			kept = append(kept, c)
		}
	}
	return kept
}

// mergeTerms folds candidates into the extractor's glossary. Every fuzzy match
// is counted again; unmatched candidates become new terms, which later
// candidates of the same batch can match. Callers hold the recording lock.
func mergeTerms(extractor *entities.VocabularyExtractor, chunkID uuid.UUID, candidates []termCandidate, threshold float64) []*entities.Term {
	index := dedup.NewIndex[*entities.Term](threshold)
	for _, t := range extractor.Terms {
		index.Add(t.Text, t)
	}

	var created []*entities.Term
	for _, c := range candidates {
		matches := index.Match(c.Term)
		if len(matches) > 0 {
			for _, t := range matches {
				t.Count++
			}
			continue
		}
		t := entities.NewTerm(extractor.ID, chunkID, c.Term)
		extractor.Terms = append(extractor.Terms, t)
		index.Add(t.Text, t)
		created = append(created, t)
	}
	return created
}

func (o *Orchestrator) defineTerm(ctx context.Context, s *session, termID uuid.UUID) error {
	var (
		term     *entities.Term
		audience string
	)
	s.read(func(rec *entities.Recording) {
		term = rec.Term(termID)
		audience = rec.Audience
	})
	if term == nil {
		return nil
	}

	out, err := gateway.Structured[defineTermOutput](ctx, o.gateway, "define_term", defineTermMessages(audience, term.Text), defineTermFn, &term.Cost)
	if err != nil {
		return o.dropOutputFailure(ctx, "define_term", err)
	}

	o.mutate(ctx, s, EventTermDefined, func(rec *entities.Recording) (uuid.UUID, bool) {
		definition := out.Definition
		term.Definition = &definition
		return term.ID, true
	})
	return nil
}

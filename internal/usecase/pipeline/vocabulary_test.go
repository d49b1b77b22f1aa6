package pipeline

import (
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
	"github.com/johnquangdev/talk-assistant/internal/usecase/dedup"
)

func TestMergeTerms_FuzzyMatchIncrementsCount(t *testing.T) {
	extractor := entities.NewVocabularyExtractor(uuid.New())
	existing := entities.NewTerm(extractor.ID, uuid.New(), "neural network")
	extractor.Terms = append(extractor.Terms, existing)

	created := mergeTerms(extractor, uuid.New(), []termCandidate{{Term: "Neural Networks"}}, dedup.DefaultThreshold)

	if len(created) != 0 {
		t.Fatalf("expected no new terms, got %d", len(created))
	}
	if existing.Count != 2 {
		t.Fatalf("count = %d, want 2", existing.Count)
	}
	if len(extractor.Terms) != 1 {
		t.Fatalf("got %d terms, want 1", len(extractor.Terms))
	}
}

func TestMergeTerms_MissCreatesTerm(t *testing.T) {
	extractor := entities.NewVocabularyExtractor(uuid.New())
	extractor.Terms = append(extractor.Terms, entities.NewTerm(extractor.ID, uuid.New(), "neural network"))
	chunkID := uuid.New()

	created := mergeTerms(extractor, chunkID, []termCandidate{{Term: "gradient descent"}}, dedup.DefaultThreshold)

	if len(created) != 1 {
		t.Fatalf("expected one new term, got %d", len(created))
	}
	if created[0].Count != 1 || created[0].ChunkID != chunkID {
		t.Fatalf("unexpected term %+v", created[0])
	}
}

func TestMergeTerms_SameBatchDuplicatesCollapse(t *testing.T) {
	extractor := entities.NewVocabularyExtractor(uuid.New())

	created := mergeTerms(extractor, uuid.New(), []termCandidate{{Term: "embedding"}, {Term: "Embeddings"}}, dedup.DefaultThreshold)

	if len(created) != 1 {
		t.Fatalf("expected one new term, got %d", len(created))
	}
	if created[0].Count != 2 {
		t.Fatalf("count = %d, want 2", created[0].Count)
	}
}

func TestKeepTerms(t *testing.T) {
	candidates := []termCandidate{
		{Term: "a", NewnessPct: 70, ValuePct: 70, DefinablePct: 70},
		{Term: "b", NewnessPct: 69, ValuePct: 90, DefinablePct: 90},
		{Term: "c", NewnessPct: 90, ValuePct: 90, DefinablePct: 10},
	}
	kept := keepTerms(candidates, 70)
	if len(kept) != 1 || kept[0].Term != "a" {
		t.Fatalf("got %+v, want only a", kept)
	}
}

func TestKeepPullQuotes(t *testing.T) {
	kept := keepPullQuotes([]pullQuoteCandidate{{Text: "x", Score: 50}, {Text: "y", Score: 49}}, 50)
	if len(kept) != 1 || kept[0].Text != "x" {
		t.Fatalf("got %+v, want only x", kept)
	}
}

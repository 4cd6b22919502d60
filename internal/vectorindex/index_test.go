package vectorindex

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()

	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
		{0.5, 0.5, 0.5},
	}
	ids := []string{"aaa", "bbb", "ccc", "ddd"}

	idx, err := Build(vectors, ids)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return idx
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil, nil)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestBuildDimensionMismatch(t *testing.T) {
	_, err := Build([][]float32{{1, 0}, {1, 0, 0}}, []string{"a", "b"})

	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if dimErr.Want != 2 || dimErr.Got != 3 {
		t.Errorf("unexpected dimensions in error: want=%d got=%d", dimErr.Want, dimErr.Got)
	}
}

func TestBuildMismatchedIDs(t *testing.T) {
	_, err := Build([][]float32{{1, 0}}, []string{"a", "b"})
	if err == nil {
		t.Error("expected error for mismatched vector/id counts")
	}
}

func TestSelfSimilarity(t *testing.T) {
	// Un-normalized input must still score 1.0 against itself, because
	// both sides are normalized internally.
	v := []float32{3, 4, 12}
	idx, err := Build([][]float32{v}, []string{"self"})
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	hits, err := idx.Search(v, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if math.Abs(hits[0].Score-1.0) > 1e-6 {
		t.Errorf("self-similarity = %v, want 1.0", hits[0].Score)
	}
}

func TestSearchOrdering(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Search([]float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if hits[0].ID != "aaa" {
		t.Errorf("top hit = %s, want aaa", hits[0].ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, hits[i].Score, hits[i-1].Score)
		}
	}
}

func TestSearchTieBreaksOnSlot(t *testing.T) {
	// Two identical vectors: first-inserted must win.
	vectors := [][]float32{
		{0, 1},
		{1, 0},
		{0, 1},
	}
	idx, err := Build(vectors, []string{"first", "other", "second"})
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	hits, err := idx.Search([]float32{0, 1}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if hits[0].ID != "first" || hits[1].ID != "second" {
		t.Errorf("tie not broken by slot order: got %s, %s", hits[0].ID, hits[1].ID)
	}
}

func TestSearchClampsK(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Search([]float32{1, 0, 0}, 100)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != idx.Len() {
		t.Errorf("expected %d hits, got %d", idx.Len(), len(hits))
	}

	hits, err = idx.Search([]float32{1, 0, 0}, -1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected 0 hits for negative k, got %d", len(hits))
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx := buildTestIndex(t)

	_, err := idx.Search([]float32{1, 0}, 2)
	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionMismatchError, got %v", err)
	}
}

func TestIdempotentBuild(t *testing.T) {
	a := buildTestIndex(t)
	b := buildTestIndex(t)

	query := []float32{0.7, 0.2, 0.4}
	hitsA, _ := a.Search(query, 4)
	hitsB, _ := b.Search(query, 4)

	if len(hitsA) != len(hitsB) {
		t.Fatalf("result counts differ: %d vs %d", len(hitsA), len(hitsB))
	}
	for i := range hitsA {
		if hitsA[i] != hitsB[i] {
			t.Errorf("result %d differs: %+v vs %+v", i, hitsA[i], hitsB[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	idx := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "index.bin")

	if err := idx.WriteFile(path); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read index: %v", err)
	}
	if loaded.Len() != idx.Len() || loaded.Dimension() != idx.Dimension() {
		t.Fatalf("loaded shape %dx%d, want %dx%d",
			loaded.Len(), loaded.Dimension(), idx.Len(), idx.Dimension())
	}

	query := []float32{0.3, 0.9, 0.1}
	want, _ := idx.Search(query, 4)
	got, _ := loaded.Search(query, 4)

	for i := range want {
		if want[i] != got[i] {
			t.Errorf("result %d differs after round-trip: %+v vs %+v", i, want[i], got[i])
		}
	}
}

func TestReadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bin")
	if err := writeGarbage(path); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Error("expected error for garbage index file")
	}
}

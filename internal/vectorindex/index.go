// Package vectorindex implements a flat inner-product index over
// L2-normalized vectors, the mechanism behind semantic commit search.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyIndex is returned when there are no vectors to index. Callers
// must treat it as "semantic search unavailable", not as a pipeline failure.
var ErrEmptyIndex = errors.New("no vectors to index")

// DimensionMismatchError reports a vector whose length disagrees with the
// index dimension.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Index maps dense slots [0, n) to normalized embedding vectors and the
// commit IDs they came from. Immutable after Build.
type Index struct {
	dim     int
	vectors [][]float32
	ids     []string
}

// Hit is one search result: the slot, its commit ID and the inner-product
// similarity against the normalized query.
type Hit struct {
	Slot  int     `json:"slot"`
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Build creates an index from parallel vector and commit ID lists.
// Every vector is L2-normalized on insertion so cosine similarity reduces
// to an inner product at search time.
func Build(vectors [][]float32, ids []string) (*Index, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(vectors) != len(ids) {
		return nil, fmt.Errorf("got %d vectors but %d ids", len(vectors), len(ids))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, &DimensionMismatchError{Want: 1, Got: 0}
	}

	idx := &Index{
		dim:     dim,
		vectors: make([][]float32, len(vectors)),
		ids:     make([]string, len(vectors)),
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &DimensionMismatchError{Want: dim, Got: len(v)}
		}
		idx.vectors[i] = normalize(v)
		idx.ids[i] = ids[i]
	}
	return idx, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Dimension returns the vector dimension the index was built with.
func (x *Index) Dimension() int { return x.dim }

// ID returns the commit ID stored at a slot.
func (x *Index) ID(slot int) string { return x.ids[slot] }

// Search returns the top-k most similar slots for a query vector, sorted by
// descending similarity. Ties break on ascending slot so results are
// deterministic. k is clamped to [0, Len].
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dim {
		return nil, &DimensionMismatchError{Want: x.dim, Got: len(query)}
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)
	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Slot: i, ID: x.ids[i], Score: dot(q, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Slot < hits[j].Slot
	})
	return hits[:k], nil
}

// normalize returns a unit-length copy of v. A zero vector stays zero and
// scores 0 against everything.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1.0 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

package kb

import (
	"sort"
	"sync"
)

// VectorStore holds one embedding per chunk in memory. Vectors are
// normalized before insertion, so the dot product is cosine similarity.
// The store is safe for concurrent reads once loading has finished.
type VectorStore struct {
	mu   sync.RWMutex
	dim  int
	ids  []string
	vecs [][]float64
}

func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Add inserts a vector under the given id. The first insertion fixes the
// store dimension; later vectors are padded or truncated to match, which
// keeps mixed snapshots (service embeddings next to local fallbacks) usable.
func (s *VectorStore) Add(id string, vec []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = len(vec)
	}
	s.ids = append(s.ids, id)
	s.vecs = append(s.vecs, fitDim(vec, s.dim))
}

func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Hit is a single similarity result.
type Hit struct {
	ID    string
	Score float64
}

// Search returns the k nearest vectors by cosine similarity, best first.
// Equal scores keep insertion order.
func (s *VectorStore) Search(query []float64, k int) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.ids) == 0 || k <= 0 {
		return nil
	}
	q := fitDim(query, s.dim)

	hits := make([]Hit, len(s.ids))
	for i, vec := range s.vecs {
		hits[i] = Hit{ID: s.ids[i], Score: dot(q, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func fitDim(vec []float64, dim int) []float64 {
	if len(vec) == dim {
		return vec
	}
	out := make([]float64, dim)
	copy(out, vec)
	return out
}

package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorStoreSearchOrdering(t *testing.T) {
	store := NewVectorStore()
	store.Add("far", []float64{0, 1, 0})
	store.Add("near", []float64{1, 0, 0})
	store.Add("mid", []float64{0.7071, 0.7071, 0})

	hits := store.Search([]float64{1, 0, 0}, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "near", hits[0].ID)
	assert.Equal(t, "mid", hits[1].ID)
	assert.Equal(t, "far", hits[2].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestVectorStoreTiesKeepInsertionOrder(t *testing.T) {
	store := NewVectorStore()
	store.Add("first", []float64{1, 0})
	store.Add("second", []float64{1, 0})
	store.Add("third", []float64{1, 0})

	hits := store.Search([]float64{1, 0}, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].ID)
	assert.Equal(t, "second", hits[1].ID)
	assert.Equal(t, "third", hits[2].ID)
}

func TestVectorStoreTruncatesToK(t *testing.T) {
	store := NewVectorStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		store.Add(id, []float64{1, 0})
	}

	assert.Len(t, store.Search([]float64{1, 0}, 2), 2)
	assert.Len(t, store.Search([]float64{1, 0}, 10), 4)
	assert.Nil(t, store.Search([]float64{1, 0}, 0))
}

func TestVectorStoreDimensionMismatch(t *testing.T) {
	store := NewVectorStore()
	store.Add("wide", []float64{1, 0, 0, 0})
	// Shorter vectors are padded with zeros to the store dimension.
	store.Add("narrow", []float64{0, 1})

	hits := store.Search([]float64{0, 1}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "narrow", hits[0].ID)

	// Longer queries are truncated.
	hits = store.Search([]float64{1, 0, 0, 0, 0.5, 0.5}, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "wide", hits[0].ID)
}

func TestVectorStoreEmpty(t *testing.T) {
	store := NewVectorStore()
	assert.Zero(t, store.Len())
	assert.Nil(t, store.Search([]float64{1}, 3))
}

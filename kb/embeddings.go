package kb

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
)

// Embedder turns text into a dense vector. The Azure OpenAI client
// implements it; tests plug in stubs.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float64, error)
}

// SetEmbedder wires the embedder used for query-time search. A nil embedder
// is allowed and routes every search through the keyword fallback.
func (kb *KnowledgeBase) SetEmbedder(e Embedder) {
	kb.embedder = e
}

// batchEmbedder is the optional bulk interface. The Azure OpenAI client
// implements it, turning the 18-chunk build into a single call.
type batchEmbedder interface {
	EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error)
}

// BuildEmbeddings computes one vector per chunk and fills the store. When a
// chunk cannot be embedded the deterministic local vector takes its place,
// so retrieval always has something to rank.
func (kb *KnowledgeBase) BuildEmbeddings(ctx context.Context, embedder Embedder) error {
	texts := make([]string, len(kb.chunks))
	for i, chunk := range kb.chunks {
		texts[i] = chunk.Description + "\n" + chunk.Content
	}

	vecs := make([][]float64, len(kb.chunks))
	if bulk, ok := embedder.(batchEmbedder); ok {
		batch, err := bulk.EmbedBatch(ctx, texts)
		switch {
		case err == nil && len(batch) == len(texts):
			vecs = batch
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			log.Printf("Batch embedding failed, embedding chunks one by one: %v", err)
		default:
			log.Printf("Batch embedding returned %d vectors for %d chunks, embedding one by one", len(batch), len(texts))
		}
	}

	for i, chunk := range kb.chunks {
		vec := vecs[i]
		if len(vec) == 0 && embedder != nil {
			v, err := embedder.Embed(ctx, texts[i])
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("Embedding failed for chunk %s, using local vector: %v", chunk.ID, err)
			} else {
				vec = v
			}
		}
		if len(vec) == 0 {
			vec = fallbackVector(texts[i])
		}
		kb.store.Add(chunk.ID, normalize(vec))
	}
	return nil
}

const fallbackDim = 128

// fallbackVector derives a stable vector from the md5 digest of the text.
// It carries no semantics, but identical text always maps to the same
// point, which keeps keyword-free ranking deterministic.
func fallbackVector(text string) []float64 {
	sum := md5.Sum([]byte(text))
	digest := hex.EncodeToString(sum[:])

	vec := make([]float64, fallbackDim)
	for i := range vec {
		pair := (i * 2) % len(digest)
		n, _ := strconv.ParseInt(digest[pair:pair+2], 16, 64)
		vec[i] = float64(n) / 255.0
	}
	return vec
}

func normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

// SaveVectors writes the current store contents as a JSON snapshot keyed by
// chunk id, so servers can start without re-embedding the corpus.
func (kb *KnowledgeBase) SaveVectors(path string) error {
	kb.store.mu.RLock()
	snapshot := make(map[string][]float64, len(kb.store.ids))
	for i, id := range kb.store.ids {
		snapshot[id] = kb.store.vecs[i]
	}
	kb.store.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode vectors: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vectors file: %w", err)
	}
	return nil
}

// LoadVectors restores a snapshot written by SaveVectors. The snapshot must
// cover exactly the loaded chunks; anything else means it was built from a
// different corpus and is rejected.
func (kb *KnowledgeBase) LoadVectors(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read vectors file: %w", err)
	}
	var snapshot map[string][]float64
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to decode vectors file: %w", err)
	}

	if len(snapshot) != len(kb.chunks) {
		return fmt.Errorf("%w: snapshot has %d vectors, corpus has %d chunks",
			ErrVectorsMismatch, len(snapshot), len(kb.chunks))
	}
	for _, chunk := range kb.chunks {
		if _, ok := snapshot[chunk.ID]; !ok {
			return fmt.Errorf("%w: no vector for chunk %s", ErrVectorsMismatch, chunk.ID)
		}
	}
	for _, chunk := range kb.chunks {
		kb.store.Add(chunk.ID, normalize(snapshot[chunk.ID]))
	}
	return nil
}

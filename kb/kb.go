// Package kb loads the HMO services knowledge base and serves retrieval over
// it. The corpus is six HTML service documents, each split into one chunk per
// HMO (maccabi, meuhedet, clalit) for exactly 18 chunks. Loading is fail-fast:
// a duplicate or incomplete corpus never reaches serving. After load the
// corpus is read-only.
package kb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"medintake-backend/models"
)

const targetChunks = 18

var (
	ErrCorpusIncomplete = errors.New("knowledge corpus incomplete")
	ErrDuplicateChunk   = errors.New("duplicate knowledge chunk")
	ErrVectorsMismatch  = errors.New("vector snapshot does not match corpus")
)

// serviceDescriptions gives each service its embedded one-line summary.
var serviceDescriptions = map[string]string{
	"dental":               "שירותי רפואת שיניים: בדיקות, טיפולים והנחות לחברי הקופה",
	"optometry":            "שירותי אופטומטריה: בדיקות ראייה, משקפיים ועדשות מגע",
	"pregnancy":            "שירותי היריון ולידה: מעקב היריון, בדיקות וסדנאות הכנה ללידה",
	"alternative_medicine": "שירותי רפואה משלימה: דיקור, שיאצו, הומאופתיה ורפלקסולוגיה",
	"communication_clinic": "מרפאות תקשורת: אבחון וטיפול בהפרעות שפה, דיבור ושמיעה",
	"workshops":            "סדנאות בריאות: גמילה מעישון, תזונה נכונה וניהול מתח",
}

// KnowledgeBase holds the parsed corpus and its vector index
type KnowledgeBase struct {
	chunks   []models.KnowledgeChunk
	byID     map[string]models.KnowledgeChunk
	store    *VectorStore
	embedder Embedder
}

// Stats summarizes the loaded corpus for the health endpoint
type Stats struct {
	TotalChunks     int            `json:"total_chunks"`
	TotalServices   int            `json:"total_services"`
	Services        []string       `json:"services"`
	HMODistribution map[string]int `json:"hmo_distribution"`
	EmbeddingsReady bool           `json:"embeddings_ready"`
	TargetChunks    int            `json:"target_chunks"`
}

// Load reads every *.html file under dir and splits each into three
// HMO chunks. It returns an error rather than a partial corpus.
func Load(dir string) (*KnowledgeBase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read knowledge dir: %w", err)
	}

	kb := &KnowledgeBase{
		byID:  make(map[string]models.KnowledgeChunk),
		store: NewVectorStore(),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		service := strings.TrimSuffix(strings.TrimSuffix(entry.Name(), ".html"), "_services")
		text := htmlToText(string(data))

		for _, hmo := range models.HMOOrder {
			chunk := buildChunk(service, hmo, text)
			if _, exists := kb.byID[chunk.ID]; exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateChunk, chunk.ID)
			}
			kb.byID[chunk.ID] = chunk
			kb.chunks = append(kb.chunks, chunk)
		}
	}

	if len(kb.chunks) != targetChunks {
		return nil, fmt.Errorf("%w: have %d chunks, want %d (6 services x 3 HMOs)",
			ErrCorpusIncomplete, len(kb.chunks), targetChunks)
	}
	return kb, nil
}

// buildChunk assembles the HMO-specific view of one service document.
func buildChunk(service, hmo, text string) models.KnowledgeChunk {
	hebrew := models.HMOHebrewNames[hmo]
	description := serviceDescriptions[service]
	if description == "" {
		description = "שירותי " + strings.ReplaceAll(service, "_", " ")
	}

	content := extractHMOContent(text, hmo)
	if content == "" {
		// the chunk must exist even when the document never singles the HMO out
		content = fmt.Sprintf("מידע כללי על השירות עבור חברי %s. לפרטים מלאים יש לפנות ישירות לקופת החולים.", hebrew)
	}

	return models.KnowledgeChunk{
		ID:          service + "_" + hmo,
		Service:     service,
		HMO:         hmo,
		HMOHebrew:   hebrew,
		ChunkType:   hmo,
		Description: description,
		Content:     content,
	}
}

// Chunks returns the corpus in load order
func (kb *KnowledgeBase) Chunks() []models.KnowledgeChunk {
	return kb.chunks
}

// Chunk returns one chunk by its id
func (kb *KnowledgeBase) Chunk(id string) (models.KnowledgeChunk, bool) {
	chunk, ok := kb.byID[id]
	return chunk, ok
}

// ServiceNames returns the sorted list of service identifiers
func (kb *KnowledgeBase) ServiceNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, chunk := range kb.chunks {
		if !seen[chunk.Service] {
			seen[chunk.Service] = true
			names = append(names, chunk.Service)
		}
	}
	sort.Strings(names)
	return names
}

// ServiceInfo returns all chunks of one service in fixed HMO order
func (kb *KnowledgeBase) ServiceInfo(service string) []models.KnowledgeChunk {
	var out []models.KnowledgeChunk
	for _, hmo := range models.HMOOrder {
		if chunk, ok := kb.byID[service+"_"+hmo]; ok {
			out = append(out, chunk)
		}
	}
	return out
}

// Stats reports corpus shape and index readiness
func (kb *KnowledgeBase) Stats() Stats {
	dist := make(map[string]int)
	for _, chunk := range kb.chunks {
		dist[chunk.HMO]++
	}
	return Stats{
		TotalChunks:     len(kb.chunks),
		TotalServices:   len(kb.ServiceNames()),
		Services:        kb.ServiceNames(),
		HMODistribution: dist,
		EmbeddingsReady: kb.store.Len() == len(kb.chunks) && len(kb.chunks) > 0,
		TargetChunks:    targetChunks,
	}
}

package kb

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"medintake-backend/models"
)

// RetrievedChunk is a knowledge chunk with its similarity score attached.
type RetrievedChunk struct {
	models.KnowledgeChunk
	Score float64
}

const DefaultTopK = 3

// expansionPairs bridges Hebrew queries and English chunk ids (and back).
// Each entry appends its partner terms when one side appears in the query.
var expansionPairs = [][]string{
	{"שיניים", "dental"},
	{"ראייה", "optometry"},
	{"משקפיים", "optometry"},
	{"עדשות", "optometry"},
	{"היריון", "pregnancy"},
	{"הריון", "pregnancy"},
	{"לידה", "pregnancy"},
	{"רפואה משלימה", "alternative medicine"},
	{"דיקור", "alternative medicine"},
	{"שיאצו", "alternative medicine"},
	{"תקשורת", "communication clinic"},
	{"דיבור", "communication clinic"},
	{"קלינאי", "communication clinic"},
	{"סדנאות", "workshops"},
	{"סדנה", "workshops"},
	{"מכבי", "maccabi"},
	{"מאוחדת", "meuhedet"},
	{"כללית", "clalit"},
	{"זהב", "gold"},
	{"כסף", "silver"},
	{"ארד", "bronze"},
}

// expandQuery appends cross-language terms so an embedding of a Hebrew
// question still lands near English-labelled chunks and vice versa.
func expandQuery(query string) string {
	lower := strings.ToLower(query)
	var extra []string
	for _, pair := range expansionPairs {
		for i, term := range pair {
			if strings.Contains(lower, term) {
				for j, partner := range pair {
					if j != i && !strings.Contains(lower, partner) {
						extra = append(extra, partner)
					}
				}
			}
		}
	}
	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(dedupe(extra), " ")
}

// Search retrieves the topK chunks most relevant to the query, restricted
// to the given HMO when one is known. Embedding failures degrade to keyword
// overlap instead of failing the request.
func (kb *KnowledgeBase) Search(ctx context.Context, query, hmo string, topK int) []RetrievedChunk {
	if topK <= 0 {
		topK = DefaultTopK
	}
	expanded := expandQuery(query)

	if kb.embedder == nil || kb.store.Len() == 0 {
		return kb.keywordSearch(expanded, hmo, topK)
	}

	vec, err := kb.embedder.Embed(ctx, expanded)
	if err != nil || len(vec) == 0 {
		if err != nil {
			log.Printf("Query embedding failed, falling back to keyword search: %v", err)
		}
		return kb.keywordSearch(expanded, hmo, topK)
	}

	searchK := topK * 3
	if searchK > len(kb.chunks) {
		searchK = len(kb.chunks)
	}
	hits := kb.store.Search(normalize(vec), searchK)

	var results []RetrievedChunk
	best := 0.0
	for _, hit := range hits {
		chunk, ok := kb.byID[hit.ID]
		if !ok || !matchesHMO(chunk, hmo) {
			continue
		}
		if hit.Score > best {
			best = hit.Score
		}
		results = append(results, RetrievedChunk{KnowledgeChunk: chunk, Score: hit.Score})
		if len(results) == topK {
			break
		}
	}
	if len(results) == 0 || best < 1e-9 {
		return kb.keywordSearch(expanded, hmo, topK)
	}
	return results
}

// matchesHMO reports whether a chunk belongs to the user's HMO. An empty
// hmo matches everything so anonymous questions still get answers.
func matchesHMO(chunk models.KnowledgeChunk, hmo string) bool {
	if hmo == "" {
		return true
	}
	target := strings.ToLower(strings.TrimSpace(hmo))
	for _, field := range []string{chunk.HMO, chunk.HMOHebrew} {
		f := strings.ToLower(field)
		if f != "" && (strings.Contains(f, target) || strings.Contains(target, f)) {
			return true
		}
	}
	return false
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// keywordSearch ranks chunks by how many distinct query tokens appear in
// their text. It is the deterministic fallback for when no embeddings are
// available; equal scores keep corpus order.
func (kb *KnowledgeBase) keywordSearch(query, hmo string, topK int) []RetrievedChunk {
	queryTokens := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(query), -1) {
		queryTokens[tok] = true
	}

	var scored []RetrievedChunk
	for _, chunk := range kb.chunks {
		if !matchesHMO(chunk, hmo) {
			continue
		}
		text := strings.ToLower(chunk.Service + " " + chunk.HMO + " " + chunk.HMOHebrew + " " +
			chunk.Description + " " + chunk.Content)
		matched := make(map[string]bool)
		for _, tok := range tokenRe.FindAllString(text, -1) {
			if queryTokens[tok] {
				matched[tok] = true
			}
		}
		if len(matched) > 0 {
			scored = append(scored, RetrievedChunk{KnowledgeChunk: chunk, Score: float64(len(matched))})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

// FormatContext renders retrieval results as the context block handed to
// the chat model, with a localized header per source.
func FormatContext(results []RetrievedChunk, language string) string {
	if len(results) == 0 {
		if language == "english" {
			return "No relevant information was found in the knowledge base."
		}
		return "לא נמצא מידע רלוונטי במאגר הידע."
	}

	header := "=== מידע שאותר ממאגר הידע ==="
	if language == "english" {
		header = "=== Information Retrieved from Knowledge Base ==="
	}

	blocks := []string{header}
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("SOURCE %d: [%s - %s]\n%s",
			i+1, r.Service, r.HMOHebrew, r.Content))
	}
	return strings.Join(blocks, "\n\n")
}

package models

// HMO identifiers used across the knowledge base
const (
	HMOMaccabi  = "maccabi"
	HMOMeuhedet = "meuhedet"
	HMOClalit   = "clalit"
)

// HMOHebrewNames maps HMO identifiers to their Hebrew names
var HMOHebrewNames = map[string]string{
	HMOMaccabi:  "מכבי",
	HMOMeuhedet: "מאוחדת",
	HMOClalit:   "כללית",
}

// HMOHebrewToID maps Hebrew HMO names back to their identifiers
var HMOHebrewToID = map[string]string{
	"מכבי":   HMOMaccabi,
	"מאוחדת": HMOMeuhedet,
	"כללית":  HMOClalit,
}

// HMOOrder fixes the presentation order of the three HMOs
var HMOOrder = []string{HMOMaccabi, HMOMeuhedet, HMOClalit}

// KnowledgeChunk represents one HMO-specific slice of a service document
type KnowledgeChunk struct {
	ID          string `json:"chunk_id"`
	Service     string `json:"service"`
	HMO         string `json:"hmo"`
	HMOHebrew   string `json:"hmo_hebrew"`
	ChunkType   string `json:"chunk_type"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

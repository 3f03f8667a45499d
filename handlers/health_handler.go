package handlers

import (
	"net/http"
	"time"

	"medintake-backend/kb"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service readiness: whether the knowledge base is
// loaded and which Azure integrations are configured.
type HealthHandler struct {
	kb                    *kb.KnowledgeBase
	azureOpenAIConfigured bool
	docIntelConfigured    bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(knowledge *kb.KnowledgeBase, azureOpenAIConfigured, docIntelConfigured bool) *HealthHandler {
	return &HealthHandler{
		kb:                    knowledge,
		azureOpenAIConfigured: azureOpenAIConfigured,
		docIntelConfigured:    docIntelConfigured,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	payload := gin.H{
		"status":                           "ok",
		"timestamp":                        time.Now().UTC().Format(time.RFC3339),
		"knowledge_base_loaded":            h.kb != nil,
		"azure_openai_configured":          h.azureOpenAIConfigured,
		"document_intelligence_configured": h.docIntelConfigured,
	}

	if h.kb != nil {
		stats := h.kb.Stats()
		payload["total_chunks"] = stats.TotalChunks
		payload["total_services"] = stats.TotalServices
		payload["embeddings_ready"] = stats.EmbeddingsReady
	}

	c.JSON(http.StatusOK, payload)
}

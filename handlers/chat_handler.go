package handlers

import (
	"errors"
	"log"
	"net/http"

	"medintake-backend/kb"
	"medintake-backend/models"
	"medintake-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the HMO chatbot
type ChatHandler struct {
	chatService *service.ChatService
	kb          *kb.KnowledgeBase
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, knowledge *kb.KnowledgeBase) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		kb:          knowledge,
	}
}

// Chat handles POST /api/chat. The client carries the whole conversation
// state, so the handler is a thin translation layer around the service.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), req)
	if err != nil {
		log.Printf("Chat turn failed: %v", err)
		status, code, messageKey := http.StatusBadGateway, "CHAT_FAILED", "technical_error"
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			status, code, messageKey = http.StatusBadRequest, "EMPTY_MESSAGE", "invalid_input"
		case errors.Is(err, service.ErrInvalidPhase):
			status, code, messageKey = http.StatusBadRequest, "INVALID_PHASE", "invalid_input"
		case errors.Is(err, service.ErrChatUnavailable):
			status, code, messageKey = http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service_unavailable"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": service.LocalizedError(messageKey, req.Language),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// Services handles GET /api/chat/services
func (h *ChatHandler) Services(c *gin.Context) {
	if h.kb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "Knowledge base is not loaded",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"services": h.kb.ServiceNames(),
		},
	})
}

// Suggestions handles GET /api/chat/suggestions
func (h *ChatHandler) Suggestions(c *gin.Context) {
	language := c.DefaultQuery("language", "hebrew")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"questions": service.SuggestedQuestions(language),
		},
	})
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	h := NewHealthHandler(loadHandlerKB(t), true, false)
	r := gin.New()
	r.GET("/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["knowledge_base_loaded"])
	assert.Equal(t, true, body["azure_openai_configured"])
	assert.Equal(t, false, body["document_intelligence_configured"])
	assert.EqualValues(t, 18, body["total_chunks"])
	assert.EqualValues(t, 6, body["total_services"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthEndpointWithoutKB(t *testing.T) {
	h := NewHealthHandler(nil, false, false)
	r := gin.New()
	r.GET("/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["knowledge_base_loaded"])
	assert.NotContains(t, body, "total_chunks")
}

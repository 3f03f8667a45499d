package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminRouter(hash string) *gin.Engine {
	r := gin.New()
	admin := r.Group("/api", AdminAuth(hash))
	admin.GET("/extractions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("intake-admin-key"), bcrypt.DefaultCost)
	require.NoError(t, err)
	router := adminRouter(string(hash))

	req := httptest.NewRequest(http.MethodGet, "/api/extractions", nil)
	req.Header.Set("X-API-Key", "intake-admin-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/extractions", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/extractions", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthDisabled(t *testing.T) {
	router := adminRouter("")

	req := httptest.NewRequest(http.MethodGet, "/api/extractions", nil)
	req.Header.Set("X-API-Key", "anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ADMIN_DISABLED", body["error"].(map[string]any)["code"])
}

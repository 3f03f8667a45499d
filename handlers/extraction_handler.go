package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"medintake-backend/models"
	"medintake-backend/repository"
	"medintake-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExtractionHandler handles HTTP requests for the form extraction pipeline
type ExtractionHandler struct {
	extractionService *service.ExtractionService
	extractionRepo    *repository.ExtractionRepository
	maxFileSize       int64
	allowedMimeTypes  map[string]bool
}

// NewExtractionHandler creates a new extraction handler. The repository is
// optional; without it the history endpoints report persistence as disabled.
func NewExtractionHandler(extractionService *service.ExtractionService, extractionRepo *repository.ExtractionRepository) *ExtractionHandler {
	return &ExtractionHandler{
		extractionService: extractionService,
		extractionRepo:    extractionRepo,
		maxFileSize:       10 * 1024 * 1024, // 10MB
		allowedMimeTypes: map[string]bool{
			"application/pdf": true,
			"image/jpeg":      true,
			"image/png":       true,
			"image/tiff":      true,
		},
	}
}

// ProcessForm handles POST /api/extractions
func (h *ExtractionHandler) ProcessForm(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	mimeType := documentMimeType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if !h.allowedMimeTypes[mimeType] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, JPG, PNG, TIFF",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.extractionService.ProcessForm(c.Request.Context(), service.ProcessFormRequest{
		FileName: fileHeader.Filename,
		MimeType: mimeType,
		Language: c.PostForm("language"),
		Data:     data,
	})
	if err != nil {
		status, code := http.StatusInternalServerError, "PROCESSING_FAILED"
		switch {
		case errors.Is(err, service.ErrOCRFailed):
			status, code = http.StatusBadGateway, "OCR_FAILED"
		case errors.Is(err, service.ErrSchemaParse):
			status, code = http.StatusBadGateway, "SCHEMA_PARSE_FAILED"
		case errors.Is(err, service.ErrExtractionFailed):
			status, code = http.StatusBadGateway, "EXTRACTION_FAILED"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ValidateRecord handles POST /api/validations. It re-runs the validation
// engine on an already-extracted record, for manual corrections.
func (h *ExtractionHandler) ValidateRecord(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A JSON record body is required",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.extractionService.ValidateRecord(data),
	})
}

// GetExtraction handles GET /api/extractions/:id
func (h *ExtractionHandler) GetExtraction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid extraction ID format",
			},
		})
		return
	}

	if h.extractionRepo == nil {
		c.JSON(http.StatusServiceUnavailable, persistenceDisabled())
		return
	}

	extraction, err := h.extractionRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Extraction not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    extraction,
	})
}

// ListExtractions handles GET /api/extractions
func (h *ExtractionHandler) ListExtractions(c *gin.Context) {
	if h.extractionRepo == nil {
		c.JSON(http.StatusServiceUnavailable, persistenceDisabled())
		return
	}

	status := models.ExtractionStatus(c.Query("status"))
	if status != "" && status != models.ExtractionCompleted && status != models.ExtractionFailed {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "status must be completed or failed",
			},
		})
		return
	}

	limit, offset := listBounds(c)
	extractions, err := h.extractionRepo.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"extractions": extractions,
			"limit":       limit,
			"offset":      offset,
		},
	})
}

func persistenceDisabled() gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    "PERSISTENCE_DISABLED",
			"message": "No database is configured",
		},
	}
}

func listBounds(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// documentMimeType trusts a concrete multipart content type and falls back
// to the file extension when the client sent nothing usable.
func documentMimeType(header, filename string) string {
	header = strings.TrimSpace(strings.ToLower(header))
	if header != "" && header != "application/octet-stream" {
		if i := strings.IndexByte(header, ';'); i >= 0 {
			header = strings.TrimSpace(header[:i])
		}
		return header
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

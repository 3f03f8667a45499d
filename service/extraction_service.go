package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"medintake-backend/azure"
	"medintake-backend/models"
	"medintake-backend/repository"
	"medintake-backend/storage"
	"medintake-backend/validation"

	"github.com/google/uuid"
)

var (
	ErrOCRFailed        = errors.New("document text recognition failed")
	ErrExtractionFailed = errors.New("field extraction failed")
	ErrSchemaParse      = errors.New("extraction output is not a JSON object")
)

// ocrClient is the slice of the Document Intelligence client the pipeline
// needs.
type ocrClient interface {
	AnalyzeLayout(ctx context.Context, document []byte) (*azure.AnalyzeResult, error)
}

// llmClient is the slice of the OpenAI client the pipeline needs.
type llmClient interface {
	ChatCompletion(ctx context.Context, req azure.ChatCompletionRequest) (string, error)
}

// ExtractionService runs the synchronous intake pipeline: OCR, pre-clean,
// language detection, field extraction, validation, then optional
// persistence. Document storage and repositories are optional so the
// pipeline can run stateless.
type ExtractionService struct {
	ocr            ocrClient
	llm            llmClient
	store          storage.Storage
	docRepo        *repository.DocumentRepository
	extractionRepo *repository.ExtractionRepository
}

// ExtractionServiceOption is a functional option for ExtractionService
type ExtractionServiceOption func(*ExtractionService)

// ExtractionWithOCR sets the Document Intelligence client
func ExtractionWithOCR(client ocrClient) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.ocr = client
	}
}

// ExtractionWithLLM sets the Azure OpenAI client
func ExtractionWithLLM(client llmClient) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.llm = client
	}
}

// ExtractionWithStorage sets the document archive
func ExtractionWithStorage(store storage.Storage) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.store = store
	}
}

// ExtractionWithDocumentRepository sets the document repository
func ExtractionWithDocumentRepository(repo *repository.DocumentRepository) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.docRepo = repo
	}
}

// ExtractionWithExtractionRepository sets the extraction repository
func ExtractionWithExtractionRepository(repo *repository.ExtractionRepository) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.extractionRepo = repo
	}
}

// NewExtractionService creates a new extraction service
func NewExtractionService(opts ...ExtractionServiceOption) *ExtractionService {
	s := &ExtractionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessFormRequest is one uploaded form.
type ProcessFormRequest struct {
	FileName string
	MimeType string
	Language string // optional hint, skips detection
	Data     []byte
}

// ProcessFormResult is the pipeline output. IDs are set only when
// persistence is configured.
type ProcessFormResult struct {
	DocumentID    *uuid.UUID              `json:"document_id,omitempty"`
	ExtractionID  *uuid.UUID              `json:"extraction_id,omitempty"`
	Language      string                  `json:"language"`
	OCRCharacters int                     `json:"ocr_characters"`
	Result        models.ValidationResult `json:"result"`
}

// ProcessForm runs the whole pipeline for one upload.
func (s *ExtractionService) ProcessForm(ctx context.Context, req ProcessFormRequest) (*ProcessFormResult, error) {
	doc := s.persistDocument(ctx, req)

	rawText, locales, err := s.recognizeText(ctx, req)
	if err != nil {
		s.recordFailure(ctx, doc, "", err)
		return nil, err
	}

	cleaned := cleanOCRText(rawText)
	if cleaned == "" {
		err := fmt.Errorf("%w: no text recognized in %s", ErrOCRFailed, req.FileName)
		s.recordFailure(ctx, doc, "", err)
		return nil, err
	}

	language := normalizeLanguage(req.Language)
	if req.Language == "" {
		language = s.detectLanguage(ctx, locales, cleaned)
	}

	recordJSON, err := s.extractFields(ctx, cleaned)
	if err != nil {
		s.recordFailure(ctx, doc, language, err)
		return nil, err
	}

	result := validation.ValidateRaw([]byte(recordJSON))

	out := &ProcessFormResult{
		Language:      language,
		OCRCharacters: len([]rune(rawText)),
		Result:        result,
	}
	if doc != nil {
		out.DocumentID = &doc.ID
	}
	if extraction := s.recordSuccess(ctx, doc, out); extraction != nil {
		out.ExtractionID = &extraction.ID
	}
	return out, nil
}

// ValidateRecord runs the validation engine on an already-extracted record.
func (s *ExtractionService) ValidateRecord(raw []byte) models.ValidationResult {
	return validation.ValidateRaw(raw)
}

// recognizeText produces the document text: Document Intelligence when
// configured, the PDF text layer otherwise.
func (s *ExtractionService) recognizeText(ctx context.Context, req ProcessFormRequest) (string, []azure.DetectedLanguage, error) {
	if s.ocr != nil {
		result, err := s.ocr.AnalyzeLayout(ctx, req.Data)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
		}
		return result.Content, result.Languages, nil
	}

	if req.MimeType != "application/pdf" {
		return "", nil, fmt.Errorf("%w: document intelligence is not configured and %s uploads have no local fallback",
			ErrOCRFailed, req.MimeType)
	}
	log.Printf("Document intelligence not configured, extracting PDF text layer for %s", req.FileName)
	text, err := pdfPlainText(req.Data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	return text, nil, nil
}

// extractFields asks the model for the form JSON and isolates the object.
func (s *ExtractionService) extractFields(ctx context.Context, cleaned string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: azure openai is not configured", ErrExtractionFailed)
	}

	answer, err := s.llm.ChatCompletion(ctx, azure.ChatCompletionRequest{
		Messages: []azure.ChatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: extractionUserPrompt(cleaned)},
		},
		Temperature: 0,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	object, ok := extractJSON(answer)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSchemaParse, truncateForLog(answer))
	}
	return object, nil
}

// persistDocument archives the upload when storage and the document
// repository are wired. Failures degrade to stateless processing.
func (s *ExtractionService) persistDocument(ctx context.Context, req ProcessFormRequest) *models.Document {
	if s.store == nil || s.docRepo == nil {
		return nil
	}

	doc := &models.Document{
		ID:       uuid.New(),
		FileName: req.FileName,
		MimeType: req.MimeType,
		Size:     int64(len(req.Data)),
	}

	storagePath, err := s.store.Upload(ctx, doc.ID, req.FileName, bytes.NewReader(req.Data))
	if err != nil {
		log.Printf("Document upload failed, continuing stateless: %v", err)
		return nil
	}
	doc.StoragePath = storagePath

	if err := s.docRepo.Create(ctx, doc); err != nil {
		log.Printf("Document insert failed, removing uploaded object: %v", err)
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			log.Printf("Cleanup of %s failed: %v", storagePath, delErr)
		}
		return nil
	}
	return doc
}

func (s *ExtractionService) recordSuccess(ctx context.Context, doc *models.Document, out *ProcessFormResult) *models.ExtractionRecord {
	if s.extractionRepo == nil || doc == nil {
		return nil
	}
	record := &models.ExtractionRecord{
		ID:            uuid.New(),
		DocumentID:    doc.ID,
		Language:      out.Language,
		OCRCharacters: out.OCRCharacters,
		Result:        out.Result,
		Status:        models.ExtractionCompleted,
	}
	if err := s.extractionRepo.Create(ctx, record); err != nil {
		log.Printf("Extraction insert failed: %v", err)
		return nil
	}
	return record
}

func (s *ExtractionService) recordFailure(ctx context.Context, doc *models.Document, language string, cause error) {
	if s.extractionRepo == nil || doc == nil {
		return
	}
	message := cause.Error()
	record := &models.ExtractionRecord{
		ID:           uuid.New(),
		DocumentID:   doc.ID,
		Language:     language,
		Status:       models.ExtractionFailed,
		ErrorMessage: &message,
	}
	if err := s.extractionRepo.Create(ctx, record); err != nil {
		log.Printf("Failed-extraction insert failed: %v", err)
	}
}

func truncateForLog(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}

package service

import (
	"context"
	"log"
	"strings"

	"medintake-backend/azure"
)

const (
	languageHebrew  = "hebrew"
	languageEnglish = "english"
)

func normalizeLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "english", "en":
		return languageEnglish
	default:
		return languageHebrew
	}
}

// languageFromLocales maps Document Intelligence locales to a pipeline
// language. Hebrew used the legacy "iw" code for years, so both spellings
// count.
func languageFromLocales(locales []azure.DetectedLanguage) string {
	var best azure.DetectedLanguage
	for _, l := range locales {
		if l.Confidence > best.Confidence {
			best = l
		}
	}
	locale := strings.ToLower(best.Locale)
	switch {
	case locale == "he" || strings.HasPrefix(locale, "he-") || strings.HasPrefix(locale, "iw"):
		return languageHebrew
	case strings.HasPrefix(locale, "en"):
		return languageEnglish
	default:
		return ""
	}
}

const languageSampleLimit = 1000

// detectLanguage decides the form language: the OCR locale when it is
// conclusive, otherwise a one-word model call, hebrew as the last resort.
func (s *ExtractionService) detectLanguage(ctx context.Context, locales []azure.DetectedLanguage, text string) string {
	if lang := languageFromLocales(locales); lang != "" {
		return lang
	}
	if s.llm == nil {
		return languageHebrew
	}

	sample := text
	if runes := []rune(sample); len(runes) > languageSampleLimit {
		sample = string(runes[:languageSampleLimit])
	}

	answer, err := s.llm.ChatCompletion(ctx, azure.ChatCompletionRequest{
		Messages: []azure.ChatMessage{
			{Role: "system", Content: languageDetectSystemPrompt},
			{Role: "user", Content: languageDetectUserPrompt(sample)},
		},
		Temperature: 0.1,
		MaxTokens:   5,
	})
	if err != nil {
		log.Printf("Language detection call failed, defaulting to hebrew: %v", err)
		return languageHebrew
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if strings.Contains(answer, "english") {
		return languageEnglish
	}
	return languageHebrew
}

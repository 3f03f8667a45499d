package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"medintake-backend/azure"
	"medintake-backend/kb"
	"medintake-backend/models"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrInvalidPhase    = errors.New("invalid chat phase")
	ErrChatUnavailable = errors.New("chat service is unavailable")
)

// historyWindow caps how many past turns ride along on each model call.
const historyWindow = 12

// ChatService drives the stateless HMO chatbot. The client carries the
// whole conversation state (profile, phase, history) in every request.
type ChatService struct {
	llm  llmClient
	kb   *kb.KnowledgeBase
	topK int
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithLLM sets the Azure OpenAI client
func ChatWithLLM(client llmClient) ChatServiceOption {
	return func(s *ChatService) {
		s.llm = client
	}
}

// ChatWithKnowledgeBase sets the HMO services knowledge base
func ChatWithKnowledgeBase(knowledge *kb.KnowledgeBase) ChatServiceOption {
	return func(s *ChatService) {
		s.kb = knowledge
	}
}

// ChatWithTopK sets how many chunks retrieval returns
func ChatWithTopK(topK int) ChatServiceOption {
	return func(s *ChatService) {
		s.topK = topK
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{topK: kb.DefaultTopK}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers one turn. Collection phases fill the user profile;
// the qa phase answers from the knowledge base.
func (s *ChatService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	message := sanitizeInput(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	phase := req.Phase
	if phase == "" {
		phase = models.PhaseInfoCollection
	}
	if !models.ValidPhase(phase) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhase, req.Phase)
	}

	language := normalizeLanguage(req.Language)
	profile := normalizeProfile(req.UserProfile)
	history := trimHistory(req.History)

	if phase == models.PhaseQA {
		return s.answerQuestion(ctx, language, profile, history, message)
	}
	return s.collectInfo(ctx, phase, language, profile, history, message)
}

// collectInfo updates the profile from the conversation and either asks for
// the next missing detail or hands over to the qa phase.
func (s *ChatService) collectInfo(ctx context.Context, phase models.ChatPhase, language string, profile models.UserProfile, history []models.ChatMessage, message string) (*models.ChatResponse, error) {
	extracted, err := s.extractProfile(ctx, profile, history, message)
	if err != nil {
		log.Printf("Profile extraction failed, keeping current profile: %v", err)
	} else {
		profile = normalizeProfile(mergeProfiles(profile, extracted))
	}

	missing := MissingProfileFields(profile)
	if len(missing) == 0 {
		return &models.ChatResponse{
			Response:           transitionMessage(language, profile.Name),
			Phase:              models.PhaseQA,
			Language:           language,
			UserProfile:        profile,
			SuggestedQuestions: SuggestedQuestions(language),
		}, nil
	}

	response, err := s.completeChat(ctx, collectionSystemPrompt(language, missing), history, message, 0.3, 800)
	if err != nil {
		log.Printf("Collection response failed, using static question: %v", err)
		response = collectionFallbackQuestion(language, missing)
	}

	return &models.ChatResponse{
		Response:    response,
		Phase:       phase,
		Language:    language,
		UserProfile: profile,
	}, nil
}

// answerQuestion retrieves HMO-specific context and answers from it.
func (s *ChatService) answerQuestion(ctx context.Context, language string, profile models.UserProfile, history []models.ChatMessage, message string) (*models.ChatResponse, error) {
	if s.kb == nil {
		return nil, fmt.Errorf("%w: knowledge base is not loaded", ErrChatUnavailable)
	}

	results := s.kb.Search(ctx, message, profile.HMOName, s.topK)
	contextBlock := kb.FormatContext(results, language)

	response, err := s.completeChat(ctx, qaSystemPrompt(language, profile, contextBlock), history, message, 0.4, 1000)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.ID)
	}

	return &models.ChatResponse{
		Response:    response,
		Phase:       models.PhaseQA,
		Language:    language,
		UserProfile: profile,
		Sources:     sources,
	}, nil
}

// extractProfile asks the model for an updated profile JSON.
func (s *ChatService) extractProfile(ctx context.Context, profile models.UserProfile, history []models.ChatMessage, message string) (models.UserProfile, error) {
	if s.llm == nil {
		return models.UserProfile{}, fmt.Errorf("%w: azure openai is not configured", ErrChatUnavailable)
	}

	answer, err := s.llm.ChatCompletion(ctx, azure.ChatCompletionRequest{
		Messages: []azure.ChatMessage{
			{Role: "system", Content: profileExtractSystemPrompt},
			{Role: "user", Content: profileExtractUserPrompt(profile, history, message)},
		},
		Temperature: 0.1,
		MaxTokens:   500,
		JSONMode:    true,
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	extracted, err := parseProfileJSON(answer)
	if err != nil {
		return models.UserProfile{}, err
	}
	return normalizeProfile(extracted), nil
}

// completeChat sends system prompt + history + user turn to the model.
func (s *ChatService) completeChat(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string, temperature float64, maxTokens int) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: azure openai is not configured", ErrChatUnavailable)
	}

	messages := make([]azure.ChatMessage, 0, len(history)+2)
	messages = append(messages, azure.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			continue
		}
		messages = append(messages, azure.ChatMessage{Role: turn.Role, Content: sanitizeInput(turn.Content)})
	}
	messages = append(messages, azure.ChatMessage{Role: models.RoleUser, Content: message})

	return s.llm.ChatCompletion(ctx, azure.ChatCompletionRequest{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}

func trimHistory(history []models.ChatMessage) []models.ChatMessage {
	if len(history) <= historyWindow {
		return history
	}
	return history[len(history)-historyWindow:]
}

var (
	scriptRe     = regexp.MustCompile(`(?is)<script.*?</script>`)
	scriptTagRe  = regexp.MustCompile(`(?i)</?script[^>]*>`)
	javascriptRe = regexp.MustCompile(`(?i)javascript:`)
)

const maxInputRunes = 1000

// sanitizeInput strips script injection attempts and bounds the length of
// anything that reaches a prompt.
func sanitizeInput(input string) string {
	input = scriptRe.ReplaceAllString(input, "")
	input = scriptTagRe.ReplaceAllString(input, "")
	input = javascriptRe.ReplaceAllString(input, "")
	input = strings.TrimSpace(input)

	if runes := []rune(input); len(runes) > maxInputRunes {
		input = string(runes[:maxInputRunes])
	}
	return input
}

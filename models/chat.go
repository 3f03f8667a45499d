package models

// ChatPhase represents the stage of a chatbot conversation
type ChatPhase string

const (
	PhaseInfoCollection ChatPhase = "info_collection"
	PhaseValidation     ChatPhase = "validation"
	PhaseQA             ChatPhase = "qa"
)

// ValidPhase reports whether p is a recognized conversation phase
func ValidPhase(p ChatPhase) bool {
	switch p {
	case PhaseInfoCollection, PhaseValidation, PhaseQA:
		return true
	}
	return false
}

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage represents one turn of a conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserProfile represents the member details collected before QA.
// The server is stateless; the client carries the profile between turns.
type UserProfile struct {
	Name          string `json:"name"`
	IDNumber      string `json:"id_number"`
	Gender        string `json:"gender"`
	Age           *int   `json:"age,omitempty"`
	HMOName       string `json:"hmo_name"`
	HMOCardNumber string `json:"hmo_card_number"`
	InsuranceTier string `json:"insurance_tier"`
}

// ChatRequest represents a single chatbot turn from the client
type ChatRequest struct {
	Message     string        `json:"message" binding:"required"`
	Phase       ChatPhase     `json:"phase"`
	Language    string        `json:"language"`
	UserProfile UserProfile   `json:"user_profile"`
	History     []ChatMessage `json:"history"`
}

// ChatResponse represents the server's reply for one turn
type ChatResponse struct {
	Response           string      `json:"response"`
	Phase              ChatPhase   `json:"phase"`
	Language           string      `json:"language"`
	UserProfile        UserProfile `json:"user_profile"`
	Sources            []string    `json:"sources,omitempty"`
	SuggestedQuestions []string    `json:"suggested_questions,omitempty"`
}

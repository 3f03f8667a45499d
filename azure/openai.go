package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultOpenAIAPIVersion = "2024-02-01"

// OpenAIConfig wires an OpenAIClient to one Azure OpenAI resource with a
// chat deployment and an embedding deployment.
type OpenAIConfig struct {
	Endpoint            string
	APIKey              string
	ChatDeployment      string
	EmbeddingDeployment string
	APIVersion          string
	Retry               RetryConfig
}

// OpenAIClient calls the Azure OpenAI REST API directly. Chat completions
// get a long timeout because extraction prompts carry whole documents;
// embeddings stay snappy.
type OpenAIClient struct {
	endpoint            string
	apiKey              string
	chatDeployment      string
	embeddingDeployment string
	apiVersion          string
	retry               RetryConfig
	chatHTTP            *http.Client
	embedHTTP           *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultOpenAIAPIVersion
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &OpenAIClient{
		endpoint:            strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:              cfg.APIKey,
		chatDeployment:      cfg.ChatDeployment,
		embeddingDeployment: cfg.EmbeddingDeployment,
		apiVersion:          cfg.APIVersion,
		retry:               cfg.Retry,
		chatHTTP:            &http.Client{Timeout: 120 * time.Second},
		embedHTTP:           &http.Client{Timeout: 30 * time.Second},
	}
}

// ChatMessage is one turn in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest carries the parameters the pipeline actually
// varies; everything else keeps the API default.
type ChatCompletionRequest struct {
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

type chatCompletionPayload struct {
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// ChatCompletion returns the assistant text of the first choice.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error) {
	payload := chatCompletionPayload{
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := c.deploymentURL(c.chatDeployment, "chat/completions")
	body, err := doJSON(ctx, c.chatHTTP, c.retry, "azure openai chat", func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint, jsonData)
	})
	if err != nil {
		return "", err
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for one input. It satisfies the
// knowledge base Embedder interface.
func (c *OpenAIClient) Embed(ctx context.Context, input string) ([]float64, error) {
	vecs, err := c.EmbedBatch(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds inputs in one call, returned in input order.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	jsonData, err := json.Marshal(map[string]any{"input": inputs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	endpoint := c.deploymentURL(c.embeddingDeployment, "embeddings")
	body, err := doJSON(ctx, c.embedHTTP, c.retry, "azure openai embeddings", func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint, jsonData)
	})
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(apiResp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(apiResp.Data), len(inputs))
	}

	sort.Slice(apiResp.Data, func(i, j int) bool { return apiResp.Data[i].Index < apiResp.Data[j].Index })
	vecs := make([][]float64, len(apiResp.Data))
	for i, d := range apiResp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

func (c *OpenAIClient) deploymentURL(deployment, operation string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		c.endpoint, url.PathEscape(deployment), operation, url.QueryEscape(c.apiVersion))
}

func (c *OpenAIClient) newRequest(ctx context.Context, endpoint string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)
	return req, nil
}

package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultDocIntelAPIVersion = "2024-07-31-preview"
	analyzePollInterval       = 2 * time.Second
	analyzeMaxWait            = 3 * time.Minute
)

// DocIntelConfig wires a DocIntelClient to an Azure Document Intelligence
// resource.
type DocIntelConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	Retry        RetryConfig
	PollInterval time.Duration
}

// DocIntelClient runs OCR through the prebuilt-layout model. Analysis is
// asynchronous on the Azure side: submit, then poll the operation until it
// settles.
type DocIntelClient struct {
	endpoint     string
	apiKey       string
	apiVersion   string
	retry        RetryConfig
	pollInterval time.Duration
	http         *http.Client
}

func NewDocIntelClient(cfg DocIntelConfig) *DocIntelClient {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultDocIntelAPIVersion
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = analyzePollInterval
	}
	return &DocIntelClient{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:       cfg.APIKey,
		apiVersion:   cfg.APIVersion,
		retry:        cfg.Retry,
		pollInterval: cfg.PollInterval,
		http:         &http.Client{Timeout: 60 * time.Second},
	}
}

// DetectedLanguage is one language the layout model saw in the document.
type DetectedLanguage struct {
	Locale     string  `json:"locale"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeResult is the OCR output: markdown content plus the detected
// languages ordered by span coverage.
type AnalyzeResult struct {
	Content   string             `json:"content"`
	Languages []DetectedLanguage `json:"languages"`
}

// AnalyzeLayout submits a document to prebuilt-layout with markdown output
// and waits for the result.
func (c *DocIntelClient) AnalyzeLayout(ctx context.Context, document []byte) (*AnalyzeResult, error) {
	operationURL, err := c.submit(ctx, document)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, operationURL)
}

func (c *DocIntelClient) submit(ctx context.Context, document []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/documentintelligence/documentModels/prebuilt-layout:analyze?api-version=%s&outputContentFormat=markdown",
		c.endpoint, c.apiVersion)

	var lastErr error
	backoff := c.retry.InitialBackoff
	for attempt := 0; attempt < c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
			if backoff > c.retry.MaxBackoff {
				backoff = c.retry.MaxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(document))
		if err != nil {
			return "", fmt.Errorf("failed to create analyze request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = fmt.Errorf("document intelligence request failed: %w", err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusAccepted {
			location := resp.Header.Get("Operation-Location")
			if location == "" {
				return "", fmt.Errorf("analyze accepted without an Operation-Location header")
			}
			return location, nil
		}

		svcErr := newServiceError("document intelligence", resp.StatusCode, errorCode(body), truncateBody(body))
		if !svcErr.Retryable {
			return "", svcErr
		}
		lastErr = svcErr
	}

	return "", fmt.Errorf("document intelligence analyze failed after %d attempts: %w", c.retry.MaxRetries, lastErr)
}

func (c *DocIntelClient) poll(ctx context.Context, operationURL string) (*AnalyzeResult, error) {
	deadline := time.Now().Add(analyzeMaxWait)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("polling analyze operation failed: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read poll response: %w", readErr)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, newServiceError("document intelligence", resp.StatusCode, errorCode(body), truncateBody(body))
		}

		var status struct {
			Status        string `json:"status"`
			AnalyzeResult *struct {
				Content   string             `json:"content"`
				Languages []DetectedLanguage `json:"languages"`
			} `json:"analyzeResult"`
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, fmt.Errorf("failed to decode poll response: %w", err)
		}

		switch status.Status {
		case "succeeded":
			if status.AnalyzeResult == nil || status.AnalyzeResult.Content == "" {
				return nil, fmt.Errorf("analysis succeeded but returned no content")
			}
			return &AnalyzeResult{
				Content:   status.AnalyzeResult.Content,
				Languages: status.AnalyzeResult.Languages,
			}, nil
		case "failed":
			return nil, fmt.Errorf("document analysis failed: %s %s", status.Error.Code, status.Error.Message)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("document analysis did not finish within %s", analyzeMaxWait)
		}
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

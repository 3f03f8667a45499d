package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig bounds the retry loop shared by both clients.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig retries transient failures three times with
// exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// retryAfterCap bounds how long a server-suggested Retry-After can stall us.
const retryAfterCap = 5 * time.Second

// doJSON sends the request body, retrying transient failures, and returns
// the response body of the first 2xx answer. buildReq is called once per
// attempt because request bodies cannot be replayed.
func doJSON(ctx context.Context, client *http.Client, cfg RetryConfig, service string, buildReq func() (*http.Request, error)) ([]byte, error) {
	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}

		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%s request failed: %w", service, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read %s response: %w", service, readErr)
				continue
			}
			return body, nil
		}

		svcErr := newServiceError(service, resp.StatusCode, errorCode(body), truncateBody(body))
		if !svcErr.Retryable {
			return nil, svcErr
		}
		lastErr = svcErr

		// A throttled server may say how long to wait; honor it within reason.
		if wait := retryAfter(resp); wait > 0 && attempt < cfg.MaxRetries-1 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", service, cfg.MaxRetries, lastErr)
}

func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	wait := time.Duration(seconds) * time.Second
	if wait > retryAfterCap {
		wait = retryAfterCap
	}
	return wait
}

// errorCode digs the machine-readable code out of an Azure error payload.
func errorCode(body []byte) string {
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Code
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(bytes.TrimSpace(body))
}

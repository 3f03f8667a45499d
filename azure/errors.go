// Package azure holds thin HTTP clients for the two Azure services the
// intake pipeline depends on: Azure OpenAI (chat + embeddings) and Azure
// Document Intelligence (OCR). Both clients retry transient failures and
// surface typed errors so callers can tell quota pressure from bad input.
package azure

import (
	"errors"
	"fmt"
)

// ServiceError is a non-2xx answer from an Azure endpoint.
type ServiceError struct {
	Service    string
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error %d (%s): %s", e.Service, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error %d: %s", e.Service, e.StatusCode, e.Message)
}

// newServiceError classifies a status code. Throttling and server faults
// are retryable; auth and malformed-request failures are not.
func newServiceError(service string, status int, code, message string) *ServiceError {
	return &ServiceError{
		Service:    service,
		StatusCode: status,
		Code:       code,
		Message:    message,
		Retryable:  status == 429 || status >= 500,
	}
}

// IsRetryable reports whether err is a ServiceError worth retrying.
func IsRetryable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable
}

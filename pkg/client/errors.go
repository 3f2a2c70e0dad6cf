package client

import (
	"errors"
	"fmt"

	"github.com/Godevs04/taatom-admin-console/pkg/api"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassTransport represents network and timeout errors.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassDecode represents mis-shaped or undecodable responses.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError represents a backend request failure with classification context.
// 304 responses and context cancellation are not errors and never produce
// one.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("backend %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP error status for observability and
// handling.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// ClassOf returns the error class of any error from the fetch or mutation
// path: the APIError's own class, decode for response shape mismatches, and
// transport for everything else.
func ClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	if errors.Is(err, api.ErrShape) {
		return ErrorClassDecode
	}
	return ErrorClassTransport
}

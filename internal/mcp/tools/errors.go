package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/usestring/algolia-codegen/pkg/algolia"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeAlgoliaError = "ALGOLIA_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeTimeout      = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapAlgoliaError converts an error from the Algolia client to a coded error.
func WrapAlgoliaError(err error) error {
	if err == nil {
		return nil
	}

	coded := &CodedError{Code: ErrCodeAlgoliaError, Message: err.Error(), Cause: err}

	var apiErr *algolia.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		coded.Message = apiErr.Message
		if apiErr.StatusCode == http.StatusNotFound {
			coded.Code = ErrCodeNotFound
		}
	case errors.Is(err, algolia.ErrNoResults), errors.Is(err, algolia.ErrNoHits):
		coded.Code = ErrCodeNotFound
	case errors.Is(err, algolia.ErrMissingCredentials), errors.Is(err, algolia.ErrNoReadHosts):
		coded.Code = ErrCodeInvalidInput
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		coded.Code = ErrCodeTimeout
		coded.Message = "request timed out"
	}

	slog.Warn("algolia API error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

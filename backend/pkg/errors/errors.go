package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfig represents missing or invalid configuration
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeAuth represents a rejected credential exchange
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeValidation represents caller-supplied parameters failing their schema
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeFetch represents an upstream request that failed or returned a non-success status
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeRateLimit represents provider throttling
	ErrorTypeRateLimit ErrorType = "rate_limit"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind reports the error category
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Configuration Errors

// ConfigurationError is returned when required configuration is absent.
// It is fatal for the call and never retried.
type ConfigurationError struct {
	*BaseError
	Fields []string
}

func NewConfigurationError(fields ...string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", strings.Join(fields, ", ")), nil),
		Fields:    fields,
	}
}

// Authentication Errors

// AuthenticationError is returned when a token exchange is rejected
type AuthenticationError struct {
	*BaseError
	Status int
	Body   string
}

func NewAuthenticationError(provider string, status int, body string) *AuthenticationError {
	return &AuthenticationError{
		BaseError: NewBaseError(ErrorTypeAuth, fmt.Sprintf("%s token exchange failed: %d - %s", provider, status, body), nil),
		Status:    status,
		Body:      body,
	}
}

// Validation Errors

// ValidationError is returned when tool parameters fail their schema.
// Fields maps the offending JSON field to its violation.
type ValidationError struct {
	*BaseError
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, fields[name]))
	}

	return &ValidationError{
		BaseError: NewBaseError(ErrorTypeValidation, "invalid parameters: "+strings.Join(parts, "; "), nil),
		Fields:    fields,
	}
}

// Fetch Errors

// FetchError is returned when an upstream request fails or returns a non-success status.
// Status is zero when no response was received.
type FetchError struct {
	*BaseError
	Provider string
	URL      string
	Status   int
}

func NewFetchError(provider, url string, status int, err error) *FetchError {
	msg := fmt.Sprintf("%s request failed: %s", provider, url)
	if status != 0 {
		msg = fmt.Sprintf("%s request failed with status %d: %s", provider, status, url)
	}
	return &FetchError{
		BaseError: NewBaseError(ErrorTypeFetch, msg, err),
		Provider:  provider,
		URL:       url,
		Status:    status,
	}
}

// Rate Limit Errors

// RateLimitError is returned when a provider signals throttling
type RateLimitError struct {
	*BaseError
	Provider   string
	RetryAfter time.Duration
}

func NewRateLimitError(provider string, retryAfter time.Duration) *RateLimitError {
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &RateLimitError{
		BaseError:  NewBaseError(ErrorTypeRateLimit, fmt.Sprintf("%s rate limit reached, retry in %s", provider, retryAfter.Round(time.Second)), nil),
		Provider:   provider,
		RetryAfter: retryAfter,
	}
}

// Helper functions

// IsErrorType checks if an error (or anything it wraps) is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(interface{ Kind() ErrorType }); ok && typed.Kind() == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsFatal reports whether an error must surface to the caller instead of
// being turned into a textual tool result
func IsFatal(err error) bool {
	return IsErrorType(err, ErrorTypeConfig) || IsErrorType(err, ErrorTypeValidation)
}

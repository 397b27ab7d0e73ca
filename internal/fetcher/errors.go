package fetcher

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that ended a refresh cycle
type ErrorType string

const (
	// ErrorTypeTransport indicates a connection-level failure or timeout
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeHTTPStatus indicates the server answered with a non-2xx status
	ErrorTypeHTTPStatus ErrorType = "http_status"
	// ErrorTypeUnexpectedRedirect indicates the final URL failed the host/path check
	ErrorTypeUnexpectedRedirect ErrorType = "unexpected_redirect"
	// ErrorTypeParseFailed indicates the document was fetched but no strategy matched
	ErrorTypeParseFailed ErrorType = "parse_failed"
	// ErrorTypeUnexpected covers everything else, including recovered panics
	ErrorTypeUnexpected ErrorType = "unexpected"
)

// FetchError represents a structured error from a refresh cycle
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	URL        string
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Diagnostic is the short form kept next to the cached table.
func (e *FetchError) Diagnostic() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// NewTransportError creates a transport error
func NewTransportError(url string, cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTransport,
		Retryable: true,
		URL:       url,
		Message:   "request failed",
		Cause:     cause,
	}
}

// NewHTTPStatusError creates an HTTP status error
func NewHTTPStatusError(url string, statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeHTTPStatus,
		StatusCode: statusCode,
		URL:        url,
		Message:    fmt.Sprintf("unexpected status code %d", statusCode),
	}
}

// NewUnexpectedRedirectError creates an error for a final URL outside the trusted host/path
func NewUnexpectedRedirectError(url string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeUnexpectedRedirect,
		URL:     url,
		Message: fmt.Sprintf("final url %s is not the rates page", url),
	}
}

// NewParseFailedError creates a parse failure
func NewParseFailedError(url string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeParseFailed,
		URL:     url,
		Message: "no prices found in document",
	}
}

// NewUnexpectedError creates an unexpected error
func NewUnexpectedError(url string, cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeUnexpected,
		URL:     url,
		Message: "unexpected failure",
		Cause:   cause,
	}
}

// AsFetchError classifies err, wrapping anything unknown as unexpected.
func AsFetchError(url string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NewUnexpectedError(url, err)
}

// TypeOf returns the ErrorType of err, or "" when err is nil.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnexpected
}

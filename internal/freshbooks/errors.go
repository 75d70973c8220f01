package freshbooks

import (
	"fmt"
)

// AuthError indicates expired or invalid credentials that a token refresh
// could not recover.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "authentication failed."
	}
	return fmt.Sprintf("%s Run 'fb auth login' to re-authenticate.", msg)
}

// RateLimitError is a 429 response. RetryAfter is the server's hint in
// seconds; no retry is attempted at this layer.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded. Retry after %d seconds.", e.RetryAfter)
}

// NetworkError wraps connectivity and timeout failures from the transport.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is any other non-success response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
}

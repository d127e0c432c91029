package request

import "fmt"

// TransportError reports a failure to complete the HTTP exchange: connection
// refused, DNS failure, context cancellation and the like.
type TransportError struct {
	Method Method
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not valid JSON.
type ParseError struct {
	Method     Method
	URL        string
	StatusCode int
	Snippet    string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s: decode response (status %d): %v", e.Method, e.URL, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodeError reports parameters that could not be serialized to JSON.
type EncodeError struct {
	Method Method
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode parameters: %v", e.Method, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

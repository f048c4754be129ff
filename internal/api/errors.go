package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error the client could not classify further
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request did not complete in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the API address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the API hostname could not be resolved
	ErrTypeDNS
	// ErrTypeAPI indicates a structured non-2xx response from the backend
	ErrTypeAPI
	// ErrTypeParse indicates a response body that is not the expected JSON
	ErrTypeParse
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// Codes attached to errors produced on the client side
const (
	CodeNetwork = "network_error"
	CodeTimeout = "timeout"
	CodeParse   = "parse_error"
	CodeRequest = "request_error"
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeAPI:
		return "API Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is the structured error payload returned by the backend on non-2xx
// responses. Client-side failures (network, parse) use the same shape with
// a client-defined Code so callers handle a single error type.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	Type       ErrorType `json:"-"`
	StatusCode int       `json:"-"` // HTTP status, 0 when no response was received
	Err        error     `json:"-"` // underlying cause, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Type == ErrTypeAPI:
		return fmt.Sprintf("%s (HTTP %d, %s): %s", e.Type, e.StatusCode, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport error onto an Error with the most
// specific type available.
func ClassifyNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &Error{Type: ErrTypeTimeout, Code: CodeTimeout, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:    ErrTypeDNS,
			Code:    CodeNetwork,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &Error{Type: ErrTypeConnectionRefused, Code: CodeNetwork, Message: "connection refused", Err: err}
	}

	return &Error{Type: ErrTypeNetwork, Code: CodeNetwork, Message: "network error occurred", Err: err}
}

// NewNetworkError classifies err and replaces its message with message
func NewNetworkError(message string, err error) *Error {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &Error{Type: ErrTypeNetwork, Code: CodeNetwork, Message: message}
	}
	classified.Message = message
	return classified
}

// NewAPIError creates an error for a structured non-2xx response
func NewAPIError(statusCode int, code, message string) *Error {
	if code == "" {
		code = fmt.Sprintf("http_%d", statusCode)
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{Type: ErrTypeAPI, Code: code, Message: message, StatusCode: statusCode}
}

// NewParseError creates an error for a body that could not be decoded
func NewParseError(statusCode int, message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Code: CodeParse, Message: message, StatusCode: statusCode, Err: err}
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether the request never produced a response
func IsNetworkError(err error) bool {
	if e, ok := asError(err); ok {
		return e.Type == ErrTypeNetwork ||
			e.Type == ErrTypeTimeout ||
			e.Type == ErrTypeConnectionRefused ||
			e.Type == ErrTypeDNS
	}
	return false
}

// IsAPIError reports whether err is a structured backend error
func IsAPIError(err error) bool {
	if e, ok := asError(err); ok {
		return e.Type == ErrTypeAPI
	}
	return false
}

// IsParseError reports whether err is a body decoding failure
func IsParseError(err error) bool {
	if e, ok := asError(err); ok {
		return e.Type == ErrTypeParse
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if e, ok := asError(err); ok {
		return e.StatusCode
	}
	return 0
}

// UserMessage returns the text shown to a person for err. Backend messages
// are passed through verbatim; transport failures get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	e, ok := asError(err)
	if !ok {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeAPI:
		return e.Message
	case ErrTypeTimeout:
		return "The customers service did not respond in time. Please try again."
	case ErrTypeConnectionRefused, ErrTypeDNS, ErrTypeNetwork:
		return "Could not reach the customers service. Check your connection and try again."
	case ErrTypeParse:
		return "The customers service returned an unexpected response."
	default:
		return e.Message
	}
}

package mcp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by Invoke when the session never connected
	ErrNotReady = errors.New("tool provider is not connected")

	// ErrBusy is returned by Invoke while another call is in flight
	ErrBusy = errors.New("a generate call is already in progress")

	// ErrNotConfigured is returned by Connect before a configuration is loaded
	ErrNotConfigured = errors.New("tool provider is not configured")
)

// ConfigurationError reports a configuration document that cannot describe
// the provider. The session is failed and no process was started.
type ConfigurationError struct {
	Path string
	Key  string // dotted key that is missing or malformed, empty for read/parse errors
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration %s: %s: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

var errMissingKey = errors.New("property not found")

func missingKey(path, key string) *ConfigurationError {
	return &ConfigurationError{Path: path, Key: key, Err: errMissingKey}
}

// ConnectionError reports a failed launch or handshake. The underlying error
// is kept verbatim.
type ConnectionError struct {
	Command string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s (%s): %v", ProviderName, e.Command, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CallError reports a tools/call that failed at the transport or protocol
// level. The session stays usable.
type CallError struct {
	Tool string
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tool call %s failed: %v", e.Tool, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// EnvelopeReason names one way the response envelope can be malformed
type EnvelopeReason int

const (
	ReasonNotArray EnvelopeReason = iota + 1
	ReasonEmptyArray
	ReasonMissingText
	ReasonInvalidText
	ReasonNotSuccessful
	ReasonMissingOutput
)

func (r EnvelopeReason) String() string {
	switch r {
	case ReasonNotArray:
		return "not_array"
	case ReasonEmptyArray:
		return "empty_array"
	case ReasonMissingText:
		return "missing_text"
	case ReasonInvalidText:
		return "invalid_text"
	case ReasonNotSuccessful:
		return "not_successful"
	case ReasonMissingOutput:
		return "missing_output"
	default:
		return "unknown"
	}
}

func (r EnvelopeReason) message() string {
	switch r {
	case ReasonNotArray:
		return "JSON result is not an array as expected"
	case ReasonEmptyArray:
		return "JSON result is an empty array"
	case ReasonMissingText:
		return "first item in array missing 'text' property or it's not a string"
	case ReasonInvalidText:
		return "first item 'text' is not valid JSON"
	case ReasonNotSuccessful:
		return "operation failed: inner JSON 'success' property is false or missing"
	case ReasonMissingOutput:
		return "inner JSON missing 'output' property or it's not a string"
	default:
		return "malformed response"
	}
}

// EnvelopeError reports a tool response that does not have the expected
// shape. Compare with errors.Is against the Err* sentinels below.
type EnvelopeError struct {
	Reason EnvelopeReason
	Err    error // parser error, if any
}

func (e *EnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason.message(), e.Err)
	}
	return e.Reason.message()
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

// Is matches any EnvelopeError with the same reason
func (e *EnvelopeError) Is(target error) bool {
	t, ok := target.(*EnvelopeError)
	return ok && t.Reason == e.Reason
}

var (
	ErrNotArray      = &EnvelopeError{Reason: ReasonNotArray}
	ErrEmptyArray    = &EnvelopeError{Reason: ReasonEmptyArray}
	ErrMissingText   = &EnvelopeError{Reason: ReasonMissingText}
	ErrInvalidText   = &EnvelopeError{Reason: ReasonInvalidText}
	ErrNotSuccessful = &EnvelopeError{Reason: ReasonNotSuccessful}
	ErrMissingOutput = &EnvelopeError{Reason: ReasonMissingOutput}
)

// ErrCorruptPayload matches every PayloadError
var ErrCorruptPayload = errors.New("corrupt image payload")

// PayloadError reports image data that is not valid base64
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCorruptPayload, e.Err)
}

func (e *PayloadError) Unwrap() []error {
	return []error{ErrCorruptPayload, e.Err}
}

package errors

import "fmt"

// ErrorCode represents an Atelier error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrMissingAPIKey    ErrorCode = "MISSING_API_KEY"   // 401
	ErrBusy             ErrorCode = "BUSY"              // 409
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED" // 422
	ErrProvider         ErrorCode = "PROVIDER_ERROR"    // 502
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// AtelierError represents a structured error with code, status, and details.
type AtelierError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *AtelierError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause, if any.
func (e *AtelierError) Unwrap() error {
	if cause, ok := e.Details["cause"].(error); ok {
		return cause
	}
	return nil
}

// NewInvalidRequest creates a 400 error for missing or malformed input.
func NewInvalidRequest(msg string) *AtelierError {
	return &AtelierError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewMissingAPIKey creates a 401 error for when no Gemini API key is configured.
// The message directs the user to configure one before retrying.
func NewMissingAPIKey() *AtelierError {
	return &AtelierError{
		Code:    ErrMissingAPIKey,
		Status:  401,
		Message: "no Gemini API key configured; run `atelier key set <key>` or export GEMINI_API_KEY",
	}
}

// NewBusy creates a 409 error for overlapping submissions.
func NewBusy() *AtelierError {
	return &AtelierError{
		Code:    ErrBusy,
		Status:  409,
		Message: "another operation is already in progress",
	}
}

// NewGenerationFailed creates a 422 error for when the provider call succeeded
// but returned no usable artifact.
func NewGenerationFailed(action string) *AtelierError {
	return &AtelierError{
		Code:    ErrGenerationFailed,
		Status:  422,
		Message: fmt.Sprintf("%s failed: the model returned no image; this may be due to safety filtering or invalid input", action),
		Details: map[string]any{"action": action},
	}
}

// NewProvider creates a 502 error wrapping a transport or provider-level failure.
// The provider's message is passed through as-is when available.
func NewProvider(err error) *AtelierError {
	msg := "the provider returned an error"
	details := map[string]any{}
	if err != nil {
		msg = err.Error()
		details["cause"] = err
	}
	return &AtelierError{
		Code:    ErrProvider,
		Status:  502,
		Message: msg,
		Details: details,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *AtelierError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AtelierError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an AtelierError with the given code.
func Is(err error, code ErrorCode) bool {
	if aErr, ok := err.(*AtelierError); ok {
		return aErr.Code == code
	}
	return false
}

// Message extracts a user-visible message from any error, falling back to a
// generic description for unrecognized errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if aErr, ok := err.(*AtelierError); ok {
		return aErr.Message
	}
	return "an unknown error occurred"
}

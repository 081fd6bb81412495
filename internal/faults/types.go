// Package faults provides error classification for the SDK. Classification
// drives two policies: whether the save queue retries a failed write, and
// which user-facing message an AI failure is rendered as.
package faults

import "fmt"

// Category determines how errors are handled by retry logic.
type Category int

const (
	// Recoverable errors are retried with exponential backoff.
	// Examples: 500 responses, network timeouts, connection failures.
	Recoverable Category = iota

	// Irrecoverable errors fail immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 400 Bad Request.
	Irrecoverable
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Kind buckets a failure for user-facing messaging. Raw transport errors are
// never shown to the end user; each kind maps to a distinct message.
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingCredentials
	KindBadRequest
	KindPermissionDenied
	KindContentSafety
)

// String returns the bucket name.
func (k Kind) String() string {
	switch k {
	case KindMissingCredentials:
		return "missing-credentials"
	case KindBadRequest:
		return "malformed-request"
	case KindPermissionDenied:
		return "permission-denied"
	case KindContentSafety:
		return "content-safety-or-empty-response"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with categorization metadata.
type ClassifiedError struct {
	Category   Category
	Kind       Kind
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // Response body for debugging
	Underlying error  // The original error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// UserMessage returns the message shown to the end user for this failure.
func (e *ClassifiedError) UserMessage() string {
	switch e.Kind {
	case KindMissingCredentials:
		return "The AI backend is not configured. Set the API key and try again."
	case KindBadRequest:
		return "The request could not be understood. Please try again."
	case KindPermissionDenied:
		return "The configured API key does not have access to this feature."
	case KindContentSafety:
		return "The response was empty or blocked. Only food images are supported here."
	default:
		return "Something went wrong talking to the AI. Please try again."
	}
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Category == Irrecoverable
	}
	return false
}

// KindOf extracts the user-facing bucket of err, KindUnknown if unclassified.
func KindOf(err error) Kind {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Kind
	}
	return KindUnknown
}

package faults

import "fmt"

// ClassifyHTTPError maps an HTTP failure to retry category and user bucket.
// 4xx client errors (except 408/429) are irrecoverable; 5xx and network-level
// errors are recoverable.
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:   httpCategory(statusCode),
		Kind:       httpKind(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlyingErr,
	}
}

func httpCategory(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408: // Request Timeout - can retry
			return Recoverable
		case 429: // Too Many Requests - retry with backoff
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes - be conservative and retry.
		return Recoverable
	}
}

func httpKind(statusCode int) Kind {
	switch statusCode {
	case 400:
		return KindBadRequest
	case 401:
		return KindMissingCredentials
	case 403:
		return KindPermissionDenied
	default:
		return KindUnknown
	}
}

// NewHTTPError creates a classified error for HTTP failures.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	underlyingErr := fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// NewNetworkError creates a classified error for network-level failures.
// Network errors are always recoverable as they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

// NewMissingCredentials reports an unconfigured backend. Detected before any
// request is issued so the user gets an actionable message.
func NewMissingCredentials(what string) *ClassifiedError {
	return &ClassifiedError{
		Category:   Irrecoverable,
		Kind:       KindMissingCredentials,
		Underlying: fmt.Errorf("%s is not configured", what),
	}
}

// NewContentSafety reports an empty or unparsable structured response, which
// the model API emits for content-policy rejections.
func NewContentSafety(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Irrecoverable,
		Kind:       KindContentSafety,
		Underlying: fmt.Errorf("%s returned no usable content: %w", operation, err),
	}
}

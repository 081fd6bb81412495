package caloriewise

// This file defines functional options that configure the Session during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BasimBashir/caloriewise-ai/internal/genai"
)

// Option configures a Session during construction in New.
// Options must be deterministic and side-effect free.
type Option func(*Session) error

// WithHTTPTimeout sets the underlying http.Client timeout shared by the
// store and AI backends. Prefer per-request context deadlines where possible;
// this is a coarse safety net. Must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Session) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		s.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the HTTP transport so each request/response pair is
// dumped when enabled. Not for production use.
func WithDebugLogging(enabled bool) Option {
	return func(s *Session) error {
		if enabled {
			s.http.Transport = &debugTransport{base: s.http.Transport}
		}
		return nil
	}
}

// WithLogger sets the logger used for the ambient error channel.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) error {
		s.log = log
		return nil
	}
}

// WithClock overrides the time source. Test hook: "today" decides whether a
// weight entry updates the profile's current weight.
func WithClock(now func() time.Time) Option {
	return func(s *Session) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		s.now = now
		return nil
	}
}

// WithStore injects a DocumentStore implementation.
func WithStore(gw DocumentStore) Option {
	return func(s *Session) error {
		s.storeGW = gw
		return nil
	}
}

// WithAI injects an AI backend implementation.
func WithAI(ai AI) Option {
	return func(s *Session) error {
		s.ai = ai
		return nil
	}
}

// WithImageFinder injects the exercise image lookup used during plan
// generation.
func WithImageFinder(finder genai.ImageFinder) Option {
	return func(s *Session) error {
		s.finder = finder
		return nil
	}
}

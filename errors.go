package caloriewise

import (
	"errors"

	"github.com/BasimBashir/caloriewise-ai/internal/savequeue"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// ErrNoIdentity is returned when a mutation is attempted before the user has
// either signed in or explicitly chosen guest mode.
var ErrNoIdentity = errors.New("no identity: sign in or choose guest mode first")

// ErrNoProfile is returned when an operation needs a completed profile.
var ErrNoProfile = errors.New("profile not set up yet")

// ErrNoActiveSession is returned by SendChatMessage when no chat session is
// active.
var ErrNoActiveSession = errors.New("no active chat session")

// ErrReplyInFlight is returned when a send overlaps an unfinished AI reply.
// The presentation layer normally prevents this by disabling input while
// Replying reports true.
var ErrReplyInFlight = errors.New("an AI reply is already in flight")

// ErrBackPressure is returned when the internal save queue is full.
var ErrBackPressure = savequeue.ErrQueueFull

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// ErrNotFound is the shared not-found sentinel from the persistence gateway.
var ErrNotFound = types.ErrNotFound

package savequeue

import (
	"errors"
	"fmt"
)

// ErrQueueClosed is returned by Submit after Stop has been called.
var ErrQueueClosed = errors.New("savequeue: queue closed")

// ErrQueueFull is the sentinel matched by errors.Is against *QueueFullError.
var ErrQueueFull = errors.New("savequeue: shard full")

// QueueFullError reports back-pressure on a specific shard.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("savequeue: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

// Is lets errors.Is(err, ErrQueueFull) match.
func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }

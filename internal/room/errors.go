package room

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotInRoom    = errors.New("not a participant of this room")
	ErrBanned       = errors.New("banned from this room")
	ErrHostOnly     = errors.New("operation restricted to host")
)

// RateLimitError is returned when slow mode rejects a viewer's send. The
// participant's last-send timestamp is left untouched on this path.
type RateLimitError struct {
	Remaining time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("slow mode: retry in %s", e.Remaining)
}

// RemainingSeconds rounds up so a client never retries too early.
func (e *RateLimitError) RemainingSeconds() int {
	secs := int((e.Remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

package capture

import (
	"errors"
	"time"
)

// ErrSourceClosed is returned when polling a source that is not open.
var ErrSourceClosed = errors.New("source is not open")

// Source defines the interface for signal bus implementations.
type Source interface {
	Open() error
	Close() error
	// Poll waits up to timeout for messages and returns them in arrival
	// order. It is the only blocking call of the tick loop.
	Poll(timeout time.Duration) ([]Message, error)
}

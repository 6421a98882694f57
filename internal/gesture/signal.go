package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/capture"
)

// Signal is an input to the gesture state machine.
type Signal int

const (
	// Position means a fresh sample without contact arrived this tick.
	Position Signal = iota
	// Contact means the latest sample asserts contact.
	Contact
	// NoPosition means no fresh sample arrived this tick.
	NoPosition
	// Enough is sent internally once the hover debounce elapses.
	Enough
	// Clicked is sent internally once a dwell click has been held long enough.
	Clicked
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case Position:
		return "position"
	case Contact:
		return "contact"
	case NoPosition:
		return "no_position"
	case Enough:
		return "enough"
	case Clicked:
		return "clicked"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Classify derives the per-tick signal from the shared sample. The contact
// flag persists until a later sample clears it.
func Classify(s *capture.Sample) Signal {
	switch {
	case s.Contact:
		return Contact
	case s.Updated:
		return Position
	default:
		return NoPosition
	}
}

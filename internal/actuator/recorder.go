package actuator

import (
	"fmt"
	"sync"
)

// Kind is the type of a recorded command.
type Kind int

const (
	KindMove Kind = iota
	KindButtonDown
	KindButtonUp
	KindClick
)

// String returns the command name used in logs and the event log.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindButtonDown:
		return "press"
	case KindButtonUp:
		return "release"
	case KindClick:
		return "click"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is one recorded actuator call.
type Command struct {
	Kind   Kind
	X, Y   float64
	Button Button
}

// Recorder records every call in order. It never touches the OS pointer.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
	err      error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetError makes every subsequent call return err after recording it.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) record(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, c)
	return r.err
}

func (r *Recorder) Move(x, y float64) error {
	return r.record(Command{Kind: KindMove, X: x, Y: y})
}

func (r *Recorder) ButtonDown(b Button) error {
	return r.record(Command{Kind: KindButtonDown, Button: b})
}

func (r *Recorder) ButtonUp(b Button) error {
	return r.record(Command{Kind: KindButtonUp, Button: b})
}

func (r *Recorder) Click(b Button) error {
	return r.record(Command{Kind: KindClick, Button: b})
}

// Commands returns a copy of the recorded calls.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Count returns the number of recorded calls of kind k.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commands {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

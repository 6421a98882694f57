// Package gesture turns the per-tick pointer signal into pointer moves,
// clicks and drags using a debounced state machine.
package gesture

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/fsm"
)

// Default debounce thresholds in ticks.
const (
	DefaultClickSpeed  = 5
	DefaultClickLength = 5
)

// State names.
const (
	StateRoot  = "root"
	StateWait  = "wait"
	StateMove  = "move"
	StateClick = "click"
)

// ErrUnresolvedMode is returned by New when the mode is still ModeAuto.
var ErrUnresolvedMode = errors.New("gesture mode must be resolved before use")

// Mode selects the state machine topology.
type Mode int

const (
	// ModeAuto picks ModeContact or ModeDwell from the payload arity.
	ModeAuto Mode = iota
	// ModeContact clicks and drags on reported contact.
	ModeContact
	// ModeDwell clicks when a hovering pointer disappears.
	ModeDwell
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeContact:
		return "contact"
	case ModeDwell:
		return "dwell"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ModeAuto, nil
	case "contact":
		return ModeContact, nil
	case "dwell":
		return ModeDwell, nil
	default:
		return ModeAuto, fmt.Errorf("unknown gesture mode %q", s)
	}
}

// Resolve replaces ModeAuto with the mode matching the payload arity.
func (m Mode) Resolve(arity int) Mode {
	if m != ModeAuto {
		return m
	}
	if capture.HasContact(arity) {
		return ModeContact
	}
	return ModeDwell
}

// Config holds classifier settings.
type Config struct {
	Mode Mode
	// ClickSpeed is the hover debounce before moving, and the number of
	// contact ticks before a press becomes a drag.
	ClickSpeed int
	// ClickLength is how long a dwell click holds the click state.
	ClickLength int
	Button      actuator.Button
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeAuto,
		ClickSpeed:  DefaultClickSpeed,
		ClickLength: DefaultClickLength,
		Button:      actuator.ButtonLeft,
	}
}

// Action describes one actuator call issued by the classifier.
type Action struct {
	Kind   actuator.Kind
	X, Y   float64
	Button actuator.Button
	State  string
}

// Observer receives classifier activity. Calls happen on the goroutine
// driving Step.
type Observer interface {
	OnTransition(from, to string, signal Signal)
	OnAction(action Action, err error)
}

// Classifier owns the gesture state machine and its debounce counters.
type Classifier struct {
	config   Config
	act      actuator.Actuator
	observer Observer

	machine *fsm.Machine[Signal, *Classifier]
	root    fsm.StateID
	wait    fsm.StateID
	move    fsm.StateID
	click   fsm.StateID

	counters []int
	pressed  bool
	signal   Signal
	x, y     float64
}

// New builds a classifier for a resolved mode.
func New(config Config, act actuator.Actuator) (*Classifier, error) {
	if config.ClickSpeed < 1 || config.ClickLength < 1 {
		return nil, fmt.Errorf("click thresholds must be positive: speed=%d length=%d", config.ClickSpeed, config.ClickLength)
	}

	c := &Classifier{config: config, act: act}

	var err error
	switch config.Mode {
	case ModeContact:
		err = c.buildContact()
	case ModeDwell:
		err = c.buildDwell()
	default:
		return nil, ErrUnresolvedMode
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetObserver registers o to receive transitions and actions.
func (c *Classifier) SetObserver(o Observer) {
	c.observer = o
}

// Mode returns the active topology.
func (c *Classifier) Mode() Mode {
	return c.config.Mode
}

// State returns the current state name.
func (c *Classifier) State() string {
	return c.machine.CurrentName()
}

// Counter returns the debounce counter of the named state.
func (c *Classifier) Counter(state string) int {
	id := c.machine.Graph().Lookup(state)
	if id == fsm.NoState {
		return 0
	}
	return c.counters[id]
}

// Pressed reports whether the button is held down.
func (c *Classifier) Pressed() bool {
	return c.pressed
}

// Step feeds one signal with the sample it was derived from. It returns
// false when the current state has no rule for the signal.
func (c *Classifier) Step(signal Signal, s *capture.Sample) bool {
	c.x, c.y = s.X, s.Y
	return c.send(c.machine, signal)
}

// Track moves the pointer to the sample regardless of state.
func (c *Classifier) Track(s *capture.Sample) {
	c.x, c.y = s.X, s.Y
	c.actuate(actuator.KindMove)
}

// Reset releases a held button and returns to root.
func (c *Classifier) Reset() {
	if c.pressed {
		c.actuate(actuator.KindButtonUp)
		c.pressed = false
	}
	from := c.machine.CurrentName()
	c.machine.Reset(c.root)
	for i := range c.counters {
		c.counters[i] = 0
	}
	if from != StateRoot && c.observer != nil {
		c.observer.OnTransition(from, StateRoot, NoPosition)
	}
}

func (c *Classifier) send(m *fsm.Machine[Signal, *Classifier], signal Signal) bool {
	c.signal = signal
	return m.Send(signal, c)
}

func (c *Classifier) states(g *fsm.Graph[Signal, *Classifier]) {
	c.root = g.AddState(StateRoot)
	c.wait = g.AddState(StateWait)
	c.move = g.AddState(StateMove)
	c.click = g.AddState(StateClick)
	c.counters = make([]int, g.Len())
}

type rule struct {
	from   fsm.StateID
	signal Signal
	to     fsm.StateID
}

// addRules registers transitions, stopping at the first error.
func addRules(g *fsm.Graph[Signal, *Classifier], list ...rule) error {
	for _, r := range list {
		if err := g.AddTransition(r.from, r.signal, r.to); err != nil {
			return fmt.Errorf("rule %s --%s--> %s: %w", g.Name(r.from), r.signal, g.Name(r.to), err)
		}
	}
	return nil
}

func (c *Classifier) buildContact() error {
	g := fsm.NewGraph[Signal, *Classifier]()
	c.states(g)

	err := addRules(g,
		rule{c.root, Position, c.wait},
		rule{c.wait, Position, c.wait},
		rule{c.wait, Contact, c.click},
		rule{c.wait, NoPosition, c.root},
		rule{c.wait, Enough, c.move},
		rule{c.move, Position, c.move},
		rule{c.move, Contact, c.click},
		rule{c.move, NoPosition, c.root},
		rule{c.click, Contact, c.click},
		rule{c.click, Position, c.move},
		rule{c.click, NoPosition, c.root},
	)
	if err != nil {
		return err
	}

	c.onEnter(g, c.root, nil)
	c.onEnter(g, c.wait, enterWait)
	c.onEnter(g, c.move, enterMove)
	c.onEnter(g, c.click, enterPress)
	g.SetLeaveHandler(c.click, leavePress)

	c.machine = fsm.NewMachine(g, c.root)
	return nil
}

func (c *Classifier) buildDwell() error {
	g := fsm.NewGraph[Signal, *Classifier]()
	c.states(g)

	err := addRules(g,
		rule{c.root, Position, c.wait},
		rule{c.wait, Position, c.wait},
		rule{c.wait, NoPosition, c.click},
		rule{c.wait, Enough, c.move},
		rule{c.move, Position, c.move},
		rule{c.move, NoPosition, c.root},
		rule{c.click, Position, c.click},
		rule{c.click, NoPosition, c.click},
		rule{c.click, Clicked, c.root},
	)
	if err != nil {
		return err
	}

	c.onEnter(g, c.root, nil)
	c.onEnter(g, c.wait, enterWait)
	c.onEnter(g, c.move, enterMove)
	c.onEnter(g, c.click, enterDwell)

	c.machine = fsm.NewMachine(g, c.root)
	return nil
}

type handler func(c *Classifier, m *fsm.Machine[Signal, *Classifier], self bool)

// onEnter installs an enter handler that maintains the state's counter and
// reports the transition before running fn.
func (c *Classifier) onEnter(g *fsm.Graph[Signal, *Classifier], id fsm.StateID, fn handler) {
	g.SetEnterHandler(id, func(m *fsm.Machine[Signal, *Classifier], from fsm.StateID, cl *Classifier) {
		self := from == id
		if self {
			cl.counters[id]++
		} else {
			cl.counters[id] = 0
		}

		if !self {
			slog.Debug("gesture transition",
				"from", g.Name(from), "to", g.Name(id), "signal", cl.signal)
			if cl.observer != nil {
				cl.observer.OnTransition(g.Name(from), g.Name(id), cl.signal)
			}
		}

		if fn != nil {
			fn(cl, m, self)
		}
	})
}

func enterWait(c *Classifier, m *fsm.Machine[Signal, *Classifier], _ bool) {
	if c.counters[c.wait] == c.config.ClickSpeed {
		c.send(m, Enough)
	}
}

func enterMove(c *Classifier, _ *fsm.Machine[Signal, *Classifier], _ bool) {
	c.actuate(actuator.KindMove)
}

// enterPress tracks the pointer while in contact and turns a held contact
// into a button press.
func enterPress(c *Classifier, _ *fsm.Machine[Signal, *Classifier], self bool) {
	if !self {
		c.pressed = false
	}
	c.actuate(actuator.KindMove)
	if !c.pressed && c.counters[c.click] == c.config.ClickSpeed-1 {
		c.actuate(actuator.KindButtonDown)
		c.pressed = true
	}
}

// leavePress ends a drag, or reports a short contact as a tap.
func leavePress(_ *fsm.Machine[Signal, *Classifier], to fsm.StateID, c *Classifier) {
	if to == c.click {
		return
	}
	if c.pressed {
		c.actuate(actuator.KindButtonUp)
		c.pressed = false
		return
	}
	c.actuate(actuator.KindClick)
}

func enterDwell(c *Classifier, m *fsm.Machine[Signal, *Classifier], self bool) {
	if !self {
		c.actuate(actuator.KindClick)
		return
	}
	if c.counters[c.click] == c.config.ClickLength {
		c.send(m, Clicked)
	}
}

func (c *Classifier) actuate(kind actuator.Kind) {
	a := Action{Kind: kind, X: c.x, Y: c.y, Button: c.config.Button, State: c.machine.CurrentName()}

	var err error
	switch kind {
	case actuator.KindMove:
		err = c.act.Move(c.x, c.y)
	case actuator.KindButtonDown:
		err = c.act.ButtonDown(c.config.Button)
	case actuator.KindButtonUp:
		err = c.act.ButtonUp(c.config.Button)
	case actuator.KindClick:
		err = c.act.Click(c.config.Button)
	}
	if err != nil {
		slog.Warn("actuation failed", "action", kind, "state", a.State, "error", err)
	}

	if c.observer != nil {
		c.observer.OnAction(a, err)
	}
}

// Package fsm provides a small runtime-built finite-state machine with
// enter/leave hooks. States live in an arena owned by the Graph and are
// addressed by StateID, so cyclic graphs need no owning references.
package fsm

import (
	"errors"
	"fmt"
)

// ErrDuplicateTransition is returned when a second rule is registered for
// the same state and signal.
var ErrDuplicateTransition = errors.New("duplicate transition")

// StateID addresses a state inside a Graph.
type StateID int

// NoState is the zero handle returned for lookups that find nothing.
const NoState StateID = -1

// EnterFunc runs when a state is entered. from is the state that was left,
// which equals the entered state on a self-transition.
type EnterFunc[S comparable, C any] func(m *Machine[S, C], from StateID, ctx C)

// LeaveFunc runs when a state is left. to is the destination.
type LeaveFunc[S comparable, C any] func(m *Machine[S, C], to StateID, ctx C)

type state[S comparable, C any] struct {
	name  string
	next  map[S]StateID
	enter EnterFunc[S, C]
	leave LeaveFunc[S, C]
}

// Graph holds the states and transition rules of a machine.
type Graph[S comparable, C any] struct {
	states []state[S, C]
}

// NewGraph creates an empty graph.
func NewGraph[S comparable, C any]() *Graph[S, C] {
	return &Graph[S, C]{}
}

// AddState appends a state and returns its handle.
func (g *Graph[S, C]) AddState(name string) StateID {
	g.states = append(g.states, state[S, C]{
		name: name,
		next: make(map[S]StateID),
	})
	return StateID(len(g.states) - 1)
}

func (g *Graph[S, C]) valid(id StateID) bool {
	return id >= 0 && int(id) < len(g.states)
}

// AddTransition registers the rule "in from, on signal, go to to".
// Unknown states make the call a no-op. Registering a second rule for the
// same (from, signal) pair fails with ErrDuplicateTransition.
func (g *Graph[S, C]) AddTransition(from StateID, signal S, to StateID) error {
	if !g.valid(from) || !g.valid(to) {
		return nil
	}

	st := &g.states[from]
	if existing, ok := st.next[signal]; ok {
		return fmt.Errorf("%w: %s on %v already goes to %s",
			ErrDuplicateTransition, st.name, signal, g.states[existing].name)
	}
	st.next[signal] = to
	return nil
}

// SetEnterHandler sets the enter hook of a state, replacing any previous one.
func (g *Graph[S, C]) SetEnterHandler(id StateID, fn EnterFunc[S, C]) {
	if !g.valid(id) || fn == nil {
		return
	}
	g.states[id].enter = fn
}

// SetLeaveHandler sets the leave hook of a state, replacing any previous one.
func (g *Graph[S, C]) SetLeaveHandler(id StateID, fn LeaveFunc[S, C]) {
	if !g.valid(id) || fn == nil {
		return
	}
	g.states[id].leave = fn
}

// Name returns the name of a state, or "" for an unknown handle.
func (g *Graph[S, C]) Name(id StateID) string {
	if !g.valid(id) {
		return ""
	}
	return g.states[id].name
}

// Lookup returns the handle of the state with the given name.
func (g *Graph[S, C]) Lookup(name string) StateID {
	for i := range g.states {
		if g.states[i].name == name {
			return StateID(i)
		}
	}
	return NoState
}

// Next returns the destination registered for signal in state id.
func (g *Graph[S, C]) Next(id StateID, signal S) (StateID, bool) {
	if !g.valid(id) {
		return NoState, false
	}
	to, ok := g.states[id].next[signal]
	return to, ok
}

// Len returns the number of states.
func (g *Graph[S, C]) Len() int {
	return len(g.states)
}

// Machine tracks the current state of a Graph.
type Machine[S comparable, C any] struct {
	graph   *Graph[S, C]
	current StateID
}

// NewMachine creates a machine positioned on initial. No enter hook runs.
func NewMachine[S comparable, C any](g *Graph[S, C], initial StateID) *Machine[S, C] {
	return &Machine[S, C]{graph: g, current: initial}
}

// Graph returns the graph the machine walks.
func (m *Machine[S, C]) Graph() *Graph[S, C] {
	return m.graph
}

// Current returns the current state.
func (m *Machine[S, C]) Current() StateID {
	return m.current
}

// CurrentName returns the name of the current state.
func (m *Machine[S, C]) CurrentName() string {
	return m.graph.Name(m.current)
}

// Reset moves the machine to id without running any hook.
func (m *Machine[S, C]) Reset(id StateID) {
	if !m.graph.valid(id) {
		return
	}
	m.current = id
}

// Send delivers a signal. If the current state has no rule for it nothing
// happens and Send returns false. Otherwise the leave hook of the current
// state runs, the destination becomes current, and the destination's enter
// hook runs. Hooks may call Send again; the destination is already current
// at that point, so a chained transition starts from it. Callers must read
// Current after Send returns.
func (m *Machine[S, C]) Send(signal S, ctx C) bool {
	from := m.current
	to, ok := m.graph.Next(from, signal)
	if !ok {
		return false
	}

	if leave := m.graph.states[from].leave; leave != nil {
		leave(m, to, ctx)
	}

	m.current = to

	if enter := m.graph.states[to].enter; enter != nil {
		enter(m, from, ctx)
	}
	return true
}

package fsm

import (
	"errors"
	"testing"
)

type testSignal string

const (
	sigGo   testSignal = "go"
	sigBack testSignal = "back"
	sigLoop testSignal = "loop"
	sigSkip testSignal = "skip"
	sigNope testSignal = "nope"
)

// trace records hook invocations in order.
type trace struct {
	calls []string
}

func (tr *trace) add(s string) {
	tr.calls = append(tr.calls, s)
}

func newTestGraph() (*Graph[testSignal, *trace], StateID, StateID, StateID) {
	g := NewGraph[testSignal, *trace]()
	a := g.AddState("a")
	b := g.AddState("b")
	c := g.AddState("c")
	return g, a, b, c
}

func TestBasicTransition(t *testing.T) {
	g, a, b, _ := newTestGraph()
	if err := g.AddTransition(a, sigGo, b); err != nil {
		t.Fatalf("AddTransition() error = %v", err)
	}
	if err := g.AddTransition(b, sigBack, a); err != nil {
		t.Fatalf("AddTransition() error = %v", err)
	}

	m := NewMachine(g, a)
	tr := &trace{}

	if !m.Send(sigGo, tr) {
		t.Fatal("Send(go) returned false")
	}
	if m.Current() != b {
		t.Errorf("expected state b, got %s", m.CurrentName())
	}

	m.Send(sigBack, tr)
	if m.Current() != a {
		t.Errorf("expected state a, got %s", m.CurrentName())
	}
}

func TestUnmatchedSignalIsNoop(t *testing.T) {
	g, a, b, c := newTestGraph()
	g.AddTransition(a, sigGo, b)

	tr := &trace{}
	for _, id := range []StateID{a, b, c} {
		g.SetEnterHandler(id, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
			ctx.add("enter")
		})
		g.SetLeaveHandler(id, func(m *Machine[testSignal, *trace], to StateID, ctx *trace) {
			ctx.add("leave")
		})
	}

	for _, id := range []StateID{a, b, c} {
		m := NewMachine(g, id)
		for _, sig := range []testSignal{sigBack, sigNope, sigLoop} {
			if m.Send(sig, tr) {
				t.Errorf("Send(%s) from %s returned true", sig, g.Name(id))
			}
			if m.Current() != id {
				t.Errorf("Send(%s) moved %s to %s", sig, g.Name(id), m.CurrentName())
			}
		}
	}

	if len(tr.calls) != 0 {
		t.Errorf("expected no hooks, got %v", tr.calls)
	}
}

func TestHookOrder(t *testing.T) {
	g, a, b, _ := newTestGraph()
	g.AddTransition(a, sigGo, b)

	var leftTo, enteredFrom StateID = NoState, NoState
	var currentDuringLeave, currentDuringEnter StateID

	g.SetLeaveHandler(a, func(m *Machine[testSignal, *trace], to StateID, ctx *trace) {
		ctx.add("leave a")
		leftTo = to
		currentDuringLeave = m.Current()
	})
	g.SetEnterHandler(b, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
		ctx.add("enter b")
		enteredFrom = from
		currentDuringEnter = m.Current()
	})

	tr := &trace{}
	m := NewMachine(g, a)
	m.Send(sigGo, tr)

	if len(tr.calls) != 2 || tr.calls[0] != "leave a" || tr.calls[1] != "enter b" {
		t.Fatalf("unexpected hook order %v", tr.calls)
	}
	if leftTo != b {
		t.Errorf("leave hook got destination %d, want %d", leftTo, b)
	}
	if enteredFrom != a {
		t.Errorf("enter hook got previous %d, want %d", enteredFrom, a)
	}
	if currentDuringLeave != a {
		t.Errorf("current during leave = %d, want %d", currentDuringLeave, a)
	}
	if currentDuringEnter != b {
		t.Errorf("current during enter = %d, want %d", currentDuringEnter, b)
	}
}

func TestSelfTransitionRunsBothHooks(t *testing.T) {
	g, a, _, _ := newTestGraph()
	g.AddTransition(a, sigLoop, a)

	var from StateID = NoState
	g.SetLeaveHandler(a, func(m *Machine[testSignal, *trace], to StateID, ctx *trace) {
		ctx.add("leave")
	})
	g.SetEnterHandler(a, func(m *Machine[testSignal, *trace], prev StateID, ctx *trace) {
		ctx.add("enter")
		from = prev
	})

	tr := &trace{}
	m := NewMachine(g, a)
	m.Send(sigLoop, tr)

	if len(tr.calls) != 2 {
		t.Fatalf("expected 2 hooks, got %v", tr.calls)
	}
	if from != a {
		t.Errorf("self transition previous = %d, want %d", from, a)
	}
}

func TestChainedTransitionFromEnterHook(t *testing.T) {
	g, a, b, c := newTestGraph()
	g.AddTransition(a, sigGo, b)
	g.AddTransition(b, sigSkip, c)

	g.SetEnterHandler(b, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
		ctx.add("enter b")
		m.Send(sigSkip, ctx)
	})
	g.SetLeaveHandler(b, func(m *Machine[testSignal, *trace], to StateID, ctx *trace) {
		ctx.add("leave b")
	})
	g.SetEnterHandler(c, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
		ctx.add("enter c")
		if from != b {
			t.Errorf("c entered from %d, want %d", from, b)
		}
	})

	tr := &trace{}
	m := NewMachine(g, a)
	m.Send(sigGo, tr)

	if m.Current() != c {
		t.Fatalf("expected chained transition to end in c, got %s", m.CurrentName())
	}
	want := []string{"enter b", "leave b", "enter c"}
	if len(tr.calls) != len(want) {
		t.Fatalf("hooks = %v, want %v", tr.calls, want)
	}
	for i := range want {
		if tr.calls[i] != want[i] {
			t.Errorf("hook %d = %q, want %q", i, tr.calls[i], want[i])
		}
	}
}

func TestDuplicateTransitionRejected(t *testing.T) {
	g, a, b, c := newTestGraph()
	if err := g.AddTransition(a, sigGo, b); err != nil {
		t.Fatalf("first AddTransition() error = %v", err)
	}

	err := g.AddTransition(a, sigGo, c)
	if !errors.Is(err, ErrDuplicateTransition) {
		t.Fatalf("expected ErrDuplicateTransition, got %v", err)
	}

	// The first rule stays in effect.
	if to, _ := g.Next(a, sigGo); to != b {
		t.Errorf("rule was overwritten: a --go--> %s", g.Name(to))
	}
}

// Absent arguments are silently ignored rather than reported.
func TestAddTransitionIgnoresUnknownStates(t *testing.T) {
	g, a, _, _ := newTestGraph()

	if err := g.AddTransition(a, sigGo, StateID(42)); err != nil {
		t.Errorf("unknown destination: error = %v, want nil", err)
	}
	if err := g.AddTransition(NoState, sigGo, a); err != nil {
		t.Errorf("unknown source: error = %v, want nil", err)
	}
	if _, ok := g.Next(a, sigGo); ok {
		t.Error("rule with unknown destination should not be registered")
	}
}

func TestHandlerOverwrite(t *testing.T) {
	g, a, b, _ := newTestGraph()
	g.AddTransition(a, sigGo, b)

	g.SetEnterHandler(b, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
		ctx.add("first")
	})
	g.SetEnterHandler(b, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
		ctx.add("second")
	})
	// nil does not clear the handler
	g.SetEnterHandler(b, nil)

	tr := &trace{}
	NewMachine(g, a).Send(sigGo, tr)

	if len(tr.calls) != 1 || tr.calls[0] != "second" {
		t.Errorf("expected only the latest handler to run, got %v", tr.calls)
	}
}

func TestReset(t *testing.T) {
	g, a, b, _ := newTestGraph()
	tr := &trace{}
	g.SetEnterHandler(b, func(m *Machine[testSignal, *trace], from StateID, ctx *trace) {
		ctx.add("enter b")
	})

	m := NewMachine(g, a)
	m.Reset(b)
	if m.Current() != b {
		t.Errorf("Reset(b) current = %s", m.CurrentName())
	}
	m.Reset(StateID(99))
	if m.Current() != b {
		t.Errorf("Reset to unknown state changed current to %d", m.Current())
	}
	if len(tr.calls) != 0 {
		t.Errorf("Reset ran hooks: %v", tr.calls)
	}
}

func TestLookupAndName(t *testing.T) {
	g, a, b, _ := newTestGraph()

	if g.Lookup("b") != b {
		t.Errorf("Lookup(b) = %d, want %d", g.Lookup("b"), b)
	}
	if g.Lookup("missing") != NoState {
		t.Error("Lookup(missing) should return NoState")
	}
	if g.Name(a) != "a" {
		t.Errorf("Name(a) = %q", g.Name(a))
	}
	if g.Name(NoState) != "" {
		t.Errorf("Name(NoState) = %q, want empty", g.Name(NoState))
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

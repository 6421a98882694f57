package capture

import (
	"sync"
	"time"
)

// MockSource plays back scripted ticks for testing. Each Poll returns the
// next batch; an empty batch is a tick with no input.
type MockSource struct {
	ticks   [][]Message
	index   int
	loop    bool
	mu      sync.Mutex
	running bool
	err     error
}

func NewMockSource(ticks [][]Message, loop bool) *MockSource {
	return &MockSource{
		ticks: ticks,
		loop:  loop,
	}
}

func (s *MockSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.index = 0
	return nil
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Poll returns the next scripted batch. Once the script is exhausted (and not
// looping) it returns empty ticks, which the classifier sees as no_position.
func (s *MockSource) Poll(timeout time.Duration) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ErrSourceClosed
	}
	if s.err != nil {
		return nil, s.err
	}

	if s.index >= len(s.ticks) {
		if !s.loop || len(s.ticks) == 0 {
			return nil, nil
		}
		s.index = 0
	}

	batch := s.ticks[s.index]
	s.index++

	out := make([]Message, len(batch))
	copy(out, batch)
	return out, nil
}

// SetError makes subsequent polls fail with err until cleared with nil.
func (s *MockSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetTicks replaces the script
func (s *MockSource) SetTicks(ticks [][]Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = ticks
	s.index = 0
}

// Remaining returns the number of scripted ticks not yet played.
func (s *MockSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.ticks) {
		return 0
	}
	return len(s.ticks) - s.index
}

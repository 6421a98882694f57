package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/ayusman/mudra/internal/metrics"
)

// Default bus settings
const (
	DefaultAddr            = ":9700"
	DefaultPositionPath    = "/mouse"
	DefaultCalibrationPath = "/calibration"

	maxPacketSize = 65535
)

// OSCConfig configures an OSC receiver.
type OSCConfig struct {
	Addr            string
	PositionPath    string
	CalibrationPath string
	Arity           int
}

// DefaultOSCConfig returns an OSCConfig with the default channel layout.
func DefaultOSCConfig() OSCConfig {
	return OSCConfig{
		Addr:            DefaultAddr,
		PositionPath:    DefaultPositionPath,
		CalibrationPath: DefaultCalibrationPath,
		Arity:           DefaultArity,
	}
}

// OSCSource receives OSC packets over UDP.
type OSCSource struct {
	config  OSCConfig
	conn    net.PacketConn
	buf     []byte
	mu      sync.Mutex
	running bool
	dropped int
}

// NewOSCSource creates a receiver. The socket is bound by Open.
func NewOSCSource(config OSCConfig) *OSCSource {
	if config.Arity < MinArity {
		config.Arity = DefaultArity
	}
	return &OSCSource{
		config: config,
		buf:    make([]byte, maxPacketSize),
	}
}

// Open binds the UDP socket.
func (s *OSCSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	conn, err := net.ListenPacket("udp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	s.conn = conn
	s.running = true
	return nil
}

// Close releases the socket. A Poll in progress returns ErrSourceClosed.
func (s *OSCSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.conn == nil {
		s.running = false
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.running = false
	return err
}

// Addr returns the bound address, or nil when closed.
func (s *OSCSource) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Dropped returns how many packets or messages failed to decode.
func (s *OSCSource) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Poll reads packets until timeout elapses.
func (s *OSCSource) Poll(timeout time.Duration) ([]Message, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil, ErrSourceClosed
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	var out []Message
	for {
		n, _, err := conn.ReadFrom(s.buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return out, nil
			}
			if errors.Is(err, net.ErrClosed) {
				return out, ErrSourceClosed
			}
			return out, fmt.Errorf("read packet: %w", err)
		}

		packet, err := osc.ParsePacket(string(s.buf[:n]))
		if err != nil {
			s.drop("parse packet", err)
			continue
		}
		out = s.collect(out, packet, time.Now())
	}
}

// collect flattens a packet into decoded messages.
func (s *OSCSource) collect(out []Message, packet osc.Packet, at time.Time) []Message {
	switch p := packet.(type) {
	case *osc.Message:
		m, ok, err := s.decode(p, at)
		if err != nil {
			s.drop(p.Address, err)
			return out
		}
		if ok {
			out = append(out, m)
		}
	case *osc.Bundle:
		for _, m := range p.Messages {
			out = s.collect(out, m, at)
		}
		for _, b := range p.Bundles {
			out = s.collect(out, b, at)
		}
	}
	return out
}

// decode returns ok=false for addresses this source does not listen to.
func (s *OSCSource) decode(m *osc.Message, at time.Time) (Message, bool, error) {
	switch m.Address {
	case s.config.PositionPath:
		msg, err := DecodePosition(m.Arguments, s.config.Arity, at)
		return msg, err == nil, err
	case s.config.CalibrationPath:
		msg, err := DecodeCalibration(m.Arguments, at)
		return msg, err == nil, err
	default:
		return Message{}, false, nil
	}
}

func (s *OSCSource) drop(what string, err error) {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
	metrics.MessagesDropped.Inc()
	slog.Debug("Dropped bus message", "address", what, "error", err)
}

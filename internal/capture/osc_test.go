package capture

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

func openTestSource(t *testing.T, arity int) *OSCSource {
	t.Helper()

	cfg := DefaultOSCConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Arity = arity

	src := NewOSCSource(cfg)
	if err := src.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func sendPacket(t *testing.T, addr net.Addr, packet osc.Packet) {
	t.Helper()

	data, err := packet.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}

	conn, err := net.Dial("udp", addr.String())
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		t.Fatalf("write error = %v", err)
	}
}

func TestOSCSource_ReceivesPositionAndCalibration(t *testing.T) {
	src := openTestSource(t, 6)

	sendPacket(t, src.Addr(), osc.NewMessage("/calibration", float32(1), float32(1024), float32(0), float32(0)))
	sendPacket(t, src.Addr(), osc.NewMessage("/mouse",
		float32(0), float32(100), float32(200), float32(0), float32(0), float32(1)))

	msgs, err := src.Poll(200 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	if msgs[0].Kind != KindCalibration || msgs[0].ID != 1 || msgs[0].X != 1024 {
		t.Errorf("unexpected calibration message %+v", msgs[0])
	}
	if msgs[1].Kind != KindPosition || msgs[1].X != 100 || msgs[1].Y != 200 || !msgs[1].Contact {
		t.Errorf("unexpected position message %+v", msgs[1])
	}
}

func TestOSCSource_FlattensBundles(t *testing.T) {
	src := openTestSource(t, 4)

	bundle := osc.NewBundle(time.Now())
	bundle.Append(osc.NewMessage("/mouse", float32(0), float32(1), float32(2), float32(0)))
	bundle.Append(osc.NewMessage("/mouse", float32(0), float32(3), float32(4), float32(0)))
	sendPacket(t, src.Addr(), bundle)

	msgs, err := src.Poll(200 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages from bundle, got %d", len(msgs))
	}
	if msgs[1].X != 3 || msgs[1].Y != 4 {
		t.Errorf("bundle order not preserved: %+v", msgs)
	}
}

func TestOSCSource_DropsMalformedAndIgnoresUnknown(t *testing.T) {
	src := openTestSource(t, 4)

	sendPacket(t, src.Addr(), osc.NewMessage("/mouse", float32(0), float32(1)))
	sendPacket(t, src.Addr(), osc.NewMessage("/other", float32(0), float32(1), float32(2), float32(3)))

	msgs, err := src.Poll(200 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %+v", msgs)
	}
	if src.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", src.Dropped())
	}
}

func TestOSCSource_PollTimesOutEmpty(t *testing.T) {
	src := openTestSource(t, 4)

	start := time.Now()
	msgs, err := src.Poll(30 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty tick, got %d messages", len(msgs))
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Poll returned after %v, expected to wait for the timeout", elapsed)
	}
}

func TestOSCSource_PollClosed(t *testing.T) {
	src := NewOSCSource(DefaultOSCConfig())

	if _, err := src.Poll(10 * time.Millisecond); !errors.Is(err, ErrSourceClosed) {
		t.Errorf("expected ErrSourceClosed, got %v", err)
	}
}

func TestNewOSCSource_DefaultsArity(t *testing.T) {
	src := NewOSCSource(OSCConfig{Arity: 1})
	if src.config.Arity != DefaultArity {
		t.Errorf("Arity = %d, want %d", src.config.Arity, DefaultArity)
	}
}

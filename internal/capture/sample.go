// Package capture receives pointer samples and calibration points from the
// signal bus.
package capture

import "time"

// Kind identifies the channel a message arrived on.
type Kind int

const (
	// KindPosition carries a pointer position and contact flag.
	KindPosition Kind = iota
	// KindCalibration carries one calibration reference point.
	KindCalibration
)

// String returns the channel name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindCalibration:
		return "calibration"
	default:
		return "unknown"
	}
}

// Message is one decoded bus message.
type Message struct {
	Kind       Kind
	ID         int
	X          float64
	Y          float64
	Z          float64
	W          float64
	Contact    bool
	ReceivedAt time.Time
}

// Position builds a position message.
func Position(x, y float64, contact bool) Message {
	return Message{Kind: KindPosition, X: x, Y: y, Contact: contact, ReceivedAt: time.Now()}
}

// Calibration builds a calibration message for slot id.
func Calibration(id int, x, y float64) Message {
	return Message{Kind: KindCalibration, ID: id, X: x, Y: y, ReceivedAt: time.Now()}
}

// Sample is the most recent pointer reading.
//
// X and Y are display coordinates: equal to RawX and RawY until a
// calibration transform is available, projected afterwards. Updated marks a
// sample that arrived during the current tick and is cleared by the loop
// once the tick has been classified.
type Sample struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	RawX      float64   `json:"raw_x"`
	RawY      float64   `json:"raw_y"`
	Z         float64   `json:"z"`
	W         float64   `json:"w"`
	Contact   bool      `json:"contact"`
	Timestamp time.Time `json:"timestamp"`
	Updated   bool      `json:"updated"`
}

// Apply copies a position message into the sample and marks it fresh.
func (s *Sample) Apply(m Message) {
	s.RawX = m.X
	s.RawY = m.Y
	s.X = m.X
	s.Y = m.Y
	s.Z = m.Z
	s.W = m.W
	s.Contact = m.Contact
	s.Timestamp = m.ReceivedAt
	s.Updated = true
}

// Consume clears the freshness marker.
func (s *Sample) Consume() {
	s.Updated = false
}

// Package calibration maps raw sensor coordinates onto the display using a
// four-point projective transform.
package calibration

// NumPoints is the number of calibration reference points.
const NumPoints = 4

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Slot holds one calibration reference point.
type Slot struct {
	Set bool    `json:"set"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// PointSet accumulates the four reference points. Slot i pairs with target
// corner i: top-left, top-right, bottom-left, bottom-right.
type PointSet struct {
	slots [NumPoints]Slot
}

// Record stores (x, y) in slot id. Ids outside [0, NumPoints) are ignored
// and Record returns false.
func (p *PointSet) Record(id int, x, y float64) bool {
	if id < 0 || id >= NumPoints {
		return false
	}
	p.slots[id] = Slot{Set: true, X: x, Y: y}
	return true
}

// AllSet reports whether every slot has been recorded.
func (p *PointSet) AllSet() bool {
	for _, s := range p.slots {
		if !s.Set {
			return false
		}
	}
	return true
}

// Count returns the number of recorded slots.
func (p *PointSet) Count() int {
	n := 0
	for _, s := range p.slots {
		if s.Set {
			n++
		}
	}
	return n
}

// Reset clears all slots.
func (p *PointSet) Reset() {
	p.slots = [NumPoints]Slot{}
}

// Slots returns a copy of the slots.
func (p *PointSet) Slots() [NumPoints]Slot {
	return p.slots
}

// Points returns the recorded coordinates in slot order.
func (p *PointSet) Points() [NumPoints]Point {
	var pts [NumPoints]Point
	for i, s := range p.slots {
		pts[i] = Point{X: s.X, Y: s.Y}
	}
	return pts
}

// Target returns the display rectangle inset by margin on every side, in
// slot order.
func Target(width, height, margin float64) [NumPoints]Point {
	return [NumPoints]Point{
		{X: margin, Y: margin},
		{X: width - margin, Y: margin},
		{X: margin, Y: height - margin},
		{X: width - margin, Y: height - margin},
	}
}

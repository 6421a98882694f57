package actuator

import (
	"math"

	"github.com/go-vgo/robotgo"
)

// Robotgo moves the OS pointer through robotgo.
type Robotgo struct{}

// NewRobotgo returns a Robotgo actuator.
func NewRobotgo() *Robotgo {
	return &Robotgo{}
}

// Move warps the pointer to (x, y), rounded to whole pixels.
func (r *Robotgo) Move(x, y float64) error {
	robotgo.Move(int(math.Round(x)), int(math.Round(y)))
	return nil
}

// ButtonDown presses b without releasing it.
func (r *Robotgo) ButtonDown(b Button) error {
	robotgo.Toggle(robotgoButton(b))
	return nil
}

// ButtonUp releases b.
func (r *Robotgo) ButtonUp(b Button) error {
	robotgo.Toggle(robotgoButton(b), "up")
	return nil
}

// Click presses and releases b.
func (r *Robotgo) Click(b Button) error {
	robotgo.Click(robotgoButton(b))
	return nil
}

// robotgo names the middle button "center".
func robotgoButton(b Button) string {
	if b == ButtonMiddle {
		return "center"
	}
	return b.String()
}

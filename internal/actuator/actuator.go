// Package actuator drives the OS pointer on behalf of the gesture classifier.
package actuator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/plugin"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// String returns the lower-case button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// ParseButton parses a button name. The empty string is the left button.
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return ButtonLeft, nil
	case "middle", "center":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	default:
		return ButtonLeft, fmt.Errorf("unknown button %q", s)
	}
}

// Actuator issues pointer commands.
type Actuator interface {
	Move(x, y float64) error
	ButtonDown(b Button) error
	ButtonUp(b Button) error
	Click(b Button) error
}

// Backend names accepted by New.
const (
	BackendRobotgo = "robotgo"
	BackendPlugin  = "plugin"
	BackendDryRun  = "dry-run"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Plugins, Plugin and Executor are used by the plugin backend.
	Plugins  *plugin.Manager
	Plugin   string
	Executor *plugin.Executor
}

// New returns the actuator for opts.Backend.
func New(ctx context.Context, opts Options) (Actuator, error) {
	switch opts.Backend {
	case BackendRobotgo, "":
		return NewRobotgo(), nil
	case BackendPlugin:
		if opts.Plugins == nil || opts.Executor == nil {
			return nil, errors.New("plugin backend requires a plugin manager and executor")
		}
		return NewPluginActuator(ctx, opts.Plugins, opts.Plugin, opts.Executor)
	case BackendDryRun:
		return NewRecorder(), nil
	default:
		return nil, fmt.Errorf("unknown actuator backend %q", opts.Backend)
	}
}

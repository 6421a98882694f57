package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/plugin"
)

// StateFunc reports the classifier state attached to plugin requests.
type StateFunc func() string

// PluginActuator forwards pointer commands to an external plugin.
type PluginActuator struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
	state    StateFunc
	ctx      context.Context
}

// NewPluginActuator resolves name in the manager and returns an actuator
// that runs it with the executor.
func NewPluginActuator(ctx context.Context, mgr *plugin.Manager, name string, executor *plugin.Executor) (*PluginActuator, error) {
	p, err := mgr.Get(name)
	if err != nil {
		return nil, fmt.Errorf("actuator plugin %q: %w", name, err)
	}
	return &PluginActuator{plugin: p, executor: executor, ctx: ctx}, nil
}

// SetStateFunc sets the callback used to fill Request.State.
func (a *PluginActuator) SetStateFunc(fn StateFunc) {
	a.state = fn
}

// Plugin returns the underlying plugin.
func (a *PluginActuator) Plugin() *plugin.Plugin {
	return a.plugin
}

func (a *PluginActuator) Move(x, y float64) error {
	return a.send(plugin.ActionMove, plugin.PointerParams{X: x, Y: y})
}

func (a *PluginActuator) ButtonDown(b Button) error {
	return a.send(plugin.ActionButtonDown, plugin.PointerParams{Button: b.String()})
}

func (a *PluginActuator) ButtonUp(b Button) error {
	return a.send(plugin.ActionButtonUp, plugin.PointerParams{Button: b.String()})
}

func (a *PluginActuator) Click(b Button) error {
	return a.send(plugin.ActionClick, plugin.PointerParams{Button: b.String()})
}

func (a *PluginActuator) send(action string, params plugin.PointerParams) error {
	if !a.plugin.Manifest.Supports(action) {
		return fmt.Errorf("plugin %s does not support %s", a.plugin.Manifest.Name, action)
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &plugin.Request{Action: action, Params: raw}
	if a.state != nil {
		req.State = a.state()
	}

	resp, err := a.executor.ExecuteContext(a.ctx, a.plugin, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error == "" {
			return errors.New("plugin reported failure")
		}
		return errors.New(resp.Error)
	}
	return nil
}

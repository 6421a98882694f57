// Package main provides a pointer plugin for X11 desktops.
// It moves the pointer and presses buttons via xdotool.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	State  string          `json:"state"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PointerParams carries the target position and button.
type PointerParams struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"`
}

// buttonMap maps button names to X11 button numbers.
var buttonMap = map[string]string{
	"":       "1",
	"left":   "1",
	"middle": "2",
	"right":  "3",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	args, err := buildArgs(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	if err := runXdotool(args); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// buildArgs converts a request into xdotool arguments.
func buildArgs(req Request) ([]string, error) {
	var p PointerParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
	}

	button, ok := buttonMap[p.Button]
	if !ok {
		return nil, fmt.Errorf("unknown button: %s", p.Button)
	}

	switch req.Action {
	case "move":
		return []string{"mousemove", coord(p.X), coord(p.Y)}, nil
	case "button-down":
		return []string{"mousedown", button}, nil
	case "button-up":
		return []string{"mouseup", button}, nil
	case "click":
		return []string{"click", button}, nil
	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}
}

func coord(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runXdotool executes xdotool and returns any error.
func runXdotool(args []string) error {
	output, err := exec.Command("xdotool", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

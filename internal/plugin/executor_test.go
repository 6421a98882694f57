package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest:   Manifest{Name: name, Version: "1.0.0", Executable: name + ".sh"},
		Path:       dir,
		Executable: path,
	}
}

func pointerRequest(action string, x, y float64) *Request {
	params, _ := json.Marshal(PointerParams{X: x, Y: y, Button: "left"})
	return &Request{Action: action, State: "move", Params: params}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, "ok", `echo '{"success":true,"data":{"message":"moved"}}'`)

	resp, err := NewExecutor(5000).Execute(p, pointerRequest(ActionMove, 10, 20))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("unexpected response %+v", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal data: %v", err)
	}
	if data["message"] != "moved" {
		t.Errorf("expected message 'moved', got %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	p := scriptPlugin(t, "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	resp, err := NewExecutor(5000).Execute(p, pointerRequest(ActionButtonDown, 3.5, 7))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received struct {
			Action string        `json:"action"`
			State  string        `json:"state"`
			Params PointerParams `json:"params"`
		} `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal data: %v", err)
	}

	got := data.Received
	if got.Action != ActionButtonDown {
		t.Errorf("expected action %q, got %q", ActionButtonDown, got.Action)
	}
	if got.State != "move" {
		t.Errorf("expected state 'move', got %q", got.State)
	}
	if got.Params.X != 3.5 || got.Params.Y != 7 || got.Params.Button != "left" {
		t.Errorf("unexpected params %+v", got.Params)
	}
}

func TestExecutor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout int
		substr  string
	}{
		{"timeout", "sleep 10\necho '{\"success\":true}'\n", 100, "timeout"},
		{"invalid-json", "echo 'not valid json'\n", 5000, "parse"},
		{"non-zero-exit", "echo 'boom' >&2\nexit 1\n", 5000, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scriptPlugin(t, tt.name, tt.script)
			_, err := NewExecutor(tt.timeout).Execute(p, pointerRequest(ActionClick, 0, 0))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("expected error containing %q, got %v", tt.substr, err)
			}
		})
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	p := scriptPlugin(t, "fail", `echo '{"success":false,"error":"no display"}'`)

	resp, err := NewExecutor(5000).Execute(p, pointerRequest(ActionClick, 0, 0))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "no display" {
		t.Errorf("expected error 'no display', got %q", resp.Error)
	}
}

func TestExecutor_ExecuteContext_Cancelled(t *testing.T) {
	p := scriptPlugin(t, "slow", "sleep 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := NewExecutor(5000).ExecuteContext(ctx, p, pointerRequest(ActionMove, 0, 0)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancelled call did not return promptly")
	}
}

func TestNewExecutor(t *testing.T) {
	executor := NewExecutor(3000)
	if executor.Timeout() != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", executor.Timeout())
	}
}

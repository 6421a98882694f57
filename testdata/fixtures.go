// Package testdata embeds recorded OSC traces used by integration tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/ayusman/mudra/internal/capture"
)

//go:embed traces/*.json
var tracesFS embed.FS

// Packet is one OSC message in a trace.
type Packet struct {
	Path string    `json:"path"`
	Args []float64 `json:"args"`
}

// OSC builds the wire message with float32 arguments.
func (p Packet) OSC() *osc.Message {
	msg := osc.NewMessage(p.Path)
	for _, a := range p.Args {
		msg.Append(float32(a))
	}
	return msg
}

// Trace is a sequence of ticks, each holding the packets that arrived
// during it.
type Trace struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Arity       int        `json:"arity"`
	Ticks       [][]Packet `json:"ticks"`
}

// LoadTrace loads a trace by name, without the .json suffix.
func LoadTrace(name string) (*Trace, error) {
	data, err := tracesFS.ReadFile("traces/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load trace %s: %w", name, err)
	}

	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode trace %s: %w", name, err)
	}
	return &t, nil
}

// Names lists the embedded traces.
func Names() ([]string, error) {
	entries, err := tracesFS.ReadDir("traces")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}

// Messages decodes the trace on the default channels, dropping packets the
// bus would drop. The result plays back through capture.MockSource.
func (t *Trace) Messages() [][]capture.Message {
	at := time.Now()
	ticks := make([][]capture.Message, len(t.Ticks))
	for i, tick := range t.Ticks {
		ticks[i] = []capture.Message{}
		for _, p := range tick {
			args := make([]any, len(p.Args))
			for j, a := range p.Args {
				args[j] = a
			}

			var (
				m   capture.Message
				err error
			)
			switch p.Path {
			case capture.DefaultPositionPath:
				m, err = capture.DecodePosition(args, t.Arity, at)
			case capture.DefaultCalibrationPath:
				m, err = capture.DecodeCalibration(args, at)
			default:
				continue
			}
			if err != nil {
				continue
			}
			ticks[i] = append(ticks[i], m)
		}
	}
	return ticks
}

package capture

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformed is returned for payloads that are too short or not numeric.
var ErrMalformed = errors.New("malformed payload")

// Payload layouts.
const (
	// MinArity is the shortest position payload: [id, x, y].
	MinArity = 3
	// DefaultArity is [id, x, y, extra].
	DefaultArity = 4
	// ContactArity is [id, x, y, z, w, contact], the first layout with a contact flag.
	ContactArity = 6
)

// HasContact reports whether a position payload of the given arity carries a
// contact flag.
func HasContact(arity int) bool {
	return arity >= ContactArity
}

// DecodePosition decodes a position vector of the given arity.
func DecodePosition(args []any, arity int, at time.Time) (Message, error) {
	if arity < MinArity {
		return Message{}, fmt.Errorf("%w: arity %d below %d", ErrMalformed, arity, MinArity)
	}

	values, err := floats(args)
	if err != nil {
		return Message{}, err
	}
	if len(values) < arity {
		return Message{}, fmt.Errorf("%w: got %d values, want %d", ErrMalformed, len(values), arity)
	}

	m := Message{
		Kind:       KindPosition,
		ID:         int(values[0]),
		X:          values[1],
		Y:          values[2],
		ReceivedAt: at,
	}

	switch {
	case HasContact(arity):
		m.Z = values[3]
		m.W = values[4]
		m.Contact = values[5] != 0
	case arity > MinArity:
		m.Z = values[3]
	}

	return m, nil
}

// DecodeCalibration decodes [id, x, y] with optional trailing values.
func DecodeCalibration(args []any, at time.Time) (Message, error) {
	values, err := floats(args)
	if err != nil {
		return Message{}, err
	}
	if len(values) < 3 {
		return Message{}, fmt.Errorf("%w: calibration needs 3 values, got %d", ErrMalformed, len(values))
	}

	return Message{
		Kind:       KindCalibration,
		ID:         int(values[0]),
		X:          values[1],
		Y:          values[2],
		ReceivedAt: at,
	}, nil
}

func floats(args []any) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case float32:
			out[i] = float64(v)
		case float64:
			out[i] = v
		case int32:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		case int:
			out[i] = float64(v)
		case bool:
			if v {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("%w: argument %d has type %T", ErrMalformed, i, a)
		}
	}
	return out, nil
}

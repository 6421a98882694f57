// Package app runs the tick loop that turns bus messages into pointer
// actions.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultPollInterval bounds each tick's wait for input.
const DefaultPollInterval = 25 * time.Millisecond

// controlQueueSize is the number of pending control operations accepted
// before callers get ErrBusy.
const controlQueueSize = 64

var (
	// ErrInvalidSlot is returned for calibration ids outside [0, 4).
	ErrInvalidSlot = errors.New("calibration slot out of range")
	// ErrBusy is returned when the control queue is full.
	ErrBusy = errors.New("control queue full")
)

// Config holds configuration options for the application.
type Config struct {
	Source     capture.Source
	Actuator   actuator.Actuator
	Store      *store.Store // optional
	Projection calibration.Config
	Classifier gesture.Config
	Arity      int
	// PollInterval is the tick length.
	PollInterval time.Duration
	// Track moves the pointer on every fresh sample, not only in move.
	Track bool
	// Retention drops stored events older than this at startup.
	Retention time.Duration
}

// Snapshot is a copy of the loop state after a tick.
type Snapshot struct {
	Tick        uint64                                  `json:"tick"`
	Time        time.Time                               `json:"time"`
	State       string                                  `json:"state"`
	Mode        string                                  `json:"mode"`
	Enabled     bool                                    `json:"enabled"`
	Pressed     bool                                    `json:"pressed"`
	Sample      capture.Sample                          `json:"sample"`
	Calibrated  bool                                    `json:"calibrated"`
	Calibration [calibration.NumPoints]calibration.Slot `json:"calibration"`
	SessionID   string                                  `json:"session_id,omitempty"`
}

// TickListener is called on the loop goroutine after every tick. It must
// not block.
type TickListener func(Snapshot)

// ActionListener is called on the loop goroutine for every actuator call.
type ActionListener func(gesture.Action)

// App owns the loop state. Only the goroutine running Run (or a test
// calling Step) touches the sample, projector and classifier.
type App struct {
	config     Config
	source     capture.Source
	classifier *gesture.Classifier
	projector  *calibration.Projector
	sample     capture.Sample
	tick       uint64
	active     bool

	enabled   atomic.Bool
	controls  chan func()
	sessionID string

	mu              sync.RWMutex
	snapshot        Snapshot
	tickListeners   []TickListener
	actionListeners []ActionListener
}

// New builds an App, restoring calibration and the enabled flag from the
// store when one is configured.
func New(config Config) (*App, error) {
	if config.Source == nil {
		return nil, errors.New("app: source is required")
	}
	if config.Actuator == nil {
		return nil, errors.New("app: actuator is required")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Arity == 0 {
		config.Arity = capture.DefaultArity
	}
	config.Classifier.Mode = config.Classifier.Mode.Resolve(config.Arity)

	classifier, err := gesture.New(config.Classifier, config.Actuator)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	a := &App{
		config:     config,
		source:     config.Source,
		classifier: classifier,
		projector:  calibration.NewProjector(config.Projection),
		controls:   make(chan func(), controlQueueSize),
	}
	classifier.SetObserver(observer{a})

	enabled := true
	if s := config.Store; s != nil {
		if enabled, err = s.Settings().GetBool(store.SettingEnabled, true); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		if err := a.restoreCalibration(); err != nil {
			return nil, err
		}
		if err := a.startSession(); err != nil {
			return nil, err
		}
	}
	a.enabled.Store(enabled)
	a.active = enabled
	metrics.Enabled.Set(boolGauge(enabled))

	a.publish()
	return a, nil
}

func (a *App) restoreCalibration() error {
	slots, err := a.config.Store.Calibration().Load()
	if err != nil {
		return fmt.Errorf("failed to load calibration: %w", err)
	}
	for i, s := range slots {
		if s.Set {
			a.projector.Record(i, s.X, s.Y)
		}
	}
	if err := a.projector.Update(); err != nil {
		slog.Warn("Stored calibration rejected", "error", err)
	}
	pts := a.projector.Points()
	metrics.CalibrationPoints.Set(float64(pts.Count()))
	slog.Info("Restored calibration", "points", pts.Count(), "ready", a.projector.Ready())
	return nil
}

func (a *App) startSession() error {
	s := a.config.Store

	if a.config.Retention > 0 {
		n, err := s.Events().DeleteBefore(time.Now().Add(-a.config.Retention))
		if err != nil {
			return fmt.Errorf("failed to prune events: %w", err)
		}
		if n > 0 {
			slog.Info("Pruned old events", "count", n)
		}
	}

	sess := &store.Session{Arity: a.config.Arity, Mode: a.classifier.Mode().String()}
	if err := s.Sessions().Create(sess); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.sessionID = sess.ID
	return nil
}

// Close ends the session. Call after Run returns.
func (a *App) Close() error {
	if a.config.Store == nil || a.sessionID == "" {
		return nil
	}
	return a.config.Store.Sessions().End(a.sessionID)
}

// SessionID returns the id of the stored session, if any.
func (a *App) SessionID() string {
	return a.sessionID
}

// SetEnabled turns gesture detection on or off. Disabling releases a held
// button on the next tick.
func (a *App) SetEnabled(enabled bool) {
	if a.enabled.Swap(enabled) == enabled {
		return
	}
	metrics.Enabled.Set(boolGauge(enabled))
	slog.Info("Gesture detection toggled", "enabled", enabled)

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			slog.Warn("Failed to persist enabled flag", "error", err)
		}
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// SubmitCalibration queues a calibration point for the next tick.
func (a *App) SubmitCalibration(id int, x, y float64) error {
	if id < 0 || id >= calibration.NumPoints {
		return ErrInvalidSlot
	}
	return a.enqueue(func() { a.recordCalibration(id, x, y) })
}

// ResetCalibration queues removal of all calibration points.
func (a *App) ResetCalibration() error {
	return a.enqueue(func() {
		a.projector.Reset()
		metrics.CalibrationPoints.Set(0)
		slog.Info("Calibration cleared")
		if a.config.Store != nil {
			if err := a.config.Store.Calibration().Clear(); err != nil {
				slog.Warn("Failed to clear stored calibration", "error", err)
			}
		}
	})
}

func (a *App) enqueue(op func()) error {
	select {
	case a.controls <- op:
		return nil
	default:
		return ErrBusy
	}
}

func (a *App) recordCalibration(id int, x, y float64) {
	if !a.projector.Record(id, x, y) {
		slog.Debug("Ignored calibration point", "id", id)
		return
	}
	pts := a.projector.Points()
	metrics.CalibrationPoints.Set(float64(pts.Count()))
	slog.Info("Calibration point recorded", "id", id, "x", x, "y", y)

	if a.config.Store != nil {
		if err := a.config.Store.Calibration().Save(id, x, y); err != nil {
			slog.Warn("Failed to persist calibration point", "id", id, "error", err)
		}
	}
}

// Snapshot returns the state published by the last tick.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// OnTick registers a listener for published snapshots.
func (a *App) OnTick(fn TickListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tickListeners = append(a.tickListeners, fn)
}

// OnAction registers a listener for actuator calls.
func (a *App) OnAction(fn ActionListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actionListeners = append(a.actionListeners, fn)
}

// observer feeds classifier activity into metrics, the event log and
// action listeners.
type observer struct{ a *App }

func (o observer) OnTransition(from, to string, signal gesture.Signal) {
	metrics.Transitions.WithLabelValues(from, to).Inc()
}

func (o observer) OnAction(action gesture.Action, err error) {
	o.a.handleAction(action, err)
}

// handleAction counts the call and writes presses, releases and clicks to
// the event log.
func (a *App) handleAction(action gesture.Action, err error) {
	kind := action.Kind.String()
	metrics.Actions.WithLabelValues(kind).Inc()
	if err != nil {
		metrics.ActionErrors.WithLabelValues(kind).Inc()
	}

	if action.Kind != actuator.KindMove {
		slog.Info("Pointer action", "action", kind, "x", action.X, "y", action.Y, "state", action.State)
		a.recordEvent(action)
	}

	a.mu.RLock()
	listeners := a.actionListeners
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(action)
	}
}

func (a *App) recordEvent(action gesture.Action) {
	if a.config.Store == nil || a.sessionID == "" {
		return
	}
	e := &store.Event{
		SessionID: a.sessionID,
		Kind:      action.Kind.String(),
		X:         action.X,
		Y:         action.Y,
		State:     action.State,
	}
	if err := a.config.Store.Events().Create(e); err != nil {
		slog.Warn("Failed to record event", "error", err)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

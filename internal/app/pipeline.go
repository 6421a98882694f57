package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/metrics"
)

// Run opens the source and processes ticks until ctx is cancelled or the
// source closes. Cancellation is checked once per tick, so a tick in
// progress always completes. On return any held button is released.
func (a *App) Run(ctx context.Context) error {
	if err := a.source.Open(); err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer a.source.Close()
	defer a.classifier.Reset()

	slog.Info("Tick loop started",
		"mode", a.classifier.Mode().String(),
		"arity", a.config.Arity,
		"interval", a.config.PollInterval)

	for {
		if ctx.Err() != nil {
			slog.Info("Tick loop stopped", "ticks", a.tick)
			return nil
		}

		msgs, err := a.source.Poll(a.config.PollInterval)
		if err != nil {
			if errors.Is(err, capture.ErrSourceClosed) {
				return err
			}
			metrics.PollErrors.Inc()
			slog.Warn("Poll failed, skipping tick", "error", err)
			a.pause(ctx)
			continue
		}

		a.Step(msgs)
	}
}

// pause waits one poll interval so a failing source does not spin.
func (a *App) pause(ctx context.Context) {
	t := time.NewTimer(a.config.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Step processes one tick worth of messages:
//
//  1. Apply queued control operations (calibration edits)
//  2. Apply bus messages to the sample and the point set
//  3. Refresh the transform and project the fresh sample
//  4. Classify and step the gesture machine when enabled
//  5. Publish a snapshot and clear the freshness marker
func (a *App) Step(msgs []capture.Message) Snapshot {
	start := time.Now()

	a.drainControls()

	for _, m := range msgs {
		a.apply(m)
	}

	if err := a.projector.Update(); err != nil {
		slog.Warn("Calibration rejected", "error", err)
	}
	if a.sample.Updated && a.projector.Ready() {
		a.sample.X, a.sample.Y = a.projector.Project(a.sample.RawX, a.sample.RawY)
	}

	enabled := a.enabled.Load()
	if a.active && !enabled {
		a.classifier.Reset()
	}
	a.active = enabled

	if enabled {
		signal := gesture.Classify(&a.sample)
		a.classifier.Step(signal, &a.sample)
		if a.config.Track && a.sample.Updated {
			a.classifier.Track(&a.sample)
		}
	}

	a.tick++
	slog.Debug("Tick",
		"tick", a.tick,
		"x", a.sample.X,
		"y", a.sample.Y,
		"contact", a.sample.Contact,
		"state", a.classifier.State())

	snap := a.publish()
	a.sample.Consume()

	metrics.Ticks.Inc()
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	return snap
}

func (a *App) drainControls() {
	for {
		select {
		case op := <-a.controls:
			op()
		default:
			return
		}
	}
}

func (a *App) apply(m capture.Message) {
	metrics.MessagesReceived.WithLabelValues(m.Kind.String()).Inc()

	switch m.Kind {
	case capture.KindPosition:
		a.sample.Apply(m)
	case capture.KindCalibration:
		a.recordCalibration(m.ID, m.X, m.Y)
	}
}

func (a *App) publish() Snapshot {
	points := a.projector.Points()
	snap := Snapshot{
		Tick:        a.tick,
		Time:        time.Now(),
		State:       a.classifier.State(),
		Mode:        a.classifier.Mode().String(),
		Enabled:     a.enabled.Load(),
		Pressed:     a.classifier.Pressed(),
		Sample:      a.sample,
		Calibrated:  a.projector.Ready(),
		Calibration: points.Slots(),
		SessionID:   a.sessionID,
	}

	a.mu.Lock()
	a.snapshot = snap
	listeners := a.tickListeners
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

package store

import (
	"errors"
	"testing"
	"time"
)

func TestCalibrationRepository(t *testing.T) {
	repo := newTestStore(t).Calibration()

	slots, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for i, s := range slots {
		if s.Set {
			t.Errorf("slot %d set on empty store", i)
		}
	}

	if err := repo.Save(0, 1, 2); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(3, 30, 40); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(0, 5, 6); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	if err := repo.Save(7, 0, 0); err == nil {
		t.Error("Save() accepted slot 7")
	}

	slots, err = repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slots[0].Set || slots[0].X != 5 || slots[0].Y != 6 {
		t.Errorf("slot 0 = %+v, want (5, 6)", slots[0])
	}
	if !slots[3].Set || slots[3].X != 30 || slots[3].Y != 40 {
		t.Errorf("slot 3 = %+v, want (30, 40)", slots[3])
	}
	if slots[1].Set || slots[2].Set {
		t.Error("slots 1 and 2 should be unset")
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	slots, _ = repo.Load()
	for i, s := range slots {
		if s.Set {
			t.Errorf("slot %d still set after Clear", i)
		}
	}
}

func TestSettingsRepository(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Set("a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("a", "2"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if v, _ := repo.Get("a"); v != "2" {
		t.Errorf("Get() = %q, want 2", v)
	}

	on, err := repo.GetBool(SettingEnabled, true)
	if err != nil || !on {
		t.Errorf("GetBool() default = %v, %v", on, err)
	}
	repo.SetBool(SettingEnabled, false)
	if on, _ := repo.GetBool(SettingEnabled, true); on {
		t.Error("GetBool() should return stored false")
	}

	repo.Set("junk", "maybe")
	if v, _ := repo.GetBool("junk", true); !v {
		t.Error("GetBool() should fall back to default on junk")
	}
}

func TestSessionRepository(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := &Session{Arity: 6, Mode: "contact"}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" || sess.StartedAt.IsZero() {
		t.Fatalf("Create() did not fill id/start: %+v", sess)
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Arity != 6 || got.Mode != "contact" || got.EndedAt != nil {
		t.Errorf("GetByID() = %+v", got)
	}

	if err := repo.End(sess.ID); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	got, _ = repo.GetByID(sess.ID)
	if got.EndedAt == nil {
		t.Error("EndedAt not set after End")
	}

	if err := repo.End("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("End(unknown) = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(unknown) = %v, want ErrNotFound", err)
	}
}

func TestEventRepository(t *testing.T) {
	s := newTestStore(t)
	sess := &Session{Arity: 6, Mode: "contact"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create session error = %v", err)
	}
	repo := s.Events()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	kinds := []string{"press", "release", "click"}
	for i, kind := range kinds {
		e := &Event{
			SessionID: sess.ID,
			Kind:      kind,
			X:         float64(i),
			Y:         float64(i * 2),
			State:     "click",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if e.ID == "" {
			t.Fatal("Create() did not assign an id")
		}
	}

	if err := repo.Create(&Event{SessionID: sess.ID, Kind: "scroll", State: "x"}); err == nil {
		t.Error("Create() accepted unknown kind")
	}

	events, err := repo.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("List() returned %d events, want 3", len(events))
	}
	if events[0].Kind != "click" || events[2].Kind != "press" {
		t.Errorf("List() order = %s..%s, want newest first", events[0].Kind, events[2].Kind)
	}
	if !events[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v", events[0].CreatedAt)
	}

	if events, _ := repo.List(1); len(events) != 1 {
		t.Errorf("List(1) returned %d events", len(events))
	}

	n, err := repo.DeleteBefore(base.Add(90 * time.Second))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteBefore() removed %d, want 2", n)
	}
	events, _ = repo.List(0)
	if len(events) != 1 || events[0].Kind != "click" {
		t.Errorf("remaining events = %+v", events)
	}
}

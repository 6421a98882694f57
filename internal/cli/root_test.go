package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/actuator"
)

func TestParseArity(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"4", 4, false},
		{"6", 6, false},
		{"3", 3, false},
		{"2", 0, true},
		{"four", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseArity(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseArity(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mudra.yaml")
	if err := os.WriteFile(path, []byte("bus:\n  arity: 4\nserver:\n  addr: 127.0.0.1:1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	oldPath, oldAddr, oldDry := cfgPath, addr, dryRun
	t.Cleanup(func() { cfgPath, addr, dryRun = oldPath, oldAddr, oldDry })

	cfgPath = path
	addr = "127.0.0.1:2"
	dryRun = true

	cfg, err := loadConfig([]string{"6"})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Bus.Arity != 6 {
		t.Errorf("arity = %d, want 6", cfg.Bus.Arity)
	}
	if cfg.Server.Addr != "127.0.0.1:2" {
		t.Errorf("addr = %q, want override", cfg.Server.Addr)
	}
	if cfg.Actuator.Backend != actuator.BackendDryRun {
		t.Errorf("backend = %q, want dry-run", cfg.Actuator.Backend)
	}

	if _, err := loadConfig([]string{"1"}); err == nil {
		t.Error("expected error for arity below minimum")
	}
}

func TestOpenStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "mudra.db")

	st, err := openStore(path)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestStaticDir(t *testing.T) {
	if got := staticDir("/srv/mudra"); got != "/srv/mudra" {
		t.Errorf("staticDir() = %q, want configured dir", got)
	}
}

func TestCommands_Registered(t *testing.T) {
	want := map[string]bool{"events": false, "calibration": false, "plugins": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

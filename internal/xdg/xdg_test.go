package xdg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDirHonoursEnv(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("perm = %o, want 700", perm)
	}
}

func TestStateDirFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() error = %v", err)
	}
	if want := filepath.Join(home, ".local", "state", AppName); dir != want {
		t.Errorf("StateDir() = %q, want %q", dir, want)
	}
}

package paths

import (
	"os"
	"path/filepath"
)

func DefaultRuntimeDir() string {
	if x := os.Getenv("XDG_RUNTIME_DIR"); x != "" {
		return filepath.Join(x, "jirav")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".jirav")
}

func DefaultStateDir() string {
	if x := os.Getenv("XDG_STATE_HOME"); x != "" {
		return filepath.Join(x, "jirav")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "jirav")
}

func DefaultSocketPath() string  { return filepath.Join(DefaultRuntimeDir(), "daemon.sock") }
func DefaultPIDPath() string     { return filepath.Join(DefaultRuntimeDir(), "daemon.pid") }
func DefaultUploadsPath() string { return filepath.Join(DefaultStateDir(), "uploads.yaml") }

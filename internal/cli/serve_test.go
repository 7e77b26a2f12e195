package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func resetServeFlags() {
	serveConfigPath = ""
	serveListen = ""
	serveWorkers = 0
}

func TestLoadServeConfigDefaults(t *testing.T) {
	resetServeFlags()

	cfg, err := loadServeConfig()
	if err != nil {
		t.Fatalf("loadServeConfig() error = %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":8080")
	}
}

func TestLoadServeConfigFlagOverrides(t *testing.T) {
	resetServeFlags()

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("listen: \":9000\"\nworkers: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	serveConfigPath = path
	serveListen = ":9001"
	serveWorkers = 8

	cfg, err := loadServeConfig()
	if err != nil {
		t.Fatalf("loadServeConfig() error = %v", err)
	}
	if cfg.Listen != ":9001" {
		t.Errorf("Listen = %q, want flag override %q", cfg.Listen, ":9001")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want flag override 8", cfg.Workers)
	}
}

func TestLoadServeConfigBadFile(t *testing.T) {
	resetServeFlags()
	serveConfigPath = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := loadServeConfig(); err == nil {
		t.Fatal("loadServeConfig() with a missing file succeeded")
	}
}

func TestRootCommandHasServe(t *testing.T) {
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "serve" {
			return
		}
	}
	t.Error("root command does not register serve")
}

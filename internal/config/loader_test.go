package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "perfgauge.yaml")

	content := `
listen: ":9090"
workers: 4
queueSize: 64
requestTimeout: 10s
source: thread
sieveLimit: 100000
targetPrimes: 50
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":9090")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.QueueSize != 64 {
		t.Errorf("QueueSize = %d, want 64", cfg.QueueSize)
	}
	if cfg.RequestTimeout.Std() != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout.Std())
	}
	if cfg.Source != SourceThread {
		t.Errorf("Source = %q, want %q", cfg.Source, SourceThread)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() of a missing file succeeded")
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("listen: \":7070\"\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	def := Default()
	if cfg.Listen != ":7070" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":7070")
	}
	if cfg.QueueSize != def.QueueSize {
		t.Errorf("QueueSize = %d, want default %d", cfg.QueueSize, def.QueueSize)
	}
	if cfg.RequestTimeout != def.RequestTimeout {
		t.Errorf("RequestTimeout = %v, want default %v", cfg.RequestTimeout, def.RequestTimeout)
	}
	if cfg.Source != SourceThread {
		t.Errorf("Source = %q, want default %q", cfg.Source, SourceThread)
	}
}

func TestParseEmptyIsAllDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Listen != Default().Listen {
		t.Errorf("Listen = %q, want default %q", cfg.Listen, Default().Listen)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("listne: \":8080\"\n"))
	if err == nil {
		t.Fatal("Parse() accepted a misspelled key")
	}
	if !strings.Contains(err.Error(), "schema") {
		t.Errorf("error = %v, want a schema violation", err)
	}
}

func TestParseRejectsBadSource(t *testing.T) {
	_, err := Parse([]byte("source: goroutine\n"))
	if err == nil {
		t.Fatal("Parse() accepted an unknown source kind")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("requestTimeout: soon\n"))
	if err == nil {
		t.Fatal("Parse() accepted an unparsable duration")
	}
}

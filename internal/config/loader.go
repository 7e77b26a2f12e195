// Package config loads and validates the perfgauge service configuration.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceKind selects which measurement source the workers read from.
type SourceKind string

const (
	// SourceThread measures per worker thread (the default). Allocation
	// tracking is unavailable with this source and renders as DISABLED.
	SourceThread SourceKind = "thread"

	// SourceProcess measures the whole process. Allocation tracking works,
	// but readings are only attributable with a single worker.
	SourceProcess SourceKind = "process"
)

// Duration wraps time.Duration so YAML can say "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`
}

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Workers is the worker pool size; 0 means one per CPU.
	Workers int `yaml:"workers"`

	// QueueSize is the capacity of the operation work queue.
	QueueSize int `yaml:"queueSize"`

	// RequestTimeout bounds how long a request waits for its operation
	// before answering with partial results.
	RequestTimeout Duration `yaml:"requestTimeout"`

	// Source selects the measurement source: thread or process.
	Source SourceKind `yaml:"source"`

	// SieveLimit caps the upper bound handed to the prime sieve.
	SieveLimit int `yaml:"sieveLimit"`

	// TargetPrimes is how many sieve-found primes complete an operation.
	TargetPrimes int `yaml:"targetPrimes"`

	Log LogConfig `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		Workers:        runtime.NumCPU(),
		QueueSize:      256,
		RequestTimeout: Duration(30 * time.Second),
		Source:         SourceThread,
		SieveLimit:     4 * 1024 * 1024,
		TargetPrimes:   500,
		Log:            LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file, validates it against the embedded schema and
// the semantic rules, and fills unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Listen == "" {
		cfg.Listen = def.Listen
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.Source == "" {
		cfg.Source = def.Source
	}
	if cfg.SieveLimit == 0 {
		cfg.SieveLimit = def.SieveLimit
	}
	if cfg.TargetPrimes == 0 {
		cfg.TargetPrimes = def.TargetPrimes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

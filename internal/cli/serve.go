package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/perfgauge/perfgauge/internal/config"
	"github.com/perfgauge/perfgauge/internal/logging"
	"github.com/perfgauge/perfgauge/internal/server"
	"github.com/perfgauge/perfgauge/pkg/usage"
)

var (
	serveConfigPath string
	serveListen     string
	serveWorkers    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo HTTP service",
	Long: `Serve starts the prime-finding demo service. Each GET /primes becomes an
operation on a shared work queue; a pool of workers advances operations a
step at a time, accounting every step's resource usage into the operation's
shared counters. GET /stats reports service-wide latency percentiles.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to YAML config file")
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config)")
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 0, "worker pool size (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Log.Level)

	// Best effort: counters degrade to DISABLED fields rather than failing.
	if err := usage.Enable(); err != nil {
		log.Warn().Err(err).Msg("resource measurement unavailable; counters will report DISABLED")
	}

	banner(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg).Run(ctx)
}

func loadServeConfig() (*config.Config, error) {
	cfg := config.Default()
	if serveConfigPath != "" {
		loaded, err := config.Load(serveConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if serveListen != "" {
		cfg.Listen = serveListen
	}
	if serveWorkers > 0 {
		cfg.Workers = serveWorkers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func banner(cfg *config.Config) {
	name := color.New(color.FgCyan, color.Bold).Sprint("perfgauge")
	addr := color.New(color.FgGreen).Sprint(cfg.Listen)
	fmt.Printf("%s %s listening on %s (%d workers, %s source)\n",
		name, version, addr, cfg.Workers, cfg.Source)
}

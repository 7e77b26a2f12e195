package main

import (
	"os"

	"github.com/perfgauge/perfgauge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

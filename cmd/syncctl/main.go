package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"toiletsync/internal/adapters/observability"
	"toiletsync/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "toiletsync-cli")

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

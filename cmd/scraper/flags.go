package main

import (
	"flag"
	"fmt"

	"github.com/rbarros/parts-scraper/internal/config"
)

type cliFlags struct {
	input       string
	useDatabase bool
	useRedis    bool
}

// parseFlags reads the command line and folds overrides into the config.
// Flag defaults come from the environment-backed config, so flags always win.
func parseFlags(cfg *config.Config) (cliFlags, error) {
	var (
		input    = flag.String("input", "", "CSV file with a 'termo' column (required)")
		output   = flag.String("output", cfg.Output.Dir, "Directory for JSON artifacts")
		headless = flag.Bool("headless", cfg.Browser.Headless, "Run browser in headless mode")
		debug    = flag.Bool("debug", false, "Enable debug logging")
		httpAddr = flag.String("http", cfg.Server.Addr, "Status server listen address (empty disables it)")
		useDB    = flag.Bool("database", false, "Also store products in PostgreSQL")
		useRedis = flag.Bool("redis", false, "Publish product events to Redis")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		return cliFlags{}, fmt.Errorf("-input is required")
	}

	cfg.Output.Dir = *output
	cfg.Browser.Headless = *headless
	cfg.Server.Addr = *httpAddr
	if *debug {
		cfg.Logging.Level = "debug"
	}

	return cliFlags{
		input:       *input,
		useDatabase: *useDB,
		useRedis:    *useRedis,
	}, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"trade-journal/internal/cli"
	"trade-journal/internal/config"
	"trade-journal/internal/logging"
)

// configDir picks --config out of the arguments before the command tree exists.
func configDir(args []string) string {
	fs := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	dir := fs.String("config", os.Getenv("TJ_CONFIG_DIR"), "")
	_ = fs.Parse(args)
	return *dir
}

func main() {
	cfg, err := config.Load(configDir(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.Logging.LogConfig())

	if err := cli.NewRootCmd(cfg, logger).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

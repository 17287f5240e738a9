// Package main runs the interactive commentwrap demo.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	commentwrap "github.com/themissingcow/nvim-comment-wrap"
	"github.com/themissingcow/nvim-comment-wrap/internal/demo"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		logPath     string
		logLevel    string
		debounce    time.Duration
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file (TOML, YAML, or Lua)")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&logPath, "log", "", "Write engine logs to this file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&debounce, "debounce", 100*time.Millisecond, "Cursor-motion debounce window")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "commentwrap - comment-aware wrap option demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: commentwrap [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("commentwrap %s\n", version)
		return 0
	}

	var user map[string]any
	if configPath != "" {
		loaded, err := commentwrap.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
			return 1
		}
		user = loaded
	}

	opts := []commentwrap.Option{commentwrap.WithDebounce(debounce)}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log: %v\n", err)
			return 1
		}
		defer f.Close()
		opts = append(opts, commentwrap.WithLogWriter(f), commentwrap.WithLogLevel(logLevel))
	}

	if err := demo.Run(user, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

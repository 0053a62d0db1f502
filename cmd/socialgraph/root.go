// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSocial/pkg/logging"
	"github.com/AleutianAI/AleutianSocial/pkg/ux"
	"github.com/AleutianAI/AleutianSocial/services/social/config"
	"github.com/AleutianAI/AleutianSocial/services/social/journal"
	"github.com/AleutianAI/AleutianSocial/services/social/service"
)

// Exit codes.
const (
	exitSuccess  = 0
	exitNotFound = 1 // query ran but found nothing, e.g. no path
	exitError    = 2
)

// ConfigEnv names the config file when --config is not given.
const ConfigEnv = "SOCIALGRAPH_CONFIG"

const defaultConfigPath = "socialgraph.yaml"

// errNotFound marks a query that completed without a result.
var errNotFound = errors.New("not found")

// app carries the state shared by every command.
type app struct {
	configPath string
	jsonOutput bool
	outputMode string
	logLevel   string

	out io.Writer
	err io.Writer

	cfg     *config.Config
	logger  *logging.Logger
	journal *journal.Badger
	svc     *service.Service
	printer *ux.Printer
}

// commandResult is the --json envelope.
type commandResult struct {
	APIVersion string    `json:"api_version"`
	Command    string    `json:"command"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Data       any       `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func execute(args []string) int {
	return run(&app{out: os.Stdout, err: os.Stderr}, args)
}

// run executes args against a and maps the outcome to an exit code.
func run(a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.err)

	err := root.Execute()
	a.close()

	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errNotFound):
		return exitNotFound
	default:
		return exitError
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "socialgraph",
		Short: "Query friendships and probabilistic links",
		Long: `Query a friendship graph and a graph of probabilistic links.

The graphs are loaded from a YAML or HCL file. Use 'socialgraph init' to
write a starter file.

Examples:
  socialgraph friends Bob
  socialgraph path Alice George --max-depth 3
  socialgraph sample UserA UserB --trials 10000
  socialgraph serve --config configs/facebook.hcl`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skipLoad"] == "true" {
				a.setupOutput()
				return nil
			}
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Graph file (.yaml, .yml or .hcl); defaults to $"+ConfigEnv+" or "+defaultConfigPath)
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false,
		"Output as JSON for scripting")
	root.PersistentFlags().StringVar(&a.outputMode, "output", "",
		"Output style: rich, minimal or machine; plain is an alias for machine (default: detect)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Override the configured log level")

	root.AddCommand(
		newFriendsCmd(a),
		newCountCmd(a),
		newMutualCmd(a),
		newFoFCmd(a),
		newPathCmd(a),
		newProbabilityCmd(a),
		newConnectedCmd(a),
		newSampleCmd(a),
		newRenderCmd(a),
		newStatsCmd(a),
		newConnectCmd(a),
		newLinkCmd(a),
		newHistoryCmd(a),
		newBackupCmd(a),
		newServeCmd(a),
		newShellCmd(a),
		newInitCmd(a),
	)
	return root
}

func (a *app) resolveConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	if env := os.Getenv(ConfigEnv); env != "" {
		return env
	}
	return defaultConfigPath
}

func (a *app) setupOutput() {
	mode := ux.DetectMode(a.out)
	if a.outputMode != "" {
		mode = ux.ParseMode(a.outputMode)
	}
	ux.SetMode(mode)
	a.printer = ux.NewPrinter(a.out, mode)
}

// load reads the config and builds the logger and service.
func (a *app) load() error {
	a.setupOutput()

	cfg, err := config.Load(a.resolveConfigPath())
	if err != nil {
		return a.fail("load config", err)
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return a.fail("parse log level", err)
	}
	a.logger = logging.New(logging.Config{
		Level:   parsed,
		LogDir:  cfg.Logging.LogDir,
		Service: "socialgraph",
		JSON:    cfg.Logging.JSON,
		Output:  a.err,
	})

	if cfg.Journal.Path != "" {
		jcfg := journal.DefaultConfig(cfg.Journal.Path)
		jcfg.SyncWrites = cfg.Journal.SyncWrites
		jcfg.Logger = a.logger.Slog()
		j, err := journal.Open(jcfg)
		if err != nil {
			return a.fail("open journal", err)
		}
		a.journal = j
	}

	svc, err := service.New(cfg, a.serviceOptions()...)
	if err != nil {
		return a.fail("build graphs", err)
	}
	a.svc = svc
	return nil
}

// serviceOptions returns the options every Service of this run shares.
func (a *app) serviceOptions(extra ...service.Option) []service.Option {
	opts := []service.Option{service.WithLogger(a.logger)}
	if a.journal != nil {
		opts = append(opts, service.WithJournal(a.journal))
	}
	return append(opts, extra...)
}

func (a *app) close() {
	if a.svc != nil {
		a.svc.Close()
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil && a.logger != nil {
			a.logger.Warn("journal close failed", "error", err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// emit writes data as a JSON envelope when --json is set, otherwise calls
// human.
func (a *app) emit(command string, start time.Time, data any, human func(p *ux.Printer)) error {
	if a.jsonOutput {
		return a.writeJSON(commandResult{
			APIVersion: "1.0",
			Command:    command,
			Timestamp:  time.Now(),
			DurationMs: time.Since(start).Milliseconds(),
			Success:    true,
			Data:       data,
		})
	}
	human(a.printer)
	return nil
}

// fail reports err and returns it wrapped with msg.
func (a *app) fail(msg string, err error) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)
	if a.jsonOutput {
		_ = a.writeJSON(commandResult{
			APIVersion: "1.0",
			Timestamp:  time.Now(),
			Success:    false,
			Error:      wrapped.Error(),
		})
		return wrapped
	}
	if a.printer != nil {
		ux.NewPrinter(a.err, a.printer.Mode()).Error(wrapped.Error())
	} else {
		fmt.Fprintf(a.err, "Error: %v\n", wrapped)
	}
	return wrapped
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

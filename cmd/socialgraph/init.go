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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSocial/pkg/ux"
	"github.com/AleutianAI/AleutianSocial/services/social/config"
)

// starterConfig is the example network written by init.
func starterConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Connections = [][]string{
		{"Alice", "Bob"},
		{"Alice", "Charlie"},
		{"Bob", "David"},
		{"Bob", "Eve"},
		{"Charlie", "Frank"},
		{"Eve", "George"},
		{"George", "Harry"},
	}
	cfg.Links = []config.LinkConfig{
		{From: "UserA", To: "UserB", Probability: 0.7},
		{From: "UserB", To: "UserC", Probability: 0.4},
		{From: "UserA", To: "UserC", Probability: 0.6},
	}
	return &cfg
}

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a starter graph file",
		Long: `Write a YAML graph file holding a small example network and the
default settings. PATH defaults to the --config value, then $` + ConfigEnv + `,
then ` + defaultConfigPath + `.

An existing file is only replaced with --force or after confirming on a
terminal.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.resolveConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			return a.initConfig(path, force, ux.IsTerminal(os.Stdin), confirmOverwrite)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file without asking")
	return cmd
}

// confirmFunc asks whether path may be replaced.
type confirmFunc func(path string) (bool, error)

func confirmOverwrite(path string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("%s exists. Replace it?", path)).
		Affirmative("Replace").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}

func (a *app) initConfig(path string, force, interactive bool, confirm confirmFunc) error {
	start := time.Now()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return a.fail("init", fmt.Errorf("%s: init writes YAML, use a .yaml or .yml path", path))
	}

	_, statErr := os.Stat(path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return a.fail("init", statErr)
	}

	if exists && !force {
		if !interactive {
			return a.fail("init", fmt.Errorf("%s already exists, use --force to replace it", path))
		}
		ok, err := confirm(path)
		if err != nil {
			return a.fail("init", err)
		}
		if !ok {
			a.printer.Warning("kept existing " + path)
			return nil
		}
	}

	cfg := starterConfig()
	if err := config.Save(path, cfg); err != nil {
		return a.fail("init", err)
	}

	data := map[string]any{
		"path":        path,
		"connections": len(cfg.Connections),
		"links":       len(cfg.Links),
		"replaced":    exists,
	}
	return a.emit("init", start, data, func(p *ux.Printer) {
		p.Success("wrote " + path)
		p.Value("Connections", len(cfg.Connections))
		p.Value("Links", len(cfg.Links))
	})
}

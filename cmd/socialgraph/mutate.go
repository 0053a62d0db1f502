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
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSocial/pkg/ux"
	"github.com/AleutianAI/AleutianSocial/pkg/validation"
	"github.com/AleutianAI/AleutianSocial/services/social/backup"
	"github.com/AleutianAI/AleutianSocial/services/social/journal"
)

func newConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect USER OTHER",
		Short: "Add a friendship",
		Long: `Add a friendship between two users.

The change is kept only when journal.path is configured; otherwise it
lasts for this command alone.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := validation.ValidateUserIDs(args[0], args[1]); err != nil {
				return a.fail("connect", err)
			}
			if err := a.svc.AddConnection(commandContext(cmd), args[0], args[1]); err != nil {
				return a.fail("connect", err)
			}
			a.warnEphemeral()
			data := map[string]any{"from": args[0], "to": args[1], "journaled": a.journal != nil}
			return a.emit("connect", start, data, func(p *ux.Printer) {
				p.Success(fmt.Sprintf("%s and %s are now friends", args[0], args[1]))
			})
		},
	}
}

func newLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link USER OTHER PROBABILITY",
		Short: "Add or replace a probabilistic link",
		Long: `Add a link between two users, or replace its probability.
PROBABILITY must lie within [0, 1].

The change is kept only when journal.path is configured.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			p, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return a.fail("link", fmt.Errorf("probability %q is not a number", args[2]))
			}
			if err := validation.ValidateUserIDs(args[0], args[1]); err != nil {
				return a.fail("link", err)
			}
			if err := a.svc.AddLink(commandContext(cmd), args[0], args[1], p); err != nil {
				return a.fail("link", err)
			}
			a.warnEphemeral()
			data := map[string]any{"from": args[0], "to": args[1], "probability": p, "journaled": a.journal != nil}
			return a.emit("link", start, data, func(pr *ux.Printer) {
				pr.Success(fmt.Sprintf("linked %s and %s at %.2f", args[0], args[1], p))
			})
		},
	}
}

func (a *app) warnEphemeral() {
	if a.journal == nil && !a.jsonOutput {
		ux.NewPrinter(a.err, a.printer.Mode()).Warning("journal.path is not set, the change is not saved")
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled mutations",
		Long: `List the connections and links added at runtime, in the order they
are replayed on top of the graph file.

With --clear the journal is emptied. Clearing does not touch the graph
file; export the current graphs first with 'socialgraph backup' if they
should be kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			ctx := commandContext(cmd)
			if clearAll {
				if err := a.svc.ClearHistory(ctx); err != nil {
					return a.fail("clear history", err)
				}
				return a.emit("history", start, map[string]any{"cleared": true}, func(p *ux.Printer) {
					p.Success("journal cleared")
				})
			}
			entries, err := a.svc.History(ctx)
			if err != nil {
				return a.fail("history", err)
			}
			return a.emit("history", start, entries, func(p *ux.Printer) {
				lines := make([]string, 0, len(entries))
				for _, e := range entries {
					lines = append(lines, formatEntry(e, p.Mode()))
				}
				p.List("Journal", lines)
			})
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Empty the journal")
	return cmd
}

func formatEntry(e journal.Entry, mode ux.Mode) string {
	if mode == ux.ModeMachine {
		return fmt.Sprintf("%d\t%s\t%s\t%s\t%g", e.Seq, e.Kind, e.From, e.To, e.Probability)
	}
	ts := e.Timestamp.Local().Format(time.DateTime)
	if e.Kind == journal.KindLink {
		return fmt.Sprintf("#%d %s link %s - %s (%.2f)", e.Seq, ts, e.From, e.To, e.Probability)
	}
	return fmt.Sprintf("#%d %s connection %s - %s", e.Seq, ts, e.From, e.To)
}

func newBackupCmd(a *app) *cobra.Command {
	var bucket, prefix, credentials string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload the current graphs to Google Cloud Storage",
		Long: `Upload the current graphs, journaled mutations included, as a YAML
graph file. The object is named {prefix}/socialgraph-{timestamp}.yaml and
can be loaded directly with --config after download.

Flags override the backup section of the graph file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			settings := a.cfg.Backup
			if bucket != "" {
				settings.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				settings.Prefix = prefix
			}
			if credentials != "" {
				settings.CredentialsFile = credentials
			}
			res, err := a.backup(commandContext(cmd), settings.Bucket, settings.Prefix, settings.CredentialsFile)
			if err != nil {
				return a.fail("backup", err)
			}
			return a.emit("backup", start, res, func(p *ux.Printer) {
				p.Success(fmt.Sprintf("uploaded gs://%s/%s", res.Bucket, res.Object))
				p.Value("Bytes", res.Bytes)
			})
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default: backup.bucket)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Object name prefix (default: backup.prefix)")
	cmd.Flags().StringVar(&credentials, "credentials", "", "Service account key file (default: backup.credentials_file)")
	return cmd
}

func (a *app) backup(ctx context.Context, bucket, prefix, credentials string) (backup.Result, error) {
	up, err := backup.NewGCS(ctx, bucket, credentials)
	if err != nil {
		return backup.Result{}, err
	}
	defer up.Close()

	res, err := backup.Snapshot(ctx, up, prefix, a.svc.Snapshot(), time.Now())
	if err != nil {
		return backup.Result{}, err
	}
	res.Bucket = bucket
	a.logger.Info("backup uploaded", "bucket", bucket, "object", res.Object, "bytes", res.Bytes)
	return res, nil
}

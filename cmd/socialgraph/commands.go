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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSocial/pkg/ux"
	"github.com/AleutianAI/AleutianSocial/services/social/service"
	"github.com/AleutianAI/AleutianSocial/services/social/visualization"
)

func newFriendsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "friends USER",
		Short: "List the direct friends of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			friends := a.svc.Friends(commandContext(cmd), args[0])
			return a.emit("friends", start, map[string]any{"user": args[0], "friends": friends}, func(p *ux.Printer) {
				p.List("Friends of "+args[0], friends)
			})
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count USER",
		Short: "Count the direct friends of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			n := a.svc.FriendCount(commandContext(cmd), args[0])
			return a.emit("count", start, map[string]any{"user": args[0], "count": n}, func(p *ux.Printer) {
				p.Value("Friends of "+args[0], n)
			})
		},
	}
}

func newMutualCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mutual USER OTHER",
		Short: "List the friends two users share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			mutual := a.svc.MutualFriends(commandContext(cmd), args[0], args[1])
			data := map[string]any{"a": args[0], "b": args[1], "mutual": mutual}
			return a.emit("mutual", start, data, func(p *ux.Printer) {
				p.List(fmt.Sprintf("Mutual friends of %s and %s", args[0], args[1]), mutual)
			})
		},
	}
}

func newFoFCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "fof USER",
		Aliases: []string{"suggest"},
		Short:   "List friends of friends who are not already friends",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			fof := a.svc.FriendsOfFriends(commandContext(cmd), args[0])
			return a.emit("fof", start, map[string]any{"user": args[0], "suggestions": fof}, func(p *ux.Printer) {
				p.List("Friends of friends of "+args[0], fof)
			})
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "path START END",
		Short: "Find a chain of friendships between two users",
		Long: `Find a chain of friendships between two users with a bounded
breadth-first search.

The search stops once the paths it is expanding hold more than
--max-depth users, so a found path holds at most --max-depth+1 users.
Exits with status 1 when no path is found.

Examples:
  socialgraph path Alice George
  socialgraph path Alice Harry --max-depth 4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			depth := a.svc.DefaultMaxDepth()
			if cmd.Flags().Changed("max-depth") {
				depth = maxDepth
			}
			res, err := a.svc.FindPath(commandContext(cmd), args[0], args[1], depth)
			if err != nil {
				return a.fail("find path", err)
			}
			if err := a.emit("path", start, res, func(p *ux.Printer) {
				if !res.Found {
					p.Warning(fmt.Sprintf("no path from %s to %s within depth %d", args[0], args[1], depth))
					return
				}
				p.Path(res.Path)
			}); err != nil {
				return err
			}
			if !res.Found {
				return errNotFound
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxDepth, "max-depth", "d", 0, "Depth bound (default: configured query.max_depth)")
	return cmd
}

func newProbabilityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probability USER OTHER",
		Short: "Show the stored link probability between two users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			prob := a.svc.Probability(commandContext(cmd), args[0], args[1])
			data := map[string]any{"from": args[0], "to": args[1], "probability": prob}
			return a.emit("probability", start, data, func(p *ux.Printer) {
				p.Value(fmt.Sprintf("P(%s, %s)", args[0], args[1]), fmt.Sprintf("%.2f", prob))
			})
		},
	}
}

func newConnectedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connected USER OTHER",
		Short: "Draw once to decide whether two users are connected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			ok := a.svc.AreConnected(commandContext(cmd), args[0], args[1])
			data := map[string]any{"from": args[0], "to": args[1], "connected": ok}
			return a.emit("connected", start, data, func(p *ux.Printer) {
				p.Value(fmt.Sprintf("%s connected to %s", args[0], args[1]), ok)
			})
		},
	}
}

func newSampleCmd(a *app) *cobra.Command {
	var trials int
	cmd := &cobra.Command{
		Use:   "sample USER OTHER",
		Short: "Estimate how often two users are connected",
		Long: `Draw --trials times and report the fraction of draws in which the
two users were connected. The estimate converges on the stored probability.

Examples:
  socialgraph sample UserA UserB
  socialgraph sample UserA UserC --trials 100000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			res, err := a.svc.Sample(commandContext(cmd), args[0], args[1], trials)
			if err != nil {
				return a.fail("sample", err)
			}
			return a.emit("sample", start, res, func(p *ux.Printer) {
				p.Title(fmt.Sprintf("%s - %s over %d trials", res.From, res.To, res.Trials))
				p.Value("Probability", fmt.Sprintf("%.4f", res.Probability))
				p.Value("Observed", ux.ProgressBar(res.Rate, 30, p.Mode()))
			})
		},
	}
	cmd.Flags().IntVarP(&trials, "trials", "n", 0, "Number of draws (default: configured query.sample_trials)")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		graphKind string
		format    string
		from      string
		to        string
		maxDepth  int
		outFile   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a graph as Mermaid, DOT or D3 JSON",
		Long: `Render the friendship graph or the link graph.

With --from and --to the connection path between the two users is
highlighted.

Examples:
  socialgraph render --format dot > social.dot
  socialgraph render --from Alice --to George
  socialgraph render --graph links --format d3 -o links.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := visualization.ParseFormat(format)
			if err != nil {
				return a.fail("render", err)
			}
			out, err := a.svc.Render(commandContext(cmd), service.RenderRequest{
				Graph:    service.GraphKind(graphKind),
				Format:   f,
				Start:    from,
				End:      to,
				MaxDepth: maxDepth,
			})
			if err != nil {
				return a.fail("render", err)
			}
			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(out), 0644); err != nil {
					return a.fail("write output", err)
				}
				a.printer.Success("wrote " + outFile)
				return nil
			}
			a.printer.Raw(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&graphKind, "graph", string(service.GraphSocial), "Graph to render: social or links")
	cmd.Flags().StringVarP(&format, "format", "f", string(visualization.FormatMermaid), "Output format: mermaid, dot, d3")
	cmd.Flags().StringVar(&from, "from", "", "Highlight the path starting here")
	cmd.Flags().StringVar(&to, "to", "", "Highlight the path ending here")
	cmd.Flags().IntVarP(&maxDepth, "max-depth", "d", 0, "Depth for the highlighted path (0 = configured)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show graph sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			stats := a.svc.Stats()
			return a.emit("stats", start, stats, func(p *ux.Printer) {
				p.Value("Users", stats.Users)
				p.Value("Connections", stats.Connections)
				p.Value("Links", stats.Links)
			})
		},
	}
}

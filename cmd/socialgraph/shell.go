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
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSocial/pkg/ux"
)

const shellHelp = `Commands:
  friends USER              direct friends
  count USER                number of friends
  mutual USER OTHER         shared friends
  fof USER                  friends of friends
  path START END [DEPTH]    connection path
  prob USER OTHER           link probability
  connected USER OTHER      one random draw
  sample USER OTHER [N]     estimate connection rate
  connect USER OTHER        add a friendship
  link USER OTHER P         add or replace a link
  stats                     graph sizes
  history                   journaled mutations
  help                      this text
  exit                      leave the shell`

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Query the graphs interactively",
		Long: `Start an interactive session. On a terminal, up and down walk the
command history. When stdin is not a terminal, commands are read one
per line until end of input.

` + shellHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := ux.NewLineReader(os.Stdin, "social> ", 100)
			return a.runShell(commandContext(cmd), reader)
		},
	}
}

// runShell executes lines from reader until exit or end of input. A
// failing line is reported and the session continues.
func (a *app) runShell(ctx context.Context, reader ux.LineReader) error {
	a.printer.Title("socialgraph shell, type 'help' for commands")
	for {
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return a.fail("read input", err)
		}
		if line == "" {
			continue
		}

		err = a.runShellLine(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			a.printer.Error(err.Error())
		}
	}
}

func (a *app) runShellLine(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	p := a.printer

	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s needs %d argument(s), see 'help'", name, n)
		}
		return nil
	}

	switch name {
	case "exit", "quit":
		return errQuit
	case "help", "?":
		p.Raw(shellHelp)
	case "friends":
		if err := need(1); err != nil {
			return err
		}
		p.List("Friends of "+args[0], a.svc.Friends(ctx, args[0]))
	case "count":
		if err := need(1); err != nil {
			return err
		}
		p.Value("Friends of "+args[0], a.svc.FriendCount(ctx, args[0]))
	case "mutual":
		if err := need(2); err != nil {
			return err
		}
		p.List("Mutual friends", a.svc.MutualFriends(ctx, args[0], args[1]))
	case "fof":
		if err := need(1); err != nil {
			return err
		}
		p.List("Friends of friends of "+args[0], a.svc.FriendsOfFriends(ctx, args[0]))
	case "path":
		if err := need(2); err != nil {
			return err
		}
		depth := a.svc.DefaultMaxDepth()
		if len(args) > 2 {
			d, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("depth %q is not a number", args[2])
			}
			depth = d
		}
		res, err := a.svc.FindPath(ctx, args[0], args[1], depth)
		if err != nil {
			return err
		}
		if !res.Found {
			p.Warning(fmt.Sprintf("no path from %s to %s within depth %d", args[0], args[1], depth))
			return nil
		}
		p.Path(res.Path)
	case "prob", "probability":
		if err := need(2); err != nil {
			return err
		}
		p.Value(fmt.Sprintf("P(%s, %s)", args[0], args[1]), fmt.Sprintf("%.2f", a.svc.Probability(ctx, args[0], args[1])))
	case "connected":
		if err := need(2); err != nil {
			return err
		}
		p.Value("Connected", a.svc.AreConnected(ctx, args[0], args[1]))
	case "sample":
		if err := need(2); err != nil {
			return err
		}
		trials := 0
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("trials %q is not a number", args[2])
			}
			trials = n
		}
		res, err := a.svc.Sample(ctx, args[0], args[1], trials)
		if err != nil {
			return err
		}
		p.Value("Observed", ux.ProgressBar(res.Rate, 30, p.Mode()))
	case "connect":
		if err := need(2); err != nil {
			return err
		}
		if err := a.svc.AddConnection(ctx, args[0], args[1]); err != nil {
			return err
		}
		p.Success(fmt.Sprintf("%s and %s are now friends", args[0], args[1]))
	case "link":
		if err := need(3); err != nil {
			return err
		}
		prob, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("probability %q is not a number", args[2])
		}
		if err := a.svc.AddLink(ctx, args[0], args[1], prob); err != nil {
			return err
		}
		p.Success(fmt.Sprintf("linked %s and %s at %.2f", args[0], args[1], prob))
	case "stats":
		stats := a.svc.Stats()
		p.Value("Users", stats.Users)
		p.Value("Connections", stats.Connections)
		p.Value("Links", stats.Links)
	case "history":
		entries, err := a.svc.History(ctx)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, formatEntry(e, p.Mode()))
		}
		p.List("Journal", lines)
	default:
		return fmt.Errorf("unknown command %q, see 'help'", name)
	}
	return nil
}

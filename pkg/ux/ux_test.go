// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"rich":    ModeRich,
		"":        ModeRich,
		"bogus":   ModeRich,
		"MINIMAL": ModeMinimal,
		"m":       ModeMinimal,
		"machine": ModeMachine,
		" plain ": ModeMachine,
		"quiet":   ModeMachine,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMode(in), "ParseMode(%q)", in)
	}
}

func TestDetectMode(t *testing.T) {
	t.Setenv(ModeEnv, "")
	assert.Equal(t, ModeMachine, DetectMode(&bytes.Buffer{}))

	t.Setenv(ModeEnv, "minimal")
	assert.Equal(t, ModeMinimal, DetectMode(&bytes.Buffer{}))
}

func TestSetMode(t *testing.T) {
	prev := CurrentMode()
	t.Cleanup(func() { SetMode(prev) })

	SetMode(ModeMachine)
	assert.Equal(t, ModeMachine, CurrentMode())
}

func TestPrinter_Machine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeMachine)

	p.Title("ignored")
	p.List("Friends", []string{"Bob", "Charlie"})
	p.Value("Count", 2)
	p.Path([]string{"Alice", "Bob", "Eve"})
	p.Success("done")
	p.Warning("careful")
	p.Error("broken")
	p.Box("Probability", "0.70")

	assert.Equal(t, "Bob\nCharlie\n2\nAlice\tBob\tEve\nOK: done\nWARN: careful\nERROR: broken\nProbability: 0.70\n", buf.String())
}

func TestPrinter_Rich(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeRich)

	p.List("Friends", nil)
	p.Path([]string{"Alice", "Bob"})
	p.Value("Count", 3)

	out := buf.String()
	assert.Contains(t, out, "Friends")
	assert.Contains(t, out, "(0)")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, string(IconArrow))
	assert.Contains(t, out, "Count:")
	assert.Equal(t, ModeRich, p.Mode())
}

func TestPrinter_Raw(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeRich)

	p.Raw("flowchart LR")
	p.Raw("graph {}\n")
	assert.Equal(t, "flowchart LR\ngraph {}\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "0.5000", ProgressBar(0.5, 10, ModeMachine))
	assert.Equal(t, "1.0000", ProgressBar(3, 10, ModeMachine))

	bar := ProgressBar(0.5, 10, ModeRich)
	assert.Contains(t, bar, "50.0%")
	assert.Equal(t, 5, strings.Count(bar, "█"))
}

func TestPlainReader(t *testing.T) {
	r := NewPlainReader(strings.NewReader("friends Alice\n  count Bob  \nlast"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "friends Alice", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "count Bob", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestInteractiveReader_History(t *testing.T) {
	r := NewInteractiveReader("> ", 2)
	r.addToHistory("a")
	r.addToHistory("a")
	r.addToHistory("b")
	r.addToHistory("c")

	assert.Equal(t, []string{"b", "c"}, r.History())
}

func TestInputModel_HistoryNavigation(t *testing.T) {
	m := newInputModel("> ", []string{"first", "second"})
	m.textInput.SetValue("draft")

	step := func(k tea.KeyType) {
		next, _ := m.Update(tea.KeyMsg{Type: k})
		m = next.(inputModel)
	}

	step(tea.KeyUp)
	assert.Equal(t, "second", m.textInput.Value())
	step(tea.KeyUp)
	assert.Equal(t, "first", m.textInput.Value())
	step(tea.KeyUp)
	assert.Equal(t, "first", m.textInput.Value())
	step(tea.KeyDown)
	assert.Equal(t, "second", m.textInput.Value())
	step(tea.KeyDown)
	assert.Equal(t, "draft", m.textInput.Value())
}

func TestInputModel_Keys(t *testing.T) {
	m := newInputModel("> ", nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	result := next.(inputModel)
	assert.True(t, result.eof)
	assert.True(t, result.done)
	assert.NotNil(t, cmd)
	assert.Empty(t, result.View())

	m = newInputModel("> ", nil)
	m.textInput.SetValue("partial")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	result = next.(inputModel)
	assert.False(t, result.eof)
	assert.Empty(t, result.textInput.Value())
}

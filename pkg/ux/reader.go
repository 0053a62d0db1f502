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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LineReader reads one line of user input at a time.
type LineReader interface {
	// ReadLine returns the next trimmed line, or io.EOF when input ends.
	ReadLine() (string, error)
}

// NewLineReader returns an interactive reader with history when in is a
// terminal, and a plain buffered reader otherwise.
func NewLineReader(in *os.File, prompt string, maxHistory int) LineReader {
	if !IsTerminal(in) {
		return NewPlainReader(in)
	}
	return NewInteractiveReader(prompt, maxHistory)
}

// PlainReader reads lines from any io.Reader.
type PlainReader struct {
	reader *bufio.Reader
}

// NewPlainReader wraps r.
func NewPlainReader(r io.Reader) *PlainReader {
	return &PlainReader{reader: bufio.NewReader(r)}
}

// ReadLine implements LineReader. A final line without a newline is
// returned before io.EOF.
func (r *PlainReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// InteractiveReader reads lines with a bubbletea text input. Up and down
// walk the history; Ctrl+C clears the line and Ctrl+D ends input.
type InteractiveReader struct {
	history    []string
	maxHistory int
	prompt     string
}

// NewInteractiveReader creates a reader that keeps at most maxHistory
// entries.
func NewInteractiveReader(prompt string, maxHistory int) *InteractiveReader {
	if maxHistory < 1 {
		maxHistory = 1
	}
	return &InteractiveReader{
		history:    make([]string, 0, maxHistory),
		maxHistory: maxHistory,
		prompt:     prompt,
	}
}

// ReadLine implements LineReader.
func (r *InteractiveReader) ReadLine() (string, error) {
	p := tea.NewProgram(newInputModel(r.prompt, r.history), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	result, ok := finalModel.(inputModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type from bubbletea: %T", finalModel)
	}
	if result.eof {
		return "", io.EOF
	}

	input := strings.TrimSpace(result.textInput.Value())
	if input != "" {
		r.addToHistory(input)
	}
	return input, nil
}

// History returns the stored entries, oldest first.
func (r *InteractiveReader) History() []string {
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

func (r *InteractiveReader) addToHistory(input string) {
	if len(r.history) > 0 && r.history[len(r.history)-1] == input {
		return
	}
	r.history = append(r.history, input)
	if len(r.history) > r.maxHistory {
		r.history = r.history[1:]
	}
}

// inputModel is the bubbletea model behind InteractiveReader.
type inputModel struct {
	textInput    textinput.Model
	history      []string
	historyIndex int
	draft        string // line being edited before history navigation
	done         bool
	eof          bool
}

func newInputModel(prompt string, history []string) inputModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 80
	return inputModel{textInput: ti, history: history, historyIndex: -1}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit

		case tea.KeyCtrlC:
			m.textInput.SetValue("")
			m.done = true
			return m, tea.Quit

		case tea.KeyCtrlD:
			m.textInput.SetValue("")
			m.eof = true
			m.done = true
			return m, tea.Quit

		case tea.KeyUp:
			if len(m.history) == 0 {
				return m, nil
			}
			if m.historyIndex == -1 {
				m.draft = m.textInput.Value()
				m.historyIndex = len(m.history) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.textInput.SetValue(m.history[m.historyIndex])
			m.textInput.CursorEnd()
			return m, nil

		case tea.KeyDown:
			if m.historyIndex == -1 {
				return m, nil
			}
			if m.historyIndex < len(m.history)-1 {
				m.historyIndex++
				m.textInput.SetValue(m.history[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.textInput.SetValue(m.draft)
			}
			m.textInput.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	return m.textInput.View()
}

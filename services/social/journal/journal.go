// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package journal persists graph mutations so that connections and links
// added at runtime survive restarts and dataset reloads.
//
// Entries are appended in order and replayed on top of the dataset file:
//
//	j, err := journal.Open(journal.Config{Path: "~/.socialgraph/journal"})
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	entries, err := j.Replay(ctx)
//
// # Thread Safety
//
// Badger is safe for concurrent use.
package journal

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClosed is returned when operations are called on a closed journal.
	ErrClosed = errors.New("journal is closed")

	// ErrCorrupted is returned when an entry fails its checksum.
	ErrCorrupted = errors.New("journal entry corrupted (CRC mismatch)")

	// ErrInvalidEntry is returned when appending an entry that could never
	// be replayed.
	ErrInvalidEntry = errors.New("invalid journal entry")

	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context must not be nil")
)

// Kind identifies the mutation an entry records.
type Kind string

const (
	KindConnection Kind = "connection"
	KindLink       Kind = "link"
)

// Entry is one recorded mutation. Seq and Timestamp are assigned by
// Append.
type Entry struct {
	Seq         uint64    `json:"seq"`
	Kind        Kind      `json:"kind"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Probability float64   `json:"probability,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Connection returns an entry recording a friendship.
func Connection(from, to string) Entry {
	return Entry{Kind: KindConnection, From: from, To: to}
}

// Link returns an entry recording a probabilistic link.
func Link(from, to string, p float64) Entry {
	return Entry{Kind: KindLink, From: from, To: to, Probability: p}
}

func (e Entry) validate() error {
	if e.From == "" || e.To == "" {
		return fmt.Errorf("%w: empty endpoint", ErrInvalidEntry)
	}
	switch e.Kind {
	case KindConnection:
		return nil
	case KindLink:
		if !(e.Probability >= 0 && e.Probability <= 1) {
			return fmt.Errorf("%w: probability %v", ErrInvalidEntry, e.Probability)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidEntry, e.Kind)
	}
}

// Stats describes the journal contents.
type Stats struct {
	Entries    int64  `json:"entries"`
	Bytes      int64  `json:"bytes"`
	LastSeq    uint64 `json:"last_seq"`
	Corrupted  int64  `json:"corrupted"`
	Persistent bool   `json:"persistent"`
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user identifiers that arrive from outside the
// process (HTTP bodies, command-line arguments) before they are written to
// the graph or the mutation journal.
//
// The graphs themselves accept any non-empty string. These rules only keep
// rendered output, journal entries and Influx tags readable.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxUserIDLength is the longest accepted identifier, in runes.
const MaxUserIDLength = 128

// ErrInvalidUserID is wrapped by every validation failure.
var ErrInvalidUserID = errors.New("invalid user identifier")

// ValidateUserID validates a single user identifier.
//
// Valid identifiers:
//   - 1-128 runes of valid UTF-8
//   - no control characters (newlines, tabs, NUL)
//   - no leading or trailing whitespace
//
// Example:
//
//	if err := validation.ValidateUserID(req.User); err != nil {
//	    return err
//	}
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidUserID)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidUserID, id)
	}
	if n := utf8.RuneCountInString(id); n > MaxUserIDLength {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrInvalidUserID, n, MaxUserIDLength)
	}
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidUserID, id)
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidUserID, id)
	}
	return nil
}

// ValidateUserIDs validates several identifiers and reports every invalid
// one in a single error.
func ValidateUserIDs(ids ...string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidateUserID(id); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", id))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidUserID, strings.Join(invalid, ", "))
	}
	return nil
}

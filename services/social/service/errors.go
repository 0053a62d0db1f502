// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import "errors"

var (
	// ErrInvalidNode is returned when a user identifier is empty.
	ErrInvalidNode = errors.New("user identifier must not be empty")

	// ErrInvalidDepth is returned for a negative path depth.
	ErrInvalidDepth = errors.New("max depth must not be negative")

	// ErrUnknownGraph is returned by Render for an unrecognized graph kind.
	ErrUnknownGraph = errors.New("unknown graph")

	// ErrTooManyTrials is returned by Sample above config.MaxSampleTrials.
	ErrTooManyTrials = errors.New("too many trials")

	// ErrNilConfig is returned by New and Reload without a configuration.
	ErrNilConfig = errors.New("config is required")

	// ErrNoJournal is returned by History and ClearHistory when mutations
	// are not journaled.
	ErrNoJournal = errors.New("mutation journal is not enabled")
)

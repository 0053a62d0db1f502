// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package probabilistic models friendships whose existence is uncertain.
//
// Each undirected link carries a probability in [0, 1]. Lookups are
// deterministic; AreConnected draws one sample from an injectable Source,
// so tests can pin the outcome with a fixed sequence.
//
// # Thread Safety
//
// Links is NOT safe for concurrent use. The default Source is a private
// generator owned by the Links value; callers sharing a Links across
// goroutines must serialize all calls, including AreConnected.
package probabilistic

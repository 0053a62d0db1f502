// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package probabilistic

import "fmt"

// SampleRate estimates how often u and v are connected.
//
// Description:
//
//	Calls AreConnected trials times and returns the fraction of draws that
//	came back connected. The estimate converges on Probability(u, v) as
//	trials grows.
//
// Inputs:
//
//	l - Link graph to sample. Its source advances by trials values.
//	u, v - The pair to sample.
//	trials - Number of draws. Must be at least 1.
//
// Outputs:
//
//	float64 - Fraction of connected draws in [0, 1].
//	error - ErrInvalidTrials when trials < 1.
func SampleRate[N comparable](l *Links[N], u, v N, trials int) (float64, error) {
	if trials < 1 {
		return 0, fmt.Errorf("sample %v-%v: %w (got %d)", u, v, ErrInvalidTrials, trials)
	}

	hits := 0
	for i := 0; i < trials; i++ {
		if l.AreConnected(u, v) {
			hits++
		}
	}

	sampleRuns.Observe(float64(trials))
	sampleTotal.WithLabelValues("connected").Add(float64(hits))
	sampleTotal.WithLabelValues("disconnected").Add(float64(trials - hits))

	return float64(hits) / float64(trials), nil
}

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

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sampleTotal counts SampleRate draws by outcome.
	// Labels: "connected", "disconnected"
	sampleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_probabilistic_samples_total",
		Help: "Connectivity samples drawn by SampleRate, by outcome",
	}, []string{"outcome"})

	sampleRuns = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "social_probabilistic_sample_trials",
		Help:    "Trials per SampleRate call",
		Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
	})
)

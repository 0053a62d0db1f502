// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package samples records Monte Carlo connectivity runs.
//
// Each run of probabilistic.SampleRate can be written as one point to
// InfluxDB so that estimated rates can be charted against the configured
// probabilities over time.
package samples

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Measurement is the InfluxDB measurement sample runs are written to.
const Measurement = "social_sample"

// ErrMissingSettings is returned when a recorder is created without the
// org or bucket it writes to.
var ErrMissingSettings = errors.New("influx org and bucket are required")

// Run is the outcome of one sampling run.
type Run struct {
	ID          string
	From        string
	To          string
	Probability float64
	Rate        float64
	Trials      int
	Timestamp   time.Time
}

// NewRun fills in the ID and timestamp of a run.
func NewRun(from, to string, probability, rate float64, trials int) Run {
	return Run{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		Probability: probability,
		Rate:        rate,
		Trials:      trials,
		Timestamp:   time.Now().UTC(),
	}
}

// Recorder stores sampling runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
	Close()
}

// Nop discards every run.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Run) error { return nil }

// Close implements Recorder.
func (Nop) Close() {}

// InfluxSettings locates the InfluxDB bucket.
type InfluxSettings struct {
	URL    string
	Org    string
	Bucket string

	// Token is opened only while the client is built. Nil connects
	// without a token.
	Token *memguard.Enclave
}

// InfluxRecorder writes runs to InfluxDB with the blocking write API.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewInfluxRecorder creates a recorder. No request is made until the
// first Record.
func NewInfluxRecorder(s InfluxSettings) (*InfluxRecorder, error) {
	if s.Org == "" || s.Bucket == "" {
		return nil, ErrMissingSettings
	}
	var token string
	if s.Token != nil {
		buf, err := s.Token.Open()
		if err != nil {
			return nil, fmt.Errorf("open influx token: %w", err)
		}
		token = string(buf.Bytes())
		buf.Destroy()
	}
	client := influxdb2.NewClient(s.URL, token)
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(s.Org, s.Bucket),
	}, nil
}

// Record writes one point tagged by link endpoints. The run ID is a field
// so each run does not start a new series.
func (r *InfluxRecorder) Record(ctx context.Context, run Run) error {
	p := influxdb2.NewPointWithMeasurement(Measurement).
		AddTag("from", run.From).
		AddTag("to", run.To).
		AddField("run_id", run.ID).
		AddField("probability", run.Probability).
		AddField("rate", run.Rate).
		AddField("trials", run.Trials).
		SetTime(run.Timestamp)

	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write sample run %s: %w", run.ID, err)
	}
	return nil
}

// Close releases the client.
func (r *InfluxRecorder) Close() {
	r.client.Close()
}

// Memory keeps runs in process.
type Memory struct {
	mu   sync.Mutex
	runs []Run
}

// Record implements Recorder.
func (m *Memory) Record(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

// Close implements Recorder.
func (m *Memory) Close() {}

// Runs returns the recorded runs in order.
func (m *Memory) Runs() []Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Run, len(m.runs))
	copy(out, m.runs)
	return out
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclRoot is the top level of an HCL dataset:
//
//	connections = [["Alice", "Bob"], ["Bob", "Charlie"]]
//
//	link {
//	  from        = "UserA"
//	  to          = "UserB"
//	  probability = 0.7
//	}
//
//	query {
//	  max_depth = 3
//	}
//
// Expressions may read env.NAME and call lower, upper, min and max.
type hclRoot struct {
	Connections [][]string    `hcl:"connections,optional"`
	Links       []hclLink     `hcl:"link,block"`
	Query       *hclQuery     `hcl:"query,block"`
	Logging     *hclLogging   `hcl:"logging,block"`
	Telemetry   *hclTelemetry `hcl:"telemetry,block"`
	Server      *hclServer    `hcl:"server,block"`
	Cache       *hclCache     `hcl:"cache,block"`
	Samples     *hclSamples   `hcl:"samples,block"`
	Journal     *hclJournal   `hcl:"journal,block"`
	Backup      *hclBackup    `hcl:"backup,block"`
}

type hclLink struct {
	From        string  `hcl:"from"`
	To          string  `hcl:"to"`
	Probability float64 `hcl:"probability"`
}

type hclQuery struct {
	MaxDepth     *int `hcl:"max_depth,optional"`
	SampleTrials *int `hcl:"sample_trials,optional"`
}

type hclLogging struct {
	Level  *string `hcl:"level,optional"`
	JSON   *bool   `hcl:"json,optional"`
	LogDir *string `hcl:"log_dir,optional"`
}

type hclTelemetry struct {
	ServiceName    *string  `hcl:"service_name,optional"`
	TraceExporter  *string  `hcl:"trace_exporter,optional"`
	MetricExporter *string  `hcl:"metric_exporter,optional"`
	OTLPEndpoint   *string  `hcl:"otlp_endpoint,optional"`
	OTLPInsecure   *bool    `hcl:"otlp_insecure,optional"`
	SampleRatio    *float64 `hcl:"sample_ratio,optional"`
}

type hclServer struct {
	Address   *string  `hcl:"address,optional"`
	RateLimit *float64 `hcl:"rate_limit,optional"`
	Burst     *int     `hcl:"burst,optional"`
}

type hclCache struct {
	MaxPaths *int64 `hcl:"max_paths,optional"`
}

type hclSamples struct {
	InfluxURL *string `hcl:"influx_url,optional"`
	Token     *string `hcl:"token,optional"`
	Org       *string `hcl:"org,optional"`
	Bucket    *string `hcl:"bucket,optional"`
}

type hclJournal struct {
	Path       *string `hcl:"path,optional"`
	SyncWrites *bool   `hcl:"sync_writes,optional"`
}

type hclBackup struct {
	Bucket          *string `hcl:"bucket,optional"`
	Prefix          *string `hcl:"prefix,optional"`
	CredentialsFile *string `hcl:"credentials_file,optional"`
}

func decodeHCL(path string, data []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(), &root)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %w", diags)
	}

	if root.Connections != nil {
		cfg.Connections = root.Connections
	}
	for _, l := range root.Links {
		cfg.Links = append(cfg.Links, LinkConfig(l))
	}

	if q := root.Query; q != nil {
		setIf(&cfg.Query.MaxDepth, q.MaxDepth)
		setIf(&cfg.Query.SampleTrials, q.SampleTrials)
	}
	if l := root.Logging; l != nil {
		setIf(&cfg.Logging.Level, l.Level)
		setIf(&cfg.Logging.JSON, l.JSON)
		setIf(&cfg.Logging.LogDir, l.LogDir)
	}
	if t := root.Telemetry; t != nil {
		setIf(&cfg.Telemetry.ServiceName, t.ServiceName)
		setIf(&cfg.Telemetry.TraceExporter, t.TraceExporter)
		setIf(&cfg.Telemetry.MetricExporter, t.MetricExporter)
		setIf(&cfg.Telemetry.OTLPEndpoint, t.OTLPEndpoint)
		setIf(&cfg.Telemetry.OTLPInsecure, t.OTLPInsecure)
		setIf(&cfg.Telemetry.SampleRatio, t.SampleRatio)
	}
	if s := root.Server; s != nil {
		setIf(&cfg.Server.Address, s.Address)
		setIf(&cfg.Server.RateLimit, s.RateLimit)
		setIf(&cfg.Server.Burst, s.Burst)
	}
	if c := root.Cache; c != nil {
		setIf(&cfg.Cache.MaxPaths, c.MaxPaths)
	}
	if s := root.Samples; s != nil {
		setIf(&cfg.Samples.InfluxURL, s.InfluxURL)
		setIf(&cfg.Samples.Token, s.Token)
		setIf(&cfg.Samples.Org, s.Org)
		setIf(&cfg.Samples.Bucket, s.Bucket)
	}
	if j := root.Journal; j != nil {
		setIf(&cfg.Journal.Path, j.Path)
		setIf(&cfg.Journal.SyncWrites, j.SyncWrites)
	}
	if b := root.Backup; b != nil {
		setIf(&cfg.Backup.Bucket, b.Bucket)
		setIf(&cfg.Backup.Prefix, b.Prefix)
		setIf(&cfg.Backup.CredentialsFile, b.CredentialsFile)
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// evalContext exposes the process environment as env and a few string and
// number helpers.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"lower": stdlib.LowerFunc,
			"upper": stdlib.UpperFunc,
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
		},
	}
}

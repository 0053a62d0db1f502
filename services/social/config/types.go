// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads social graph datasets and server settings from YAML
// or HCL files.
//
// A file carries the friendship edges, the probabilistic links, and the
// runtime settings for the CLI and API server. Values are layered:
// DefaultConfig, then the file, then SOCIAL_* environment variables.
package config

import (
	"github.com/awnumar/memguard"

	"github.com/AleutianAI/AleutianSocial/services/social/telemetry"
)

// Config is a dataset plus the settings needed to serve it.
type Config struct {
	// Connections lists undirected friendships as [a, b] pairs.
	Connections [][]string `yaml:"connections" json:"connections" validate:"dive,len=2,dive,required"`

	// Links lists probabilistic friendships.
	Links []LinkConfig `yaml:"links" json:"links" validate:"dive"`

	Query     QueryConfig      `yaml:"query" json:"query"`
	Logging   LoggingConfig    `yaml:"logging" json:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry" json:"telemetry"`
	Server    ServerConfig     `yaml:"server" json:"server"`
	Cache     CacheConfig      `yaml:"cache" json:"cache"`
	Samples   SamplesConfig    `yaml:"samples" json:"samples"`
	Journal   JournalConfig    `yaml:"journal" json:"journal"`
	Backup    BackupConfig     `yaml:"backup" json:"backup"`
}

// LinkConfig is one probabilistic link.
type LinkConfig struct {
	From        string  `yaml:"from" json:"from" validate:"required"`
	To          string  `yaml:"to" json:"to" validate:"required"`
	Probability float64 `yaml:"probability" json:"probability" validate:"gte=0,lte=1"`
}

// MaxSampleTrials caps the draws of one sampling run, wherever the
// request comes from. It matches the sample_trials validate tag.
const MaxSampleTrials = 1000000

// QueryConfig holds query defaults.
type QueryConfig struct {
	// MaxDepth bounds connection path searches.
	// Default: 3
	MaxDepth int `yaml:"max_depth" json:"max_depth" validate:"gte=0,lte=100"`

	// SampleTrials is the default number of draws for sampling.
	// Default: 1000
	SampleTrials int `yaml:"sample_trials" json:"sample_trials" validate:"gte=1,lte=1000000"`
}

// LoggingConfig mirrors logging.Config in file form.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON   bool   `yaml:"json" json:"json"`
	LogDir string `yaml:"log_dir" json:"log_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Address is the listen address.
	// Default: ":8080"
	Address string `yaml:"address" json:"address" validate:"required"`

	// RateLimit is the sustained request rate per second. 0 disables
	// limiting.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`

	// Burst is the limiter bucket size.
	// Default: 20
	Burst int `yaml:"burst" json:"burst" validate:"gte=0"`
}

// CacheConfig sizes the path query cache.
type CacheConfig struct {
	// MaxPaths is the number of cached path results. 0 disables caching.
	// Default: 10000
	MaxPaths int64 `yaml:"max_paths" json:"max_paths" validate:"gte=0"`
}

// SamplesConfig points sample runs at an InfluxDB bucket. Recording is
// off while InfluxURL is empty.
type SamplesConfig struct {
	InfluxURL string `yaml:"influx_url" json:"influx_url" validate:"omitempty,url"`

	// Token is only read from the file or SOCIAL_INFLUX_TOKEN. Parse moves
	// it into SealedToken and leaves this field empty.
	Token string `yaml:"token,omitempty" json:"-"`

	Org    string `yaml:"org" json:"org" validate:"required_with=InfluxURL"`
	Bucket string `yaml:"bucket" json:"bucket" validate:"required_with=InfluxURL"`

	// SealedToken holds the token encrypted in memory. Nil when no token
	// was configured.
	SealedToken *memguard.Enclave `yaml:"-" json:"-"`
}

// seal moves a plaintext token into an enclave. The source bytes are
// wiped by memguard.
func (s *SamplesConfig) seal() {
	if s.Token == "" {
		return
	}
	s.SealedToken = memguard.NewEnclave([]byte(s.Token))
	s.Token = ""
}

// JournalConfig locates the mutation journal. Runtime mutations are lost
// on restart while Path is empty.
type JournalConfig struct {
	Path       string `yaml:"path" json:"path"`
	SyncWrites bool   `yaml:"sync_writes" json:"sync_writes"`
}

// BackupConfig locates the GCS bucket datasets are backed up to.
type BackupConfig struct {
	Bucket string `yaml:"bucket" json:"bucket"`

	// Prefix is prepended to object names.
	// Default: "socialgraph"
	Prefix string `yaml:"prefix" json:"prefix"`

	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" validate:"omitempty,file"`
}

// DefaultConfig returns an empty dataset with default settings.
func DefaultConfig() Config {
	return Config{
		Connections: [][]string{},
		Links:       []LinkConfig{},
		Query: QueryConfig{
			MaxDepth:     3,
			SampleTrials: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: telemetry.DefaultConfig(),
		Server: ServerConfig{
			Address:   ":8080",
			RateLimit: 50,
			Burst:     20,
		},
		Cache: CacheConfig{
			MaxPaths: 10000,
		},
		Journal: JournalConfig{
			SyncWrites: true,
		},
		Backup: BackupConfig{
			Prefix: "socialgraph",
		},
	}
}

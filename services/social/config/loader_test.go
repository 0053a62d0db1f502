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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDataset = `
connections:
  - [Alice, Bob]
  - [Alice, Charlie]
  - [Bob, Eve]
  - [Eve, George]
links:
  - {from: UserA, to: UserB, probability: 0.7}
  - {from: UserA, to: UserC, probability: 0.4}
query:
  max_depth: 4
server:
  address: "127.0.0.1:9000"
`

const hclDataset = `
connections = [
  ["Alice", "Bob"],
  ["Bob", "Charlie"],
]

link {
  from        = "UserA"
  to          = "UserB"
  probability = 0.7
}

link {
  from        = "UserB"
  to          = "UserC"
  probability = min(0.6, 0.9)
}

query {
  max_depth = 5
}

logging {
  level = lower(env.SOCIAL_TEST_LEVEL)
}

server {
  burst = 7
}

journal {
  path        = "/tmp/social-journal"
  sync_writes = false
}

backup {
  bucket = "graph-backups"
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Query.MaxDepth)
	assert.Equal(t, 1000, cfg.Query.SampleTrials)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, int64(10000), cfg.Cache.MaxPaths)
	assert.True(t, cfg.Journal.SyncWrites)
	assert.Empty(t, cfg.Journal.Path, "journal is opt-in")
	assert.Empty(t, cfg.Backup.Bucket, "backup is opt-in")
	assert.Empty(t, cfg.Samples.InfluxURL, "sample recording is opt-in")
	assert.Equal(t, "socialgraph", cfg.Backup.Prefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "facebook.yaml", yamlDataset)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, cfg.Connections, 4)
	assert.Equal(t, []string{"Alice", "Bob"}, cfg.Connections[0])
	assert.Equal(t, LinkConfig{From: "UserA", To: "UserB", Probability: 0.7}, cfg.Links[0])
	assert.Equal(t, 4, cfg.Query.MaxDepth)
	assert.Equal(t, 1000, cfg.Query.SampleTrials, "unset fields keep defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 20, cfg.Server.Burst)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeFile(t, "bad.yaml", "conections: []\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, "empty.yml", "\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Connections)
	assert.Equal(t, 3, cfg.Query.MaxDepth)
}

func TestLoad_HCL(t *testing.T) {
	t.Setenv("SOCIAL_TEST_LEVEL", "DEBUG")
	path := writeFile(t, "facebook.hcl", hclDataset)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"Alice", "Bob"}, {"Bob", "Charlie"}}, cfg.Connections)
	require.Len(t, cfg.Links, 2)
	assert.Equal(t, 0.6, cfg.Links[1].Probability)
	assert.Equal(t, 5, cfg.Query.MaxDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Server.Burst)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "/tmp/social-journal", cfg.Journal.Path)
	assert.False(t, cfg.Journal.SyncWrites)
	assert.Equal(t, "graph-backups", cfg.Backup.Bucket)
	assert.Equal(t, "socialgraph", cfg.Backup.Prefix)
}

func TestLoad_HCLSyntaxError(t *testing.T) {
	path := writeFile(t, "broken.hcl", "connections = [\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "data.json", "{}")

	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOCIAL_MAX_DEPTH", "6")
	t.Setenv("SOCIAL_LOG_LEVEL", "warn")
	t.Setenv("SOCIAL_SERVER_ADDRESS", ":9999")
	t.Setenv("SOCIAL_JOURNAL_PATH", "/var/lib/socialgraph/journal")
	t.Setenv("SOCIAL_BACKUP_BUCKET", "graph-backups")
	path := writeFile(t, "facebook.yaml", yamlDataset)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/socialgraph/journal", cfg.Journal.Path)
	assert.Equal(t, "graph-backups", cfg.Backup.Bucket)

	assert.Equal(t, 6, cfg.Query.MaxDepth)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9999", cfg.Server.Address)
}

func TestLoad_SealsInfluxToken(t *testing.T) {
	path := writeFile(t, "samples.yaml", `
samples:
  influx_url: http://localhost:8086
  org: social
  bucket: samples
  token: file-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Samples.Token)
	require.NotNil(t, cfg.Samples.SealedToken)
	buf, err := cfg.Samples.SealedToken.Open()
	require.NoError(t, err)
	assert.Equal(t, "file-secret", string(buf.Bytes()))
	buf.Destroy()

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "file-secret")
	assert.NotContains(t, string(data), "token")
}

func TestLoad_SealsInfluxTokenFromEnv(t *testing.T) {
	t.Setenv("SOCIAL_INFLUX_TOKEN", "env-secret")
	path := writeFile(t, "facebook.yaml", yamlDataset)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Samples.Token)
	require.NotNil(t, cfg.Samples.SealedToken)
	buf, err := cfg.Samples.SealedToken.Open()
	require.NoError(t, err)
	assert.Equal(t, "env-secret", string(buf.Bytes()))
	buf.Destroy()
}

func TestLoad_NoTokenNoEnclave(t *testing.T) {
	cfg, err := Load(writeFile(t, "facebook.yaml", yamlDataset))
	require.NoError(t, err)
	assert.Nil(t, cfg.Samples.SealedToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"short connection", func(c *Config) { c.Connections = [][]string{{"Alice"}} }, "connections"},
		{"empty name", func(c *Config) { c.Connections = [][]string{{"Alice", ""}} }, "connections"},
		{"probability above one", func(c *Config) {
			c.Links = []LinkConfig{{From: "a", To: "b", Probability: 1.5}}
		}, "probability"},
		{"missing link endpoint", func(c *Config) {
			c.Links = []LinkConfig{{From: "a", Probability: 0.5}}
		}, "to"},
		{"negative depth", func(c *Config) { c.Query.MaxDepth = -1 }, "max_depth"},
		{"zero trials", func(c *Config) { c.Query.SampleTrials = 0 }, "sample_trials"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "level"},
		{"bad exporter", func(c *Config) { c.Telemetry.TraceExporter = "zipkin" }, "trace_exporter"},
		{"sample ratio above one", func(c *Config) { c.Telemetry.SampleRatio = 2 }, "sample_ratio"},
		{"empty address", func(c *Config) { c.Server.Address = "" }, "address"},
		{"influx without bucket", func(c *Config) {
			c.Samples = SamplesConfig{InfluxURL: "http://localhost:8086", Org: "o"}
		}, "bucket"},
		{"missing credentials file", func(c *Config) {
			c.Backup.CredentialsFile = "/nonexistent/key.json"
		}, "credentials_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestBuildSocial(t *testing.T) {
	path := writeFile(t, "facebook.yaml", yamlDataset)
	cfg, err := Load(path)
	require.NoError(t, err)

	g := cfg.BuildSocial()

	assert.Equal(t, 5, g.NodeCount())
	path2, ok := g.FindConnectionPath("Alice", "George")
	require.True(t, ok)
	assert.Equal(t, []string{"Alice", "Bob", "Eve", "George"}, path2)
}

func TestBuildLinks(t *testing.T) {
	path := writeFile(t, "facebook.yaml", yamlDataset)
	cfg, err := Load(path)
	require.NoError(t, err)

	l, err := cfg.BuildLinks()
	require.NoError(t, err)

	assert.Equal(t, 0.7, l.Probability("UserB", "UserA"))
	assert.Equal(t, 0.4, l.Probability("UserA", "UserC"))
	assert.Equal(t, 0.0, l.Probability("UserB", "UserC"))
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Connections = [][]string{{"a", "b"}}
	cfg.Links = []LinkConfig{{From: "a", To: "b", Probability: 0.25}}

	path := filepath.Join(t.TempDir(), "nested", "out.yaml")
	require.NoError(t, Save(path, &cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Connections, loaded.Connections)
	assert.Equal(t, cfg.Links, loaded.Links)
}

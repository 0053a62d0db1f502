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

	"github.com/vrischmann/envconfig"
)

// envOverrides are the SOCIAL_* variables applied after the file. Unset
// variables leave the field nil.
type envOverrides struct {
	LogLevel     *string  `envconfig:"SOCIAL_LOG_LEVEL"`
	LogJSON      *bool    `envconfig:"SOCIAL_LOG_JSON"`
	LogDir       *string  `envconfig:"SOCIAL_LOG_DIR"`
	MaxDepth     *int     `envconfig:"SOCIAL_MAX_DEPTH"`
	SampleTrials *int     `envconfig:"SOCIAL_SAMPLE_TRIALS"`
	Address      *string  `envconfig:"SOCIAL_SERVER_ADDRESS"`
	RateLimit    *float64 `envconfig:"SOCIAL_RATE_LIMIT"`
	Burst        *int     `envconfig:"SOCIAL_BURST"`
	InfluxURL    *string  `envconfig:"SOCIAL_INFLUX_URL"`
	InfluxToken  *string  `envconfig:"SOCIAL_INFLUX_TOKEN"`
	JournalPath  *string  `envconfig:"SOCIAL_JOURNAL_PATH"`
	BackupBucket *string  `envconfig:"SOCIAL_BACKUP_BUCKET"`
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := envconfig.InitWithOptions(&o, envconfig.Options{
		AllOptional: true,
		LeaveNil:    true,
	}); err != nil {
		return fmt.Errorf("read environment overrides: %w", err)
	}

	setIf(&cfg.Logging.Level, o.LogLevel)
	setIf(&cfg.Logging.JSON, o.LogJSON)
	setIf(&cfg.Logging.LogDir, o.LogDir)
	setIf(&cfg.Query.MaxDepth, o.MaxDepth)
	setIf(&cfg.Query.SampleTrials, o.SampleTrials)
	setIf(&cfg.Server.Address, o.Address)
	setIf(&cfg.Server.RateLimit, o.RateLimit)
	setIf(&cfg.Server.Burst, o.Burst)
	setIf(&cfg.Samples.InfluxURL, o.InfluxURL)
	setIf(&cfg.Samples.Token, o.InfluxToken)
	setIf(&cfg.Journal.Path, o.JournalPath)
	setIf(&cfg.Backup.Bucket, o.BackupBucket)
	return nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package backup uploads dataset snapshots to Google Cloud Storage.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/AleutianAI/AleutianSocial/services/social/config"
)

// ErrNoBucket is returned when no bucket is configured.
var ErrNoBucket = errors.New("backup bucket is required")

// Uploader stores one object.
type Uploader interface {
	Upload(ctx context.Context, object string, data []byte, contentType string) error
	Close() error
}

// GCS uploads to a single bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a client for bucket. An empty credentialsFile uses
// application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path: %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Upload writes data to object.
func (g *GCS) Upload(ctx context.Context, object string, data []byte, contentType string) error {
	writer := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write GCS object %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", object, err)
	}
	return nil
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Result describes an uploaded snapshot.
type Result struct {
	Bucket string `json:"bucket,omitempty"`
	Object string `json:"object"`
	Bytes  int    `json:"bytes"`
}

// ObjectName returns "{prefix}/socialgraph-{UTC timestamp}.yaml".
func ObjectName(prefix string, at time.Time) string {
	name := "socialgraph-" + at.UTC().Format("20060102T150405Z") + ".yaml"
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Snapshot uploads cfg as YAML under prefix.
func Snapshot(ctx context.Context, up Uploader, prefix string, cfg *config.Config, at time.Time) (Result, error) {
	data, err := config.Marshal(cfg)
	if err != nil {
		return Result{}, err
	}
	object := ObjectName(prefix, at)
	if err := up.Upload(ctx, object, data, "application/yaml"); err != nil {
		return Result{}, err
	}
	return Result{Object: object, Bytes: len(data)}, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianSocial/services/social/api"
	"github.com/AleutianAI/AleutianSocial/services/social/config"
	"github.com/AleutianAI/AleutianSocial/services/social/samples"
	"github.com/AleutianAI/AleutianSocial/services/social/service"
	"github.com/AleutianAI/AleutianSocial/services/social/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		address string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and websocket API",
		Long: `Serve the graphs over HTTP under /v1/social, with a websocket
session at /v1/social/ws and Prometheus metrics at /metrics.

With --watch the graph file is reloaded whenever it changes. A file that
fails to load is logged and the running graphs are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if address != "" {
				a.cfg.Server.Address = address
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := a.serve(ctx, watch); err != nil {
				return a.fail("serve", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Listen address (default: configured server.address)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the graph file when it changes")
	return cmd
}

// serve runs the API until ctx is cancelled.
func (a *app) serve(ctx context.Context, watch bool) error {
	cfg := a.cfg

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.TracerName))
	if err != nil {
		return err
	}

	recorder, err := newRecorder(cfg.Samples)
	if err != nil {
		return err
	}

	// The query service built for one-shot commands has no metrics or
	// recorder; the server gets its own.
	a.svc.Close()
	svc, err := service.New(cfg, a.serviceOptions(
		service.WithMetrics(metrics),
		service.WithRecorder(recorder),
	)...)
	if err != nil {
		recorder.Close()
		return err
	}
	a.svc = svc

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandlers(svc, a.logger), api.RouterOptions{
		ServiceName:   cfg.Telemetry.ServiceName,
		Limiter:       api.NewLimiter(cfg.Server.RateLimit, cfg.Server.Burst),
		Metrics:       metrics,
		ExposeMetrics: cfg.Telemetry.MetricExporter == "prometheus",
	})
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if watch {
		watcher, err := config.NewWatcher(a.resolveConfigPath(), a.reloadFunc(ctx), nil)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			watcher.Stop()
			return err
		}
		defer watcher.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", server.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return server.Shutdown(sctx)
	})

	return g.Wait()
}

func (a *app) reloadFunc(ctx context.Context) config.ReloadFunc {
	return func(cfg *config.Config, err error) {
		if err != nil {
			a.logger.Warn("graph file reload failed, keeping current graphs", "error", err)
			return
		}
		if err := a.svc.Reload(ctx, cfg); err != nil {
			a.logger.Warn("graph reload rejected", "error", err)
		}
	}
}

func newRecorder(s config.SamplesConfig) (samples.Recorder, error) {
	if s.InfluxURL == "" {
		return samples.Nop{}, nil
	}
	return samples.NewInfluxRecorder(samples.InfluxSettings{
		URL:    s.InfluxURL,
		Token:  s.SealedToken,
		Org:    s.Org,
		Bucket: s.Bucket,
	})
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianSocial/pkg/logging"
	"github.com/AleutianAI/AleutianSocial/services/social/cache"
	"github.com/AleutianAI/AleutianSocial/services/social/config"
	"github.com/AleutianAI/AleutianSocial/services/social/graph"
	"github.com/AleutianAI/AleutianSocial/services/social/journal"
	"github.com/AleutianAI/AleutianSocial/services/social/probabilistic"
	"github.com/AleutianAI/AleutianSocial/services/social/samples"
	"github.com/AleutianAI/AleutianSocial/services/social/telemetry"
	"github.com/AleutianAI/AleutianSocial/services/social/visualization"
)

// Options configures a Service beyond what config.Config carries.
type Options struct {
	Logger   *logging.Logger
	Metrics  *telemetry.Metrics
	Recorder samples.Recorder
	Source   probabilistic.Source
	Render   *visualization.GraphOptions
	Journal  Journal
}

// Journal persists mutations. *journal.Badger implements it.
type Journal interface {
	Append(ctx context.Context, e journal.Entry) (journal.Entry, error)
	Replay(ctx context.Context) ([]journal.Entry, error)
	Clear(ctx context.Context) error
	Stats() journal.Stats
}

// Option is a functional option for New.
type Option func(*Options)

// WithLogger sets the logger. Default: logging.Nop().
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics enables metric recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithRecorder sets where sampling runs are written. Default: samples.Nop.
func WithRecorder(r samples.Recorder) Option {
	return func(o *Options) { o.Recorder = r }
}

// WithSource sets the random source of the link graph. It survives Reload.
func WithSource(s probabilistic.Source) Option {
	return func(o *Options) { o.Source = s }
}

// WithJournal records every mutation in j and replays j on top of the
// dataset in New and Reload.
func WithJournal(j Journal) Option {
	return func(o *Options) { o.Journal = j }
}

// WithRenderOptions sets the rendering limits.
func WithRenderOptions(g visualization.GraphOptions) Option {
	return func(o *Options) { o.Render = &g }
}

// Service owns both graphs.
//
// Thread Safety:
//
//	Safe for concurrent use. Queries share a read lock. Mutations, reloads
//	and sampling take the write lock, because every draw advances the
//	link graph's random source.
type Service struct {
	mu     sync.RWMutex
	social *graph.Social[string]
	links  *probabilistic.Links[string]
	query  config.QueryConfig

	paths    *cache.PathCache
	renderer *visualization.Generator
	logger   *logging.Logger
	metrics  *telemetry.Metrics
	recorder samples.Recorder
	source   probabilistic.Source
	journal  Journal
}

// New builds a Service from cfg.
//
// Inputs:
//
//	cfg - Loaded configuration. Connections and links seed the graphs.
//	opts - Optional collaborators.
//
// Outputs:
//
//	*Service - Ready for use. Call Close when done.
//	error - Non-nil if cfg is nil or holds an invalid link.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = logging.Nop()
	}
	if options.Recorder == nil {
		options.Recorder = samples.Nop{}
	}

	paths, err := cache.New(cache.WithMaxEntries(cfg.Cache.MaxPaths))
	if err != nil {
		return nil, err
	}

	s := &Service{
		paths:    paths,
		renderer: visualization.NewGenerator(options.Render),
		logger:   options.Logger.With("component", "service"),
		metrics:  options.Metrics,
		recorder: options.Recorder,
		source:   options.Source,
		journal:  options.Journal,
	}
	if err := s.load(context.Background(), cfg); err != nil {
		paths.Close()
		return nil, err
	}
	return s, nil
}

// load replaces both graphs and replays the journal on top. Callers hold
// the write lock or own s exclusively.
func (s *Service) load(ctx context.Context, cfg *config.Config) error {
	var linkOpts []probabilistic.Option
	if s.source != nil {
		linkOpts = append(linkOpts, probabilistic.WithSource(s.source))
	}
	links, err := cfg.BuildLinks(linkOpts...)
	if err != nil {
		return fmt.Errorf("build links: %w", err)
	}
	social := cfg.BuildSocial()

	if s.journal != nil {
		entries, err := s.journal.Replay(ctx)
		if err != nil {
			return fmt.Errorf("replay journal: %w", err)
		}
		for _, e := range entries {
			switch e.Kind {
			case journal.KindConnection:
				social.AddConnection(e.From, e.To)
			case journal.KindLink:
				if err := links.AddEdge(e.From, e.To, e.Probability); err != nil {
					return fmt.Errorf("replay journal entry %d: %w", e.Seq, err)
				}
			default:
				s.logger.Warn("skipping journal entry of unknown kind", "seq", e.Seq, "kind", e.Kind)
			}
		}
		if len(entries) > 0 {
			s.logger.Info("journal replayed", "entries", len(entries))
		}
	}

	s.social = social
	s.links = links
	s.query = cfg.Query
	return nil
}

// record appends e to the journal, if any. Callers hold the write lock so
// that journal order matches apply order.
func (s *Service) record(ctx context.Context, e journal.Entry) error {
	if s.journal == nil {
		return nil
	}
	if _, err := s.journal.Append(ctx, e); err != nil {
		return fmt.Errorf("journal %s mutation: %w", e.Kind, err)
	}
	return nil
}

// DefaultMaxDepth returns the configured path depth.
func (s *Service) DefaultMaxDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query.MaxDepth
}

// DefaultTrials returns the configured sample count.
func (s *Service) DefaultTrials() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query.SampleTrials
}

// Friends returns the direct friends of user in insertion order.
func (s *Service) Friends(ctx context.Context, user string) []string {
	ctx, span := telemetry.StartSpan(ctx, "Service.Friends",
		trace.WithAttributes(attribute.String("social.user", user)))
	defer span.End()
	defer s.observe(ctx, "friends", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	friends := s.social.Neighbors(user)
	span.SetAttributes(attribute.Int("social.result_count", len(friends)))
	return friends
}

// FriendCount returns the number of direct friends of user.
func (s *Service) FriendCount(ctx context.Context, user string) int {
	ctx, span := telemetry.StartSpan(ctx, "Service.FriendCount",
		trace.WithAttributes(attribute.String("social.user", user)))
	defer span.End()
	defer s.observe(ctx, "count", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.social.FriendCount(user)
}

// MutualFriends returns the friends u and v share.
func (s *Service) MutualFriends(ctx context.Context, u, v string) []string {
	ctx, span := telemetry.StartSpan(ctx, "Service.MutualFriends",
		trace.WithAttributes(
			attribute.String("social.user", u),
			attribute.String("social.other", v),
		))
	defer span.End()
	defer s.observe(ctx, "mutual", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	mutual := s.social.MutualFriends(u, v)
	span.SetAttributes(attribute.Int("social.result_count", len(mutual)))
	return mutual
}

// FriendsOfFriends returns users two hops from user that are neither user
// nor a direct friend.
func (s *Service) FriendsOfFriends(ctx context.Context, user string) []string {
	ctx, span := telemetry.StartSpan(ctx, "Service.FriendsOfFriends",
		trace.WithAttributes(attribute.String("social.user", user)))
	defer span.End()
	defer s.observe(ctx, "fof", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	fof := s.social.FriendsOfFriends(user)
	span.SetAttributes(attribute.Int("social.result_count", len(fof)))
	return fof
}

// FindPath searches for a connection path from start to end.
//
// Description:
//
//	Results are served from the path cache when possible. The search
//	itself is graph.FindConnectionPath, so a found path may hold up to
//	maxDepth+1 users.
//
// Inputs:
//
//	start, end - Endpoints.
//	maxDepth - Depth bound. Use DefaultMaxDepth for the configured value.
//
// Outputs:
//
//	PathResult - Found is false when no path lies within the bound.
//	error - ErrInvalidDepth for a negative bound.
func (s *Service) FindPath(ctx context.Context, start, end string, maxDepth int) (PathResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Service.FindPath",
		trace.WithAttributes(
			attribute.String("social.start", start),
			attribute.String("social.end", end),
			attribute.Int("social.max_depth", maxDepth),
		))
	defer span.End()
	defer s.observe(ctx, "path", time.Now())

	result := PathResult{Start: start, End: end, MaxDepth: maxDepth}
	if maxDepth < 0 {
		err := fmt.Errorf("%w: %d", ErrInvalidDepth, maxDepth)
		telemetry.RecordError(span, err)
		s.countError(ctx, "path")
		return result, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	path, found, err := s.paths.GetOrCompute(ctx, start, end, maxDepth, func() ([]string, bool) {
		return s.social.FindConnectionPath(start, end, graph.WithMaxDepth(maxDepth))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "path")
		return result, err
	}

	result.Found = found
	result.Path = path
	if found {
		result.Hops = len(path) - 1
		if s.metrics != nil {
			s.metrics.PathLength.Record(ctx, int64(len(path)))
		}
	}
	span.SetAttributes(attribute.Bool("social.found", found))
	telemetry.SetSpanOK(span)
	return result, nil
}

// Probability returns the stored link probability, or 0.
func (s *Service) Probability(ctx context.Context, u, v string) float64 {
	ctx, span := telemetry.StartSpan(ctx, "Service.Probability",
		trace.WithAttributes(
			attribute.String("social.user", u),
			attribute.String("social.other", v),
		))
	defer span.End()
	defer s.observe(ctx, "probability", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.links.Probability(u, v)
}

// AreConnected draws once and reports whether u and v are connected.
func (s *Service) AreConnected(ctx context.Context, u, v string) bool {
	ctx, span := telemetry.StartSpan(ctx, "Service.AreConnected",
		trace.WithAttributes(
			attribute.String("social.user", u),
			attribute.String("social.other", v),
		))
	defer span.End()
	defer s.observe(ctx, "connected", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	connected := s.links.AreConnected(u, v)
	span.SetAttributes(attribute.Bool("social.connected", connected))
	return connected
}

// Sample draws trials times and records the run.
//
// A trials value of 0 uses the configured default. A recorder failure is
// logged and does not fail the call.
func (s *Service) Sample(ctx context.Context, u, v string, trials int) (SampleResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Service.Sample",
		trace.WithAttributes(
			attribute.String("social.user", u),
			attribute.String("social.other", v),
		))
	defer span.End()
	defer s.observe(ctx, "sample", time.Now())

	if trials > config.MaxSampleTrials {
		err := fmt.Errorf("%w: %d, limit is %d", ErrTooManyTrials, trials, config.MaxSampleTrials)
		telemetry.RecordError(span, err)
		s.countError(ctx, "sample")
		return SampleResult{}, err
	}

	s.mu.Lock()
	if trials == 0 {
		trials = s.query.SampleTrials
	}
	p := s.links.Probability(u, v)
	rate, err := probabilistic.SampleRate(s.links, u, v, trials)
	s.mu.Unlock()

	if err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "sample")
		return SampleResult{}, err
	}

	run := samples.NewRun(u, v, p, rate, trials)
	if err := s.recorder.Record(ctx, run); err != nil {
		s.logger.Warn("failed to record sample run", "run_id", run.ID, "error", err)
	}

	span.SetAttributes(
		attribute.Int("social.trials", trials),
		attribute.Float64("social.rate", rate),
	)
	telemetry.SetSpanOK(span)
	return SampleResult{
		RunID:       strfmt.UUID(run.ID),
		From:        u,
		To:          v,
		Probability: p,
		Rate:        rate,
		Trials:      trials,
	}, nil
}

// AddConnection records a friendship and invalidates cached paths.
func (s *Service) AddConnection(ctx context.Context, u, v string) error {
	ctx, span := telemetry.StartSpan(ctx, "Service.AddConnection",
		trace.WithAttributes(
			attribute.String("social.user", u),
			attribute.String("social.other", v),
		))
	defer span.End()

	if u == "" || v == "" {
		telemetry.RecordError(span, ErrInvalidNode)
		s.countError(ctx, "add_connection")
		return ErrInvalidNode
	}

	s.mu.Lock()
	if err := s.record(ctx, journal.Connection(u, v)); err != nil {
		s.mu.Unlock()
		telemetry.RecordError(span, err)
		s.countError(ctx, "add_connection")
		return err
	}
	s.social.AddConnection(u, v)
	s.paths.Invalidate(ctx)
	s.mu.Unlock()

	s.countMutation(ctx, "connection")
	s.logger.Info("connection added", "user", u, "other", v)
	telemetry.SetSpanOK(span)
	return nil
}

// AddLink records or overwrites a probabilistic link.
func (s *Service) AddLink(ctx context.Context, u, v string, p float64) error {
	ctx, span := telemetry.StartSpan(ctx, "Service.AddLink",
		trace.WithAttributes(
			attribute.String("social.user", u),
			attribute.String("social.other", v),
			attribute.Float64("social.probability", p),
		))
	defer span.End()

	if u == "" || v == "" {
		telemetry.RecordError(span, ErrInvalidNode)
		s.countError(ctx, "add_link")
		return ErrInvalidNode
	}

	if err := probabilistic.ValidateProbability(p); err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "add_link")
		return fmt.Errorf("link %s-%s: %w", u, v, err)
	}

	s.mu.Lock()
	err := s.record(ctx, journal.Link(u, v, p))
	if err == nil {
		err = s.links.AddEdge(u, v, p)
	}
	s.mu.Unlock()
	if err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "add_link")
		return err
	}

	s.countMutation(ctx, "link")
	s.logger.Info("link added", "user", u, "other", v, "probability", p)
	telemetry.SetSpanOK(span)
	return nil
}

// Reload replaces both graphs with the contents of cfg. On error the
// current graphs are kept.
func (s *Service) Reload(ctx context.Context, cfg *config.Config) error {
	ctx, span := telemetry.StartSpan(ctx, "Service.Reload")
	defer span.End()

	if cfg == nil {
		telemetry.RecordError(span, ErrNilConfig)
		return ErrNilConfig
	}

	s.mu.Lock()
	prevSocial, prevLinks, prevQuery := s.social, s.links, s.query
	if err := s.load(ctx, cfg); err != nil {
		s.social, s.links, s.query = prevSocial, prevLinks, prevQuery
		s.mu.Unlock()
		telemetry.RecordError(span, err)
		s.countError(ctx, "reload")
		return err
	}
	s.paths.Invalidate(ctx)
	users, conns, links := s.social.NodeCount(), s.social.EdgeCount(), s.links.Len()
	s.mu.Unlock()

	s.logger.Info("graphs reloaded", "users", users, "connections", conns, "links", links)
	telemetry.SetSpanOK(span)
	return nil
}

// Render draws the requested graph. An empty Graph means GraphSocial and
// an empty Format means Mermaid.
func (s *Service) Render(ctx context.Context, req RenderRequest) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "Service.Render",
		trace.WithAttributes(
			attribute.String("social.graph", string(req.Graph)),
			attribute.String("social.format", string(req.Format)),
		))
	defer span.End()
	defer s.observe(ctx, "render", time.Now())

	if req.Format == "" {
		req.Format = visualization.FormatMermaid
	}

	var snap *visualization.Snapshot
	switch req.Graph {
	case GraphSocial, "":
		var highlight []string
		if req.Start != "" && req.End != "" {
			depth := req.MaxDepth
			if depth == 0 {
				depth = s.DefaultMaxDepth()
			}
			res, err := s.FindPath(ctx, req.Start, req.End, depth)
			if err != nil {
				telemetry.RecordError(span, err)
				return "", err
			}
			highlight = res.Path
		}
		s.mu.RLock()
		snap = visualization.FromSocial(s.social, highlight)
		s.mu.RUnlock()
	case GraphLinks:
		s.mu.RLock()
		snap = visualization.FromLinks(s.links)
		s.mu.RUnlock()
	default:
		err := fmt.Errorf("%w: %q", ErrUnknownGraph, req.Graph)
		telemetry.RecordError(span, err)
		s.countError(ctx, "render")
		return "", err
	}

	out, err := s.renderer.Generate(ctx, snap, req.Format)
	if err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "render")
		return "", err
	}
	telemetry.SetSpanOK(span)
	return out, nil
}

// Stats returns graph sizes and cache counters.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{
		Users:       s.social.NodeCount(),
		Connections: s.social.EdgeCount(),
		Links:       s.links.Len(),
		Cache:       s.paths.Stats(),
	}
	if s.journal != nil {
		js := s.journal.Stats()
		stats.Journal = &js
	}
	return stats
}

// History returns the journaled mutations in order. Without a journal it
// returns ErrNoJournal.
func (s *Service) History(ctx context.Context) ([]journal.Entry, error) {
	ctx, span := telemetry.StartSpan(ctx, "Service.History")
	defer span.End()

	if s.journal == nil {
		return nil, ErrNoJournal
	}
	entries, err := s.journal.Replay(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "history")
		return nil, err
	}
	telemetry.SetSpanOK(span)
	return entries, nil
}

// ClearHistory empties the journal. The in-memory graphs keep the
// mutations until the next restart or reload.
func (s *Service) ClearHistory(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "Service.ClearHistory")
	defer span.End()

	if s.journal == nil {
		return ErrNoJournal
	}
	s.mu.Lock()
	err := s.journal.Clear(ctx)
	s.mu.Unlock()
	if err != nil {
		telemetry.RecordError(span, err)
		s.countError(ctx, "clear_history")
		return err
	}
	s.logger.Info("journal cleared")
	telemetry.SetSpanOK(span)
	return nil
}

// Snapshot returns the current graphs and query defaults as a dataset.
// Settings other than the query defaults are left at their defaults, so
// no secrets are carried over.
func (s *Service) Snapshot() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := config.DefaultConfig()
	cfg.Query = s.query
	for _, e := range s.social.Edges() {
		cfg.Connections = append(cfg.Connections, []string{e.A, e.B})
	}
	for _, l := range s.links.Pairs() {
		cfg.Links = append(cfg.Links, config.LinkConfig{From: l.A, To: l.B, Probability: l.Probability})
	}
	return &cfg
}

// Close releases the path cache and the recorder.
func (s *Service) Close() {
	s.paths.Close()
	s.recorder.Close()
}

func (s *Service) observe(ctx context.Context, kind string, start time.Time) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	s.metrics.QueriesTotal.Add(ctx, 1, attrs)
	s.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func (s *Service) countMutation(ctx context.Context, kind string) {
	if s.metrics == nil {
		return
	}
	s.metrics.MutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (s *Service) countError(ctx context.Context, op string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

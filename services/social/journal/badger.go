// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package journal

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "mutation:"

// lastSeqKey holds the highest sequence number ever assigned. It lives
// outside keyPrefix so Clear leaves it in place.
var lastSeqKey = []byte("meta:last_seq")

// Config configures a Badger journal.
type Config struct {
	// Path is the database directory. A leading ~ expands to the home
	// directory. Required unless InMemory is set.
	Path string

	// InMemory keeps the journal in memory only.
	InMemory bool

	// SyncWrites fsyncs every append.
	// Default: true
	SyncWrites bool

	// GCInterval is how often value log garbage collection runs. 0
	// disables it.
	// Default: 5 minutes
	GCInterval time.Duration

	// GCDiscardRatio is the garbage ratio that triggers a rewrite.
	// Default: 0.5
	GCDiscardRatio float64

	// SkipCorrupted makes Replay log and skip entries that fail their
	// checksum instead of failing.
	SkipCorrupted bool

	// Logger receives journal and badger messages. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns durable settings for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Badger is a journal stored in BadgerDB.
//
// Key format: "mutation:{seq:016d}"
// Value format: [4-byte CRC32][gob-encoded Entry]
//
// "meta:last_seq" stores the last assigned sequence as a big-endian uint64.
type Badger struct {
	db     *badger.DB
	config Config
	logger *slog.Logger

	seq       atomic.Uint64
	entries   atomic.Int64
	bytes     atomic.Int64
	corrupted atomic.Int64
	closed    atomic.Bool

	// appendMu keeps sequence numbers in commit order.
	appendMu sync.Mutex

	gcStop chan struct{}
	gcDone chan struct{}
}

// Open opens or creates a journal.
//
// Outputs:
//
//	*Badger - The journal. Call Close when done.
//	error - Non-nil if Path is missing or the database cannot be opened.
func Open(cfg Config) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent journal")
	}
	if cfg.GCDiscardRatio < 0 || cfg.GCDiscardRatio > 1 {
		return nil, errors.New("gc discard ratio must be between 0 and 1")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		cfg.Path = expandPath(cfg.Path)
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger journal: %w", err)
	}

	j := &Badger{
		db:     db,
		config: cfg,
		logger: logger.With(slog.String("component", "journal")),
	}
	if err := j.scan(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan journal: %w", err)
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		j.gcStop = make(chan struct{})
		j.gcDone = make(chan struct{})
		go j.runGC()
	}

	j.logger.Info("journal opened",
		slog.String("path", cfg.Path),
		slog.Bool("in_memory", cfg.InMemory),
		slog.Int64("entries", j.entries.Load()),
		slog.Uint64("last_seq", j.seq.Load()))
	return j, nil
}

// scan counts existing entries and restores the sequence counter.
func (j *Badger) scan() error {
	return j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(lastSeqKey)
		switch {
		case err == nil:
			err = item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("%w: last sequence is %d bytes", ErrCorrupted, len(val))
				}
				j.seq.Store(binary.BigEndian.Uint64(val))
				return nil
			})
			if err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("read last sequence: %w", err)
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			seq, ok := parseKey(item.Key())
			if !ok {
				continue
			}
			if seq > j.seq.Load() {
				j.seq.Store(seq)
			}
			j.entries.Add(1)
			j.bytes.Add(item.ValueSize())
		}
		return nil
	})
}

func entryKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d", keyPrefix, seq))
}

func parseKey(key []byte) (uint64, bool) {
	var seq uint64
	if _, err := fmt.Sscanf(string(key[len(keyPrefix):]), "%016d", &seq); err != nil {
		return 0, false
	}
	return seq, true
}

func encodeEntry(e Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&e); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	out := make([]byte, 4+buf.Len())
	binary.BigEndian.PutUint32(out[:4], crc32.ChecksumIEEE(buf.Bytes()))
	copy(out[4:], buf.Bytes())
	return out, nil
}

func decodeEntry(data []byte) (Entry, error) {
	if len(data) < 5 {
		return Entry{}, fmt.Errorf("%w: entry too short", ErrCorrupted)
	}
	stored := binary.BigEndian.Uint32(data[:4])
	if computed := crc32.ChecksumIEEE(data[4:]); stored != computed {
		return Entry{}, fmt.Errorf("%w: stored=%08x computed=%08x", ErrCorrupted, stored, computed)
	}
	var e Entry
	if err := gob.NewDecoder(bytes.NewReader(data[4:])).Decode(&e); err != nil {
		return Entry{}, fmt.Errorf("gob decode: %w", err)
	}
	return e, nil
}

// Append writes e and returns it with Seq and Timestamp set.
func (j *Badger) Append(ctx context.Context, e Entry) (Entry, error) {
	if ctx == nil {
		return Entry{}, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if j.closed.Load() {
		return Entry{}, ErrClosed
	}
	if err := e.validate(); err != nil {
		return Entry{}, err
	}

	_, span := otel.Tracer("social.journal").Start(ctx, "journal.Append",
		trace.WithAttributes(attribute.String("kind", string(e.Kind))))
	defer span.End()

	j.appendMu.Lock()
	defer j.appendMu.Unlock()

	e.Seq = j.seq.Load() + 1
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := encodeEntry(e)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return Entry{}, err
	}

	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], e.Seq)
	err = j.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(entryKey(e.Seq), data); err != nil {
			return err
		}
		return txn.Set(lastSeqKey, seqBuf[:])
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return Entry{}, fmt.Errorf("write entry: %w", err)
	}

	j.seq.Store(e.Seq)
	j.entries.Add(1)
	j.bytes.Add(int64(len(data)))
	span.SetAttributes(attribute.Int64("seq", int64(e.Seq)))
	j.logger.Debug("mutation appended",
		slog.Uint64("seq", e.Seq),
		slog.String("kind", string(e.Kind)))
	return e, nil
}

// Replay returns every entry in sequence order.
func (j *Badger) Replay(ctx context.Context) ([]Entry, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if j.closed.Load() {
		return nil, ErrClosed
	}

	ctx, span := otel.Tracer("social.journal").Start(ctx, "journal.Replay")
	defer span.End()

	var entries []Entry
	corrupted := 0
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			seq, ok := parseKey(item.Key())
			if !ok {
				continue
			}
			err := item.Value(func(val []byte) error {
				e, err := decodeEntry(val)
				if err != nil {
					if errors.Is(err, ErrCorrupted) && j.config.SkipCorrupted {
						corrupted++
						j.corrupted.Add(1)
						j.logger.Warn("skipping corrupted entry",
							slog.Uint64("seq", seq),
							slog.String("error", err.Error()))
						return nil
					}
					return fmt.Errorf("entry %d: %w", seq, err)
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replay failed")
		return nil, fmt.Errorf("replay: %w", err)
	}

	span.SetAttributes(
		attribute.Int("entries", len(entries)),
		attribute.Int("corrupted", corrupted),
	)
	return entries, nil
}

// Clear deletes every entry. The sequence counter keeps counting, across
// reopens too.
func (j *Badger) Clear(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if j.closed.Load() {
		return ErrClosed
	}
	j.appendMu.Lock()
	defer j.appendMu.Unlock()

	if err := j.db.DropPrefix([]byte(keyPrefix)); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	j.entries.Store(0)
	j.bytes.Store(0)
	j.logger.Info("journal cleared", slog.Uint64("last_seq", j.seq.Load()))
	return nil
}

// Stats returns entry and byte counts.
func (j *Badger) Stats() Stats {
	return Stats{
		Entries:    j.entries.Load(),
		Bytes:      j.bytes.Load(),
		LastSeq:    j.seq.Load(),
		Corrupted:  j.corrupted.Load(),
		Persistent: !j.config.InMemory,
	}
}

// Close stops garbage collection and closes the database. Safe to call
// twice.
func (j *Badger) Close() error {
	if !j.closed.CompareAndSwap(false, true) {
		return nil
	}
	if j.gcStop != nil {
		close(j.gcStop)
		<-j.gcDone
	}
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}

func (j *Badger) runGC() {
	defer close(j.gcDone)

	ticker := time.NewTicker(j.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.gcStop:
			return
		case <-ticker.C:
			err := j.db.RunValueLogGC(j.config.GCDiscardRatio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				j.logger.Warn("journal value log GC failed", slog.String("error", err.Error()))
			}
		}
	}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

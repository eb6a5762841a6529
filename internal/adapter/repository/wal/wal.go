package wal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

const (
	segmentPrefix = "changes-"
	segmentSuffix = ".ndjson"
	filePerm      = 0o644
)

// ErrDiskFull is returned by Write when the configured disk budget would be exceeded.
var ErrDiskFull = errors.New("wal disk budget exhausted")

// Options bounds the on-disk footprint of a Log.
type Options struct {
	Dir            string
	MaxSegmentSize int64
	MaxTotalSize   int64
}

// Log is a segmented, newline-delimited JSON write-ahead log of change
// events. It holds events while the change stream is unreachable.
type Log struct {
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	segment   *os.File
	size      int64
	totalSize int64
}

// Open creates the WAL directory if needed and resumes the newest segment.
func Open(opts Options, logger *slog.Logger) (*Log, error) {
	if opts.MaxSegmentSize <= 0 || opts.MaxTotalSize <= 0 {
		return nil, fmt.Errorf("invalid WAL sizes: segment=%d total=%d", opts.MaxSegmentSize, opts.MaxTotalSize)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create WAL directory %s: %w", opts.Dir, err)
	}

	l := &Log{opts: opts, logger: logger.With("component", "wal")}
	total, err := l.diskUsage()
	if err != nil {
		return nil, err
	}
	l.totalSize = total

	if err := l.resumeLatest(); err != nil {
		return nil, err
	}
	return l, nil
}

// Write appends one event to the active segment, rotating once it is full.
func (l *Log) Write(ctx context.Context, event domain.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event for WAL: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.totalSize+int64(len(data)) > l.opts.MaxTotalSize {
		return fmt.Errorf("%w (%d + %d > %d)", ErrDiskFull, l.totalSize, len(data), l.opts.MaxTotalSize)
	}
	if l.segment == nil {
		if err := l.rotate(); err != nil {
			return err
		}
	}

	n, err := l.segment.Write(data)
	l.size += int64(n)
	l.totalSize += int64(n)
	if err != nil {
		return fmt.Errorf("failed to append to WAL segment: %w", err)
	}

	if l.size >= l.opts.MaxSegmentSize {
		if err := l.rotate(); err != nil {
			l.logger.Error("Failed to rotate WAL segment", "error", err)
		}
	}
	return nil
}

// Replay feeds every stored event to handler in write order. It stops at the
// first handler error so nothing is lost before Truncate.
func (l *Log) Replay(ctx context.Context, handler func(event domain.ChangeEvent) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closeSegment()

	segments, err := l.segments()
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		l.logger.Info("WAL is empty, nothing to replay")
		return nil
	}
	l.logger.Info("Starting WAL replay", "segment_count", len(segments))

	replayed := 0
	for _, path := range segments {
		n, err := replaySegment(ctx, path, handler, l.logger)
		replayed += n
		if err != nil {
			return err
		}
	}

	l.logger.Info("WAL replay completed", "events", replayed)
	return nil
}

func replaySegment(ctx context.Context, path string, handler func(domain.ChangeEvent) error, logger *slog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open segment %s for replay: %w", path, err)
	}
	defer f.Close()

	replayed := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return replayed, err
		}
		var event domain.ChangeEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			logger.Warn("Skipping corrupt WAL line", "segment", filepath.Base(path), "error", err)
			continue
		}
		if err := handler(event); err != nil {
			return replayed, fmt.Errorf("replay handler failed on event %s: %w", event.ID, err)
		}
		replayed++
	}
	if err := scanner.Err(); err != nil {
		return replayed, fmt.Errorf("error scanning segment %s: %w", path, err)
	}
	return replayed, nil
}

// Truncate deletes every segment and starts a fresh one.
func (l *Log) Truncate(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closeSegment()

	segments, err := l.segments()
	if err != nil {
		return err
	}
	for _, path := range segments {
		if err := os.Remove(path); err != nil {
			l.logger.Error("Failed to remove WAL segment", "path", path, "error", err)
		}
	}

	total, err := l.diskUsage()
	if err != nil {
		return err
	}
	l.totalSize = total
	l.logger.Info("WAL truncated", "removed_segments", len(segments))
	return l.rotate()
}

// Close syncs and closes the active segment.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.segment == nil {
		return nil
	}
	err := l.segment.Sync()
	if cerr := l.segment.Close(); err == nil {
		err = cerr
	}
	l.segment = nil
	return err
}

func (l *Log) closeSegment() {
	if l.segment == nil {
		return
	}
	if err := l.segment.Sync(); err != nil {
		l.logger.Error("Failed to sync WAL segment", "error", err)
	}
	if err := l.segment.Close(); err != nil {
		l.logger.Error("Failed to close WAL segment", "error", err)
	}
	l.segment = nil
}

func (l *Log) rotate() error {
	l.closeSegment()

	// Zero-padded nanoseconds keep lexical order equal to creation order.
	name := fmt.Sprintf("%s%020d%s", segmentPrefix, time.Now().UnixNano(), segmentSuffix)
	path := filepath.Join(l.opts.Dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create WAL segment %s: %w", path, err)
	}
	l.segment = f
	l.size = 0
	l.logger.Debug("Rotated to new WAL segment", "path", path)
	return nil
}

func (l *Log) resumeLatest() error {
	segments, err := l.segments()
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return l.rotate()
	}

	latest := segments[len(segments)-1]
	stat, err := os.Stat(latest)
	if err != nil {
		return fmt.Errorf("failed to stat segment %s: %w", latest, err)
	}
	if stat.Size() >= l.opts.MaxSegmentSize {
		return l.rotate()
	}

	f, err := os.OpenFile(latest, os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open segment %s: %w", latest, err)
	}
	l.segment = f
	l.size = stat.Size()
	l.logger.Info("Resumed WAL segment", "path", latest, "size", l.size)
	return nil
}

func (l *Log) segments() ([]string, error) {
	entries, err := os.ReadDir(l.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAL directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if isSegment(e) {
			out = append(out, filepath.Join(l.opts.Dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (l *Log) diskUsage() (int64, error) {
	entries, err := os.ReadDir(l.opts.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read WAL directory: %w", err)
	}
	var total int64
	for _, e := range entries {
		if !isSegment(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

func isSegment(e os.DirEntry) bool {
	return !e.IsDir() && strings.HasPrefix(e.Name(), segmentPrefix) && strings.HasSuffix(e.Name(), segmentSuffix)
}

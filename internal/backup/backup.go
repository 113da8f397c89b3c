// Package backup snapshots the submission store to object storage on a
// schedule and prunes snapshots past their retention period.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"lead-capture/internal/store"
	"lead-capture/internal/submission"
)

// filePrefix starts the base name of every snapshot object; prune only
// touches objects carrying it.
const filePrefix = "submissions-"

// Source is anything that can produce the full submission list.
type Source interface {
	Load(ctx context.Context) ([]submission.Submission, error)
}

// Recorder is told the outcome of every backup run.
type Recorder interface {
	RecordBackup(err error)
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the slice of an S3-style API the manager needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
}

type Config struct {
	Interval      time.Duration // time between snapshots, e.g. 24h
	RetentionDays int           // snapshots older than this are removed
	Compression   bool          // gzip snapshots
	Prefix        string        // key prefix, e.g. "backups"
}

// Result describes one successful snapshot.
type Result struct {
	Key         string
	Submissions int
	Bytes       int
	Pruned      int
}

// Manager runs scheduled snapshots.
type Manager struct {
	cfg     Config
	source  Source
	objects ObjectStore
	log     zerolog.Logger
	rec     Recorder
	now     func() time.Time
}

func NewManager(cfg Config, source Source, objects ObjectStore, log zerolog.Logger, rec Recorder) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	return &Manager{
		cfg:     cfg,
		source:  source,
		objects: objects,
		log:     log,
		rec:     rec,
		now:     time.Now,
	}
}

// Run takes a snapshot immediately and then every Interval until ctx is
// done. Failures are logged and recorded; the schedule continues.
func (m *Manager) Run(ctx context.Context) {
	m.log.Info().
		Str("interval", m.cfg.Interval.String()).
		Int("retention_days", m.cfg.RetentionDays).
		Bool("compression", m.cfg.Compression).
		Msg("backup scheduler started")

	m.runOnce(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("backup scheduler stopped")
			return
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *Manager) runOnce(ctx context.Context) {
	res, err := m.Backup(ctx)
	if m.rec != nil {
		m.rec.RecordBackup(err)
	}
	if err != nil {
		m.log.Error().Err(err).Msg("backup failed")
		return
	}
	m.log.Info().
		Str("key", res.Key).
		Int("submissions", res.Submissions).
		Int("size_bytes", res.Bytes).
		Int("pruned", res.Pruned).
		Msg("backup completed")
}

// Backup uploads one snapshot and prunes expired ones. A prune failure is
// logged but does not fail the backup.
func (m *Manager) Backup(ctx context.Context) (Result, error) {
	subs, err := m.source.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load submissions: %w", err)
	}

	data, err := m.encode(subs)
	if err != nil {
		return Result{}, err
	}

	key := m.key(m.now())
	contentType := "application/json"
	if m.cfg.Compression {
		contentType = "application/gzip"
	}
	if err := m.objects.PutObject(ctx, key, data, contentType); err != nil {
		return Result{}, fmt.Errorf("upload %s: %w", key, err)
	}

	res := Result{Key: key, Submissions: len(subs), Bytes: len(data)}
	res.Pruned, err = m.prune(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to prune old backups")
	}
	return res, nil
}

func (m *Manager) encode(subs []submission.Submission) ([]byte, error) {
	var buf bytes.Buffer
	if !m.cfg.Compression {
		if err := store.EncodeIndented(&buf, subs); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		return buf.Bytes(), nil
	}

	zw := gzip.NewWriter(&buf)
	if err := store.EncodeIndented(zw, subs); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *Manager) key(t time.Time) string {
	name := filePrefix + t.UTC().Format("20060102-150405") + ".json"
	if m.cfg.Compression {
		name += ".gz"
	}
	return path.Join(m.cfg.Prefix, name)
}

// prune removes snapshots last modified before the retention cutoff.
func (m *Manager) prune(ctx context.Context) (int, error) {
	listPrefix := filePrefix
	if m.cfg.Prefix != "" {
		listPrefix = strings.TrimSuffix(m.cfg.Prefix, "/") + "/" + filePrefix
	}
	objects, err := m.objects.ListObjects(ctx, listPrefix)
	if err != nil {
		return 0, fmt.Errorf("list backups: %w", err)
	}

	cutoff := m.now().AddDate(0, 0, -m.cfg.RetentionDays)
	removed := 0
	for _, obj := range objects {
		if !strings.HasPrefix(path.Base(obj.Key), filePrefix) || !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := m.objects.RemoveObject(ctx, obj.Key); err != nil {
			m.log.Warn().Err(err).Str("key", obj.Key).Msg("failed to remove old backup")
			continue
		}
		m.log.Info().Str("key", obj.Key).Msg("removed old backup")
		removed++
	}
	return removed, nil
}

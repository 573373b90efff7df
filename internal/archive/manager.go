package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/store"
)

// Config holds snapshot manager configuration.
type Config struct {
	Key      string        // Object key, e.g. "snapshots/nochgpt.db.zst"
	Interval time.Duration // Upload period
	TempDir  string        // Scratch space for snapshot files
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// Manager uploads periodic database snapshots and restores them on boot.
type Manager struct {
	store    *ObjectStore
	db       *store.DB
	key      string
	interval time.Duration
	tempDir  string
	metrics  *metrics.Metrics
	log      *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a snapshot manager.
func NewManager(objStore *ObjectStore, db *store.DB, cfg Config) *Manager {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}
	return &Manager{
		store:    objStore,
		db:       db,
		key:      cfg.Key,
		interval: cfg.Interval,
		tempDir:  tempDir,
		metrics:  cfg.Metrics,
		log:      log.WithModule("archive"),
	}
}

// Restore downloads and decompresses the latest snapshot into dbPath.
// Returns false when no snapshot exists yet, which is normal for a first
// deployment.
func Restore(ctx context.Context, objStore *ObjectStore, key, dbPath string) (bool, error) {
	body, _, err := objStore.Download(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return false, fmt.Errorf("archive: create data dir: %w", err)
	}
	if err := DecompressStream(body, dbPath); err != nil {
		return false, err
	}
	return true, nil
}

// UploadSnapshot takes a consistent snapshot of the live database,
// compresses it, and uploads it.
func (m *Manager) UploadSnapshot(ctx context.Context) error {
	snapshotPath := filepath.Join(m.tempDir, fmt.Sprintf("nochgpt_snapshot_%d.db", time.Now().UnixNano()))
	if err := m.db.CreateSnapshot(ctx, snapshotPath); err != nil {
		return fmt.Errorf("archive: create snapshot: %w", err)
	}
	defer os.Remove(snapshotPath)

	compressedPath := snapshotPath + ".zst"
	if err := CompressFile(snapshotPath, compressedPath); err != nil {
		return err
	}
	defer os.Remove(compressedPath)

	compressed, err := os.Open(compressedPath)
	if err != nil {
		return fmt.Errorf("archive: open compressed snapshot: %w", err)
	}
	defer compressed.Close()

	etag, err := m.store.Upload(ctx, m.key, compressed, "application/zstd")
	if err != nil {
		return err
	}

	m.log.WithField("etag", etag).Info("snapshot uploaded")
	return nil
}

// Start launches the periodic upload loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.uploadOnce(loopCtx)
			}
		}
	}()

	m.log.WithField("interval", m.interval.String()).Info("snapshot uploads scheduled")
}

func (m *Manager) uploadOnce(ctx context.Context) {
	uploadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	err := m.UploadSnapshot(uploadCtx)
	status := "success"
	if err != nil {
		status = "error"
		m.log.WithError(err).Error("snapshot upload failed")
	}
	if m.metrics != nil {
		m.metrics.RecordArchiveUpload(status)
	}
}

// Stop halts the upload loop and waits for an in-flight upload to finish.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
}

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

const (
	fileDirPerm   = 0o755
	filePerm      = 0o600
	watchDebounce = 200 * time.Millisecond
)

// FileStore keeps all keys in one JSON object file.
// Every write replaces the file through a temp file and rename, so readers
// never observe a partial document.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu          sync.Mutex
	lastWritten [sha256.Size]byte
}

// NewFileStore creates a store backed by path. The parent directory is
// created when missing; the file itself is created on the first write.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("storage path is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), fileDirPerm); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &FileStore{
		path:   path,
		logger: logger.With(slog.String("component", "storage.FileStore")),
	}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Get implements ports.KeyValueStore.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}

	v, ok := doc[key]
	if !ok {
		return "", domain.NewNotFoundError("key", key)
	}

	return v, nil
}

// Set implements ports.KeyValueStore.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements ports.KeyValueStore.
func (s *FileStore) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	maps.Copy(doc, entries)

	return s.write(doc)
}

// Close implements ports.KeyValueStore.
func (s *FileStore) Close() error { return nil }

// Name implements ports.HealthChecker.
func (s *FileStore) Name() string { return healthCheckName }

// Check implements ports.HealthChecker. The directory must be writable.
func (s *FileStore) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	probe, err := os.CreateTemp(filepath.Dir(s.path), ".probe-*")
	if err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}

	name := probe.Name()
	_ = probe.Close()

	return os.Remove(name)
}

// read loads the document. A missing file is an empty document; a corrupt
// file is logged and treated as empty so the next write repairs it.
func (s *FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	doc := make(map[string]string)
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("storage file is corrupt, starting from an empty document",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)

		return make(map[string]string), nil
	}

	return doc, nil
}

func (s *FileStore) write(doc map[string]string) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding storage document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	s.lastWritten = sha256.Sum256(raw)

	return nil
}

// Watch blocks until ctx is done, calling onChange whenever the file is
// modified by someone other than this store. Bursts of events are collapsed
// into one call.
func (s *FileStore) Watch(ctx context.Context, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// The directory is watched because rename replaces the file's inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.path), err)
	}

	s.logger.Debug("watching storage file", slog.String("path", s.path))

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.logger.Warn("file watcher error", slog.String("error", err.Error()))

		case <-debounce.C:
			if s.externallyModified() {
				s.logger.Info("storage file changed externally", slog.String("path", s.path))
				onChange(ctx)
			}
		}
	}
}

func (s *FileStore) externallyModified() bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return sha256.Sum256(raw) != s.lastWritten
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// FileKV keeps every key in one JSON document that is rewritten atomically
// on each change, so a crash never leaves a half-written file.
type FileKV struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

var _ KV = (*FileKV)(nil)

// NewFileKV loads path if it exists. A missing file starts empty. A document
// that does not parse is moved to path+".corrupt" and the store starts empty,
// so later writes cannot overwrite it.
func NewFileKV(path string, logger *slog.Logger) (*FileKV, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kv := &FileKV{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}

		return kv, nil
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return kv, nil
	}

	if err := json.Unmarshal(raw, &kv.data); err != nil {
		kept := path + ".corrupt"
		if rerr := os.Rename(path, kept); rerr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, errors.Join(err, rerr))
		}

		logger.Warn("storage file is corrupt, starting empty",
			slog.String("path", path),
			slog.String("kept_as", kept),
			slog.Any("error", err),
		)

		kv.data = make(map[string]json.RawMessage)
	}

	return kv, nil
}

// Get implements KV.
func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return bytes.Clone(v), nil
}

// Set implements KV. Values that are not valid JSON are stored as JSON strings.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !json.Valid(value) {
		quoted, err := json.Marshal(string(value))
		if err != nil {
			return err
		}

		value = quoted
	}

	prev, had := f.data[key]
	f.data[key] = bytes.Clone(value)

	if err := f.flushLocked(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}

		return err
	}

	return nil
}

// Delete implements KV.
func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	if !had {
		return nil
	}

	delete(f.data, key)

	if err := f.flushLocked(); err != nil {
		f.data[key] = prev
		return err
	}

	return nil
}

// Close implements KV.
func (f *FileKV) Close() error {
	return nil
}

func (f *FileKV) flushLocked() error {
	buf, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	if err := atomic.WriteFile(f.path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (f *FileKV) Name() string {
	return "file-store"
}

// Check verifies the storage directory is still reachable.
// Implements ports.HealthChecker.
func (f *FileKV) Check(context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileKV keeps every key in one JSON document on disk
type FileKV struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileKV creates a FileKV backed by path. The file is created on the first write.
func NewFileKV(path string, logger *zap.Logger) *FileKV {
	return &FileKV{
		path:   path,
		logger: logger,
	}
}

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}

	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *FileKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	doc[key] = string(value)
	return f.save(doc)
}

func (f *FileKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}

	delete(doc, key)
	return f.save(doc)
}

func (f *FileKV) Close() error {
	return nil
}

// load reads the document. A missing file is an empty document.
func (f *FileKV) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	doc := make(map[string]string)
	if err := json.Unmarshal(data, &doc); err != nil {
		f.logger.Warn("State file is not valid JSON, starting empty",
			zap.String("file", f.path),
			zap.Error(err))
		return make(map[string]string), nil
	}
	return doc, nil
}

// save writes to a temporary file and renames it over the target
func (f *FileKV) save(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	f.logger.Debug("State file saved",
		zap.String("file", f.path),
		zap.Int("keys", len(doc)))
	return nil
}

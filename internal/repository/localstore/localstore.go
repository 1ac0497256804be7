// Package localstore keeps the durable records of the stock tracker. Each record
// is a single JSON document addressed by key, mirroring the browser storage
// layout so exported data stays readable by both sides.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

// Record keys.
const (
	KeyItems      = "stockItems"
	KeyCategories = "stockCategories"
	KeyHistory    = "stockHistory"
)

// ErrInvalidKey is returned for keys that cannot be mapped to a file name.
var ErrInvalidKey = errors.New("invalid record key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store loads and saves whole records.
type Store interface {
	// Load decodes the record into dst. It reports false when the record does not exist.
	Load(key string, dst any) (bool, error)
	Save(key string, value any) error
}

// FileStore writes one <key>.json file per record under a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore prepares dir and returns a store rooted there.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, errors.New("data directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Load implements Store.
func (s *FileStore) Load(key string, dst any) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Save implements Store. The record is written to a temporary file and renamed
// into place so readers never observe a partial write.
func (s *FileStore) Save(key string, value any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	temp := path + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", temp, err)
	}
	if err := os.Rename(temp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	s.logger.Debug("record saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Memory is an in-process Store for tests and ephemeral runs.
type Memory struct {
	mu       sync.Mutex
	records  map[string][]byte
	failures map[string]error
	saves    map[string]int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records:  make(map[string][]byte),
		failures: make(map[string]error),
		saves:    make(map[string]int),
	}
}

// FailSaves makes every later Save of key return err. A nil err clears it.
func (m *Memory) FailSaves(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Saves returns how many times key was written successfully.
func (m *Memory) Saves(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[key]
}

// Put stores raw JSON under key, bypassing failure injection.
func (m *Memory) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = append([]byte(nil), raw...)
}

// Load implements Store.
func (m *Memory) Load(key string, dst any) (bool, error) {
	m.mu.Lock()
	data, ok := m.records[key]
	m.mu.Unlock()
	if !ok || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save implements Store.
func (m *Memory) Save(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[key]; err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.records[key] = data
	m.saves[key]++
	return nil
}

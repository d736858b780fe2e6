package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
)

// ErrCacheWrite wraps every failure to persist the cache file.
var ErrCacheWrite = errors.New("cache write failed")

// Store reads and writes one cache file.
type Store struct {
	path string
	log  *zap.Logger
}

// NewStore creates a Store for path.
func NewStore(path string, log *zap.Logger) *Store {
	return &Store{path: path, log: logger.OrNop(log)}
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Load reads the cache file. A missing or unreadable file yields an empty
// cache; the latter is logged. Entries that fail to decode are dropped with a
// warning and the original bytes are kept at BackupPath, since the next Save
// replaces the file without them.
func (s *Store) Load() *model.CacheFile {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cache unreadable, starting empty", zap.String("path", s.path), zap.Error(err))
		}
		return model.NewCacheFile()
	}
	c := model.NewCacheFile()
	if err := json.Unmarshal(data, c); err != nil {
		s.log.Warn("cache corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		s.backup(data)
		return model.NewCacheFile()
	}
	if c.Data.Symbols == nil {
		c.Data.Symbols = make(map[string]model.SymbolHistory)
	}
	if len(c.Data.Skipped) > 0 {
		s.log.Warn("cache entries skipped",
			zap.String("path", s.path),
			zap.Strings("entries", c.Data.Skipped),
			zap.Int("symbols_kept", len(c.Data.Symbols)))
		s.backup(data)
	}
	return c
}

// BackupPath is where Load copies a cache file it could not fully decode.
func (s *Store) BackupPath() string { return s.path + ".corrupt" }

func (s *Store) backup(data []byte) {
	if err := WriteAtomic(s.BackupPath(), data); err != nil {
		s.log.Warn("cache backup failed", zap.String("path", s.BackupPath()), zap.Error(err))
		return
	}
	s.log.Info("cache backup written", zap.String("path", s.BackupPath()))
}

// Save writes the cache atomically: a temp file in the same directory is
// renamed over the target.
func (s *Store) Save(c *model.CacheFile) error {
	return WriteFileAtomic(s.path, c)
}

// WriteFileAtomic marshals v as indented JSON and replaces path with it.
func WriteFileAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrCacheWrite, err)
	}
	return WriteAtomic(path, data)
}

// WriteAtomic replaces path with data via a temp file in the same directory.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %v", ErrCacheWrite, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrCacheWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %v", ErrCacheWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrCacheWrite, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod: %v", ErrCacheWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrCacheWrite, err)
	}
	return nil
}

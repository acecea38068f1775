package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"seasonmap/internal/logging"
)

// ErrLocked is returned when another process holds the output lock.
var ErrLocked = errors.New("results file is locked by another run")

// Store reads and writes the results file.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock
	mu     sync.Mutex
}

// NewStore creates a store for path. Nothing is read or written until Load
// or Save is called.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "results"),
		lock:   flock.New(path + ".lock"),
	}
}

// Path returns the results file location.
func (s *Store) Path() string {
	return s.path
}

// Lock takes the exclusive output lock for the duration of a run. It fails
// fast with ErrLocked instead of waiting.
func (s *Store) Lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire results lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, s.path)
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (s *Store) Unlock() error {
	return s.lock.Unlock()
}

// Load reads previously saved records. A missing file yields no records; an
// unreadable one is logged and treated as empty so the run starts fresh.
func (s *Store) Load() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "failed to read results file", "results_read_failed",
				logging.String("path", s.path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "previously processed ids will be processed again"))
		}
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logging.WarnWithContext(s.logger, "failed to parse results file", "results_parse_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or move the file before the next run"),
			logging.String(logging.FieldImpact, "previously processed ids will be processed again"))
		return nil
	}

	s.logger.Debug("loaded results",
		logging.Int("record_count", len(records)),
		logging.String("path", s.path))
	return records
}

// Save writes records atomically. An empty slice leaves the file untouched.
func (s *Store) Save(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lock.Locked() {
		if err := s.Lock(); err != nil {
			return err
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.Debug("failed to release results lock", logging.Error(err))
			}
		}()
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved results",
		logging.Int("record_count", len(records)),
		logging.String("path", s.path))
	return nil
}

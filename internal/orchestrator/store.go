package orchestrator

// #region imports
import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// #endregion

// #region repository

// Repository persists one kind of orchestration record.
// New records are appended; mutations rewrite the whole set.
type Repository[T any] interface {
	Load() ([]T, error)
	Append(rec T) error
	Rewrite(recs []T) error
}

// ConflictsPath derives the conflict file from the events file:
// "x.jsonl" becomes "x_conflicts.jsonl".
func ConflictsPath(eventsPath string) string {
	return strings.TrimSuffix(eventsPath, ".jsonl") + "_conflicts.jsonl"
}

// #endregion

// #region jsonl

const maxLineBytes = 4 << 20

// JSONLRepository stores one JSON object per line in a single file.
type JSONLRepository[T any] struct {
	path string
}

// NewJSONLRepository returns a repository backed by path. The file is
// created on first write.
func NewJSONLRepository[T any](path string) *JSONLRepository[T] {
	return &JSONLRepository[T]{path: path}
}

// Path returns the backing file path.
func (r *JSONLRepository[T]) Path() string {
	return r.path
}

// Load reads every decodable line. A missing file is an empty repository.
// Undecodable lines are skipped and logged; the records read so far are
// returned alongside any read error.
func (r *JSONLRepository[T]) Load() ([]T, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[STORE] %s not found, starting empty", r.path)
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	var out []T
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Printf("[STORE] error: %s line %d: %v", r.path, lineNo, err)
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read %s: %w", r.path, err)
	}
	return out, nil
}

// Append writes one record as a new line.
func (r *JSONLRepository[T]) Append(rec T) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := r.ensureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", r.path, err)
	}
	return f.Close()
}

// Rewrite replaces the file with recs via a temp file and rename.
func (r *JSONLRepository[T]) Rewrite(recs []T) error {
	var buf bytes.Buffer
	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := r.ensureDir(); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (r *JSONLRepository[T]) ensureDir() error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// #endregion

// #region memory

// MemoryRepository keeps records in process only.
type MemoryRepository[T any] struct {
	mu   sync.Mutex
	recs []T
	// Err, when set, is returned by Append and Rewrite.
	Err error
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{}
}

// Load returns a copy of the stored records.
func (m *MemoryRepository[T]) Load() ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.recs...), nil
}

// Append stores rec.
func (m *MemoryRepository[T]) Append(rec T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.recs = append(m.recs, rec)
	return nil
}

// Rewrite replaces the stored records.
func (m *MemoryRepository[T]) Rewrite(recs []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.recs = append([]T(nil), recs...)
	return nil
}

// #endregion

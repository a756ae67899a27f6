package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/model"
)

// SchemaVersion is the current persistence schema version.
const SchemaVersion = 1

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1024 * 1024

// Persistence defines the interface for event history storage.
type Persistence interface {
	// Load reads all events from storage, oldest first.
	Load() ([]model.Event, error)

	// Append adds an event to storage.
	Append(e model.Event) error

	// Rewrite replaces the entire storage file (used for compaction).
	Rewrite(es []model.Event) error

	// Clear removes all stored events.
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	ToastySchemaVersion int   `json:"toasty_schema_version"`
	CreatedAt           int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence implements Persistence using an append-only JSONL file.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence opens (or creates) the history file at path.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	p := &JSONLPersistence{path: path, file: file}
	if info.Size() == 0 {
		if err := writeHeader(file); err != nil {
			file.Close()
			return nil, err
		}
	}
	return p, nil
}

// Path returns the file backing this persistence.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func writeHeader(w io.Writer) error {
	return writeRecord(w, schemaHeader{
		ToastySchemaVersion: SchemaVersion,
		CreatedAt:           time.Now().Unix(),
	})
}

func writeRecord(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadEvents decodes a history stream. Malformed lines are skipped; a header
// newer than SchemaVersion is an error.
func ReadEvents(r io.Reader) ([]model.Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var events []model.Event
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if first {
			first = false
			var header schemaHeader
			if json.Unmarshal(line, &header) == nil && header.ToastySchemaVersion > 0 {
				if header.ToastySchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.ToastySchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var e model.Event
		if err := json.Unmarshal(line, &e); err != nil || e.Validate() != nil {
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading history: %w", err)
	}
	return events, nil
}

// LoadFile reads events from a history file without holding it open.
// A missing file yields no events.
func LoadFile(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ReadEvents(f)
}

// Load reads all events from storage.
func (p *JSONLPersistence) Load() ([]model.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}

	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	events, err := ReadEvents(p.file)

	// Seek back to end for appending
	if _, serr := p.file.Seek(0, io.SeekEnd); serr != nil && err == nil {
		err = serr
	}
	return events, err
}

// Append adds an event to storage.
func (p *JSONLPersistence) Append(e model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	if err := writeRecord(p.file, e); err != nil {
		return err
	}
	return p.file.Sync()
}

// Rewrite replaces the file with a header followed by es.
func (p *JSONLPersistence) Rewrite(es []model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	return p.replaceLocked(es)
}

// Clear removes all stored events.
func (p *JSONLPersistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	return p.replaceLocked(nil)
}

// replaceLocked swaps in a fresh file via a backup so a failed write can be
// rolled back.
func (p *JSONLPersistence) replaceLocked(es []model.Event) error {
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	backupPath := p.path + ".bak"
	if err := os.Rename(p.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0600)
	if err != nil {
		_ = os.Rename(backupPath, p.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file

	w := bufio.NewWriter(file)
	if err := writeHeader(w); err != nil {
		return err
	}
	for _, e := range es {
		if err := writeRecord(w, e); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := p.file.Sync(); err != nil {
		return err
	}

	_ = os.Remove(backupPath)
	return nil
}

// Close releases file handles and resources.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// RecoverFromCorruption moves a damaged history file aside and rewrites it
// with only the records that still decode.
func RecoverFromCorruption(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	valid, _ := ReadEvents(f)
	f.Close()

	backupPath := path + ".corrupted." + time.Now().Format("20060102-150405")
	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("failed to backup corrupted file: %w", err)
	}

	p, err := NewJSONLPersistence(path)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.Rewrite(valid)
}

package logstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Read when the given path does not exist.
var ErrNotFound = errors.New("log file not found")

const timestampLayout = "2006-01-02_15-04-05"

// ReadResult is the outcome of a filtered read over a log file.
type ReadResult struct {
	TotalRecords    int    // decoded records in the file, ignoring malformed lines
	ReturnedRecords int    // records selected by the filter
	TextBody        string // selected records' Line fields, newline-joined
}

// Store creates per-run log files, accepts appended lines from an
// OutputPump, and serves filtered reads. Appends are serialized per path via
// a lazily-created per-path mutex registry, guarded by one registry lock.
type Store struct {
	dir string

	mu      sync.Mutex
	writers map[string]*sync.Mutex
}

// NewStore returns a Store rooted at dir. dir is created lazily by Create,
// not here, so constructing a Store never touches the filesystem.
func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		writers: make(map[string]*sync.Mutex),
	}
}

// Create produces a fresh, empty log file named from creationInstant and
// returns its absolute path. Same-second collisions are disambiguated with a
// numeric suffix so the returned path is always unique.
func (s *Store) Create(creationInstant time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	base := creationInstant.UTC().Format(timestampLayout)
	for attempt := 0; ; attempt++ {
		name := base + ".log"
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d.log", base, attempt)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("create log file: %w", err)
		}
		_ = f.Close()

		abs, err := filepath.Abs(path)
		if err != nil {
			return path, nil
		}
		return abs, nil
	}
}

// Append writes one record to path and flushes it before returning, so a
// concurrent reader observes it immediately. Appends to the same path are
// serialized; appends to different paths never block each other.
func (s *Store) Append(path, line string, at time.Time) error {
	mu := s.lockFor(path)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file for append: %w", err)
	}
	defer f.Close()

	rec := Record{Timestamp: at.UTC(), Line: strings.TrimRight(line, "\r\n")}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode log record: %w", err)
	}
	encoded = append(encoded, '\n')

	if _, err := f.Write(encoded); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}
	return f.Sync()
}

// Read scans path from start to end, decodes each line, silently skips
// malformed ones (including a partially-written tail), and returns the view
// selected by filter.
func (s *Store) Read(path string, filter Filter) (ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ReadResult{}, ErrNotFound
		}
		return ReadResult{}, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue // malformed or partial tail record: skip, don't count
		}
		records = append(records, rec)
	}
	// A scanner error (e.g. a line longer than the buffer) just truncates
	// what we were able to decode; it is not surfaced as a read failure.

	selected := applyFilter(records, filter)

	lines := make([]string, len(selected))
	for i, rec := range selected {
		lines[i] = rec.Line
	}

	return ReadResult{
		TotalRecords:    len(records),
		ReturnedRecords: len(selected),
		TextBody:        strings.Join(lines, "\n"),
	}, nil
}

func applyFilter(records []Record, filter Filter) []Record {
	switch filter.Kind {
	case LastN:
		if filter.N >= len(records) {
			return records
		}
		return records[len(records)-filter.N:]
	case SinceSeconds:
		cutoff := time.Now().UTC().Add(-time.Duration(filter.Seconds) * time.Second)
		out := make([]Record, 0, len(records))
		for _, rec := range records {
			if !rec.Timestamp.Before(cutoff) {
				out = append(out, rec)
			}
		}
		return out
	default:
		return records
	}
}

func (s *Store) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.writers[path]
	if !ok {
		mu = new(sync.Mutex)
		s.writers[path] = mu
	}
	return mu
}

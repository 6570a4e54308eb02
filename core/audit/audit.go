package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome values of a generation record
const (
	OutcomeSaved    = "saved"
	OutcomeNotReady = "not_ready"
	OutcomeFailed   = "failed"
)

// Record represents a single generation attempt
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Prompt     string    `json:"prompt"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"` // machine-readable failure class
	Error      string    `json:"error,omitempty"`
	Path       string    `json:"path,omitempty"`
	Bytes      int       `json:"bytes,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// NewRecord starts a record for prompt with a fresh ID
func NewRecord(prompt string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Prompt:    prompt,
	}
}

// Log appends records as JSON lines to a file
type Log struct {
	mu      sync.Mutex
	path    string
	enabled bool
}

// New returns a log writing to path. A disabled log discards records.
func New(path string, enabled bool) *Log {
	return &Log{path: path, enabled: enabled}
}

// Path returns the log file location
func (l *Log) Path() string {
	return l.path
}

// Append writes one record to the log
func (l *Log) Append(rec Record) error {
	if l == nil || !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// All reads every record from the log. Malformed lines are skipped.
func (l *Log) All() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan audit log: %w", err)
	}
	return records, nil
}

// Recent returns the n most recent records
func (l *Log) Recent(n int) ([]Record, error) {
	records, err := l.All()
	if err != nil {
		return nil, err
	}
	if n <= 0 || len(records) <= n {
		return records, nil
	}
	return records[len(records)-n:], nil
}

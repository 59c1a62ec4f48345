// pkg/model/processing_log.go
package model

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one logged operation
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// LogEntry is one operation in the processing log
type LogEntry struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Details   string    `json:"details,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

// ProcessingLog collects entries for a single run.
// It is passed explicitly to every stage instead of living in package state.
type ProcessingLog struct {
	mu      sync.Mutex
	runID   string
	entries []LogEntry
	now     func() time.Time
}

// NewProcessingLog creates an empty log with a fresh run id
func NewProcessingLog() *ProcessingLog {
	return &ProcessingLog{
		runID: uuid.New().String(),
		now:   time.Now,
	}
}

// WithClock replaces the timestamp source, used by tests
func (l *ProcessingLog) WithClock(now func() time.Time) *ProcessingLog {
	l.now = now
	return l
}

// RunID returns the identifier shared by all entries of this run
func (l *ProcessingLog) RunID() string {
	return l.runID
}

// Add appends an entry, stamping it when no timestamp was set
func (l *ProcessingLog) Add(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	if entry.Status == "" {
		entry.Status = StatusSuccess
	}
	l.entries = append(l.entries, entry)
}

// Success appends a success entry
func (l *ProcessingLog) Success(name, details string) {
	l.Add(LogEntry{Name: name, Status: StatusSuccess, Details: details})
}

// Warn appends a warning entry
func (l *ProcessingLog) Warn(name, details string, warnings ...string) {
	l.Add(LogEntry{Name: name, Status: StatusWarning, Details: details, Warnings: warnings})
}

// Fail appends an error entry
func (l *ProcessingLog) Fail(name string, errs ...string) {
	l.Add(LogEntry{Name: name, Status: StatusError, Errors: errs})
}

// Entries returns a copy of the entries in insertion order
func (l *ProcessingLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasErrors reports whether any entry has error status
func (l *ProcessingLog) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Status == StatusError {
			return true
		}
	}
	return false
}

// FormatProcessingLog renders entries in the fixed plain-text layout
func FormatProcessingLog(entries []LogEntry, generated time.Time) string {
	var sb strings.Builder
	banner := strings.Repeat("=", 60)

	sb.WriteString(banner + "\n")
	sb.WriteString("DATA WRANGLER PROCESSING LOG\n")
	sb.WriteString(banner + "\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generated.Format("2006-01-02T15:04:05.000000")))

	for i, op := range entries {
		sb.WriteString(fmt.Sprintf("Operation %d: %s\n", i+1, op.Name))
		sb.WriteString(fmt.Sprintf("  Timestamp: %s\n", op.Timestamp.Format("2006-01-02T15:04:05.000000")))
		sb.WriteString(fmt.Sprintf("  Status: %s\n", op.Status))
		if op.Details != "" {
			sb.WriteString(fmt.Sprintf("  Details: %s\n", op.Details))
		}
		writeBullets(&sb, "Warnings", op.Warnings)
		writeBullets(&sb, "Errors", op.Errors)
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func writeBullets(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("  " + title + ":\n")
	for _, item := range items {
		sb.WriteString("    - " + item + "\n")
	}
}

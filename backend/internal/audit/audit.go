// Package audit keeps an append-only JSON-lines trail of generated
// incident reports.
package audit

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Agent identifies who filed a report
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entry is one audit record. Message content is never logged, only its
// sanitized form.
type Entry struct {
	Timestamp       time.Time     `json:"timestamp"`
	RequestID       string        `json:"request_id"`
	ReportID        string        `json:"report_id"`
	Agent           Agent         `json:"agent"`
	Source          string        `json:"source,omitempty"`
	Platform        string        `json:"platform,omitempty"`
	Sanitized       string        `json:"sanitized_message"`
	Category        string        `json:"category"`
	Toxicity        int           `json:"toxicity"`
	Confidence      int           `json:"confidence"`
	Severity        string        `json:"severity"`
	CrimeCategories []string      `json:"crime_categories"`
	Decision        string        `json:"decision"`
	PolicyID        string        `json:"policy_id,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	Latency         time.Duration `json:"latency_ns"`
}

// Logger handles structured audit logging
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	encoder  *json.Encoder
	fallback zerolog.Logger
}

// NewLogger appends audit entries to the file at filePath, creating it
// if needed. Write failures are reported through fallback.
func NewLogger(filePath string, fallback zerolog.Logger) (*Logger, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := NewWriterLogger(file, fallback)
	l.closer = file
	return l, nil
}

// NewWriterLogger writes audit entries to w
func NewWriterLogger(w io.Writer, fallback zerolog.Logger) *Logger {
	return &Logger{
		encoder:  json.NewEncoder(w),
		fallback: fallback.With().Str("component", "audit").Logger(),
	}
}

// Log writes an audit entry, filling in the timestamp and request id
// when they are unset.
func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	if entry.CrimeCategories == nil {
		entry.CrimeCategories = []string{}
	}

	if err := l.encoder.Encode(entry); err != nil {
		l.fallback.Error().
			Err(err).
			Str("report_id", entry.ReportID).
			Str("decision", entry.Decision).
			Msg("failed to write audit entry")
	}
}

// Close closes the audit log file
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

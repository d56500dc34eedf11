package audit

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, zerolog.Nop())

	l.Log(Entry{ReportID: "r-1", Category: "high-risk", Toxicity: 80, Decision: "ESCALATE", CrimeCategories: []string{"Threats"}})
	l.Log(Entry{ReportID: "r-2", Category: "safe", Decision: "ARCHIVE"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "r-1", first.ReportID)
	assert.Equal(t, []string{"Threats"}, first.CrimeCategories)
	assert.False(t, first.Timestamp.IsZero())
	assert.NotEmpty(t, first.RequestID)
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.Equal(t, []string{}, second.CrimeCategories)
}

func TestLog_KeepsProvidedFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, zerolog.Nop())
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	l.Log(Entry{Timestamp: ts, RequestID: "req-7", ReportID: "r"})

	var got Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, ts.Equal(got.Timestamp))
	assert.Equal(t, "req-7", got.RequestID)
}

func TestNewLogger_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for _, id := range []string{"a", "b"} {
		l, err := NewLogger(path, zerolog.Nop())
		require.NoError(t, err)
		l.Log(Entry{ReportID: id})
		require.NoError(t, l.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		ids = append(ids, e.ReportID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestNewLogger_BadPath(t *testing.T) {
	_, err := NewLogger(filepath.Join(t.TempDir(), "missing", "audit.jsonl"), zerolog.Nop())
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLog_FailureGoesToFallback(t *testing.T) {
	var logs bytes.Buffer
	l := NewWriterLogger(failingWriter{}, zerolog.New(&logs))

	l.Log(Entry{ReportID: "r-9", Decision: "REVIEW"})

	assert.Contains(t, logs.String(), "failed to write audit entry")
	assert.Contains(t, logs.String(), "r-9")
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Log(Entry{})
	assert.NoError(t, l.Close())
}

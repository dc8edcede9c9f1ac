// Package audit implements the append-only in-process audit record: a bounded
// buffer with oldest-first eviction, query by recency, and JSON/CSV export.
// Logging is fire-and-forget; a failure here must never break the operation
// being audited.
package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity levels for audit entries.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

// Entry categories. Audit records are a superset of the proctoring stream and
// cover authentication and administrative actions too.
const (
	CategoryAuth         = "auth"
	CategoryAdmin        = "admin"
	CategoryExamSecurity = "exam_security"
	CategoryRateLimit    = "rate_limit"
	CategorySystem       = "system"
)

// Entry is one audit record.
type Entry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Category  string                 `json:"category"`
	Event     string                 `json:"event"`
	UserID    string                 `json:"user_id,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Filter narrows GetLogs/Export results. Zero values match everything.
type Filter struct {
	Category string
	Level    string
	UserID   string
	Since    time.Time
}

func (f Filter) matches(e Entry) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// Logger is the bounded audit buffer. Writes are serialized under the mutex so
// entries never interleave.
type Logger struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	zlog     *zap.Logger
	now      func() time.Time
}

// New creates a logger holding at most capacity entries.
func New(capacity int, zlog *zap.Logger) *Logger {
	if capacity < 1 {
		capacity = 1
	}
	if zlog == nil {
		zlog = zap.NewNop()
	}
	return &Logger{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		zlog:     zlog,
		now:      time.Now,
	}
}

// Log appends an entry, evicting the oldest once capacity is exceeded. Never
// panics out to the caller.
func (l *Logger) Log(level, category, event, userID, ip string, details map[string]interface{}) {
	defer func() {
		_ = recover()
	}()

	entry := Entry{
		ID:        uuid.New().String(),
		Timestamp: l.now(),
		Level:     level,
		Category:  category,
		Event:     event,
		UserID:    userID,
		IPAddress: ip,
		Details:   details,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	l.mu.Unlock()

	l.zlog.Info("audit",
		zap.String("level", level),
		zap.String("category", category),
		zap.String("event", event),
		zap.String("user_id", userID),
	)
}

// GetLogs returns up to limit matching entries, newest first.
func (l *Logger) GetLogs(f Filter, limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit < 1 {
		limit = len(l.entries)
	}

	out := make([]Entry, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.matches(l.entries[i]) {
			out = append(out, l.entries[i])
		}
	}
	return out
}

// Len returns the current number of buffered entries.
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Export serializes matching entries. Supported formats: "json", "csv".
func (l *Logger) Export(f Filter, format string) ([]byte, error) {
	entries := l.GetLogs(f, 0)

	switch format {
	case "json":
		return json.MarshalIndent(entries, "", "  ")
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"id", "timestamp", "level", "category", "event", "user_id", "ip_address"}); err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := w.Write([]string{
				e.ID,
				e.Timestamp.Format(time.RFC3339),
				e.Level,
				e.Category,
				e.Event,
				e.UserID,
				e.IPAddress,
			}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

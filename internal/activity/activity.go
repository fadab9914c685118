// Package activity records what the app does: a human-readable log line for
// every event plus a structured row in the activity journal.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/gemshot/internal/db"
)

// Event kinds.
const (
	KindSystem  = "SYSTEM"
	KindConfig  = "CONFIG"
	KindData    = "DATA"
	KindSave    = "SAVE"
	KindCapture = "CAPTURE_START"
	KindAI      = "AI"
	KindWarning = "WARNING"
)

// NewLogger creates the app logger. GEMSHOT_LOG_LEVEL selects the level.
func NewLogger(w io.Writer) *log.Logger {
	level := log.InfoLevel
	if lv, err := log.ParseLevel(os.Getenv("GEMSHOT_LOG_LEVEL")); err == nil && os.Getenv("GEMSHOT_LOG_LEVEL") != "" {
		level = lv
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "gemshot",
		Level:           level,
	})
}

// Recorder writes events to the logger and, when a database is attached,
// to the journal. Journal failures are logged and never returned.
type Recorder struct {
	logger *log.Logger
	db     *sql.DB
	now    func() time.Time
}

// New creates a Recorder. database may be nil.
func New(logger *log.Logger, database *sql.DB) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{logger: logger, db: database, now: time.Now}
}

// Discard returns a Recorder that drops everything.
func Discard() *Recorder {
	return New(nil, nil)
}

// Logger returns the underlying logger.
func (r *Recorder) Logger() *log.Logger {
	return r.logger
}

// Event logs msg under kind with optional key/value metadata.
func (r *Recorder) Event(ctx context.Context, kind, msg string, keyvals ...any) {
	r.logger.Info(fmt.Sprintf("[%s] %s", strings.ToUpper(kind), msg), keyvals...)
	if r.db == nil {
		return
	}
	ev := &db.Event{
		Kind:      strings.ToUpper(kind),
		Message:   msg,
		Meta:      toMeta(keyvals),
		CreatedAt: r.now().Unix(),
	}
	if _, err := db.InsertEvent(ctx, r.db, ev); err != nil {
		r.logger.Error("failed to write structured log", "err", err)
	}
}

// Warn logs a warning and journals it as a WARNING event.
func (r *Recorder) Warn(ctx context.Context, msg string, keyvals ...any) {
	r.logger.Warn(msg, keyvals...)
	if r.db == nil {
		return
	}
	ev := &db.Event{Kind: KindWarning, Message: msg, Meta: toMeta(keyvals), CreatedAt: r.now().Unix()}
	if _, err := db.InsertEvent(ctx, r.db, ev); err != nil {
		r.logger.Error("failed to write structured log", "err", err)
	}
}

// Error logs a failure with its details. Errors are not journaled.
func (r *Recorder) Error(msg string, err error, keyvals ...any) {
	if err != nil {
		keyvals = append(keyvals, "err", err)
	}
	r.logger.Error(msg, keyvals...)
}

// toMeta converts key/value pairs into a map. A trailing key without a value
// is kept with a nil value.
func toMeta(keyvals []any) map[string]any {
	if len(keyvals) == 0 {
		return nil
	}
	meta := make(map[string]any, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		var val any
		if i+1 < len(keyvals) {
			val = keyvals[i+1]
		}
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		meta[key] = val
	}
	return meta
}

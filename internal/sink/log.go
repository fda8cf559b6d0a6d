package sink

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/tracebackd/internal/frame"
)

// Records messages as structured log entries.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// Creates a log sink writing at info level. A nil logger uses [slog.Default].
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, level: slog.LevelInfo}
}

// Logs msg.
func (s *Log) Emit(msg frame.Message) error {
	s.logger.Log(context.Background(), s.level, "traceback received",
		"pid", msg.PID,
		"len", msg.Len,
		"text", msg.Text,
	)
	return nil
}

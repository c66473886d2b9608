package queue

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
)

// slogLogger adapts *slog.Logger to asynq.Logger.
type slogLogger struct {
	l *slog.Logger
}

// NewLogger returns an asynq.Logger writing through logger.
func NewLogger(logger *slog.Logger) asynq.Logger {
	return &slogLogger{l: logger.With("component", "asynq")}
}

func (s *slogLogger) Debug(args ...any) { s.l.Debug(fmt.Sprint(args...)) }
func (s *slogLogger) Info(args ...any)  { s.l.Info(fmt.Sprint(args...)) }
func (s *slogLogger) Warn(args ...any)  { s.l.Warn(fmt.Sprint(args...)) }
func (s *slogLogger) Error(args ...any) { s.l.Error(fmt.Sprint(args...)) }

func (s *slogLogger) Fatal(args ...any) {
	s.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}

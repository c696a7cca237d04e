package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

type StandardLogger struct {
	logger  *slog.Logger
	verbose bool
}

// NewStandardLogger logs to stderr, coloured when stderr is a terminal.
func NewStandardLogger(verbose bool) *StandardLogger {
	return NewLogger(colorable.NewColorable(os.Stderr), verbose, !isatty.IsTerminal(os.Stderr.Fd()))
}

func NewLogger(w io.Writer, verbose, noColor bool) *StandardLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})
	return &StandardLogger{
		logger:  slog.New(h).With("component", "csvseek"),
		verbose: verbose,
	}
}

func (l *StandardLogger) Info(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *StandardLogger) Warn(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *StandardLogger) Error(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *StandardLogger) Debug(format string, v ...interface{}) {
	if l.verbose {
		l.logger.Debug(fmt.Sprintf(format, v...))
	}
}

// Elapsed formats a duration the way lifecycle log lines report it.
func Elapsed(start time.Time) string {
	return time.Since(start).Round(time.Microsecond).String()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

// NopLogger discards everything. Readers use it when no logger is configured.
func NopLogger() Logger { return nopLogger{} }

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/logging"
)

// logFileWriter holds the log file writer for cleanup purposes.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// zerologGlobalMu protects concurrent writes to the zerolog global logger.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects zerolog global

// InitLogger creates the process logger.
//
// Output format is determined by the terminal:
//   - TTY with colors enabled: Console writer
//   - Non-TTY or NO_COLOR set: JSON output to stderr
//
// When logFile is set, entries are also written there with rotation and
// secrets redacted. If the file cannot be opened the returned logger is
// console-only and the error is returned alongside it.
func InitLogger(level zerolog.Level, logFile string) (zerolog.Logger, error) {
	console := selectOutput()

	var (
		writer  = console
		fileErr error
	)
	if logFile != "" {
		fw, err := createLogFileWriter(logFile)
		if err != nil {
			fileErr = err
		} else {
			CloseLogFile()
			logFileWriter = fw
			writer = zerolog.MultiLevelWriter(console, fw)
		}
	}

	logger := newLogger(level, writer)
	setGlobalLogger(logger)
	return logger, fileErr
}

// InitLoggerWithWriter creates a logger on a custom writer.
// This is primarily intended for testing purposes.
func InitLoggerWithWriter(level zerolog.Level, w io.Writer) zerolog.Logger {
	logger := newLogger(level, w)
	setGlobalLogger(logger)
	return logger
}

func newLogger(level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().
		Logger()
}

// setGlobalLogger points the zerolog/log package at the CLI logger, so code
// using log.Info() shares its configuration.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
	zerolog.DefaultContextLogger = &log.Logger
}

// CloseLogFile closes the log file writer if it was opened.
// This should be called during application shutdown.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel resolves the log level. --verbose and --quiet win over a
// configured level name; an empty name means info.
func selectLevel(verbose, quiet bool, name string) (zerolog.Level, error) {
	switch {
	case verbose:
		return zerolog.DebugLevel, nil
	case quiet:
		return zerolog.WarnLevel, nil
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("%w: unknown log level %q", errors.ErrValueOutOfRange, name)
	}
	return level, nil
}

// selectOutput determines the appropriate output writer based on
// terminal capabilities and environment settings.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// filteringWriteCloser wraps a WriteCloser with sensitive data filtering.
type filteringWriteCloser struct {
	filter *logging.FilteringWriter
	closer io.Closer
}

// Write implements io.Writer by delegating to the filtering writer.
func (fwc *filteringWriteCloser) Write(p []byte) (n int, err error) {
	return fwc.filter.Write(p)
}

// Close implements io.Closer by delegating to the underlying closer.
func (fwc *filteringWriteCloser) Close() error {
	return fwc.closer.Close()
}

// createLogFileWriter creates a rotating writer for path, wrapped with a
// filtering writer so secrets never reach disk.
func createLogFileWriter(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.CacheDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}

	return &filteringWriteCloser{
		filter: logging.NewFilteringWriter(lj),
		closer: lj,
	}, nil
}

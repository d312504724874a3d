// Package logger is moonlit's process-wide structured logger. Records go to
// <config dir>/logs/moonlit.log, rotated by size, and are mirrored to stderr
// only in debug mode because the TUI owns the terminal. Calls take key/value
// pairs, e.g. logger.Warn("moon phase fetch failed", "date", d, "error", err).
// Until Init or SetOutput runs, every call is a no-op.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/moonlit/internal/constants"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Logger is the global logger. It is nil until Init or SetOutput.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
}

// Path returns the log file under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init opens the rotating log file. Debug lowers the level to debug, adds
// caller information and copies every record to stderr.
func Init(cfg Config) error {
	path := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
		w = io.MultiWriter(os.Stderr, w)
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

// SetOutput points the global logger at w, mainly for tests.
func SetOutput(w io.Writer, level log.Level) {
	Logger = log.NewWithOptions(w, log.Options{Level: level, Prefix: constants.AppName})
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn records a degraded but recoverable condition: a failed mirror write,
// an API fallback, a skipped rotation.
func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

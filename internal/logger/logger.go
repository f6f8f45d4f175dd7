// Package logger is the process-wide leveled logger, backed by go-logging.
// Console output goes to stderr; an optional file backend records DEBUG and up.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"
)

const (
	module      = "ragtime"
	logFileName = "ragtime.log"
	timeFormat  = "2006/01/02 15:04:05"
)

var (
	logger  = logging.MustGetLogger(module)
	logFile *os.File
)

func init() {
	// 未初始化时也能直接使用
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), newFormatter())
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(logging.INFO, module)
	logger.SetBackend(leveled)
}

// ParseLevel accepts go-logging level names in any case; unknown names fall back to INFO.
func ParseLevel(name string) logging.Level {
	level, err := logging.LogLevel(strings.ToUpper(name))
	if err != nil {
		return logging.INFO
	}
	return level
}

// InitLogger wires the stderr backend at level and, when folder is set,
// a file backend at DEBUG.
func InitLogger(level logging.Level, folder string) {
	backends := make([]logging.Backend, 0, 2)

	console := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), newFormatter()))
	console.SetLevel(level, module)
	backends = append(backends, console)

	if fileBackend := initFileBackend(folder); fileBackend != nil {
		leveled := logging.AddModuleLevel(fileBackend)
		leveled.SetLevel(logging.DEBUG, module)
		backends = append(backends, leveled)
	}

	logger.SetBackend(logging.MultiLogger(backends...))
}

func initFileBackend(folder string) logging.Backend {
	if folder == "" {
		return nil
	}
	if err := os.MkdirAll(folder, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder %s: %v\n", folder, err)
		return nil
	}
	path := filepath.Join(folder, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", path, err)
		return nil
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	return logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), newFormatter())
}

func newFormatter() logging.Formatter {
	return logging.MustStringFormatter(`%{time:` + timeFormat + `} %{level} - %{message}`)
}

// CloseLogger closes the log file, if any.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(args ...any) { logger.Debug(args...) }

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

func Info(args ...any) { logger.Info(args...) }

func Infof(format string, args ...any) { logger.Infof(format, args...) }

func Warning(args ...any) { logger.Warning(args...) }

func Warningf(format string, args ...any) { logger.Warningf(format, args...) }

func Error(args ...any) { logger.Error(args...) }

func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the severity of a log message
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fields carries structured context attached to a log line
type Fields map[string]interface{}

type logger struct {
	writer   io.Writer
	mu       sync.Mutex
	logPath  string
	minLevel Level
}

var (
	global *logger
	once   sync.Once
)

// Initialize sets up the file logger with rotation under ~/.miru/logs
func Initialize() error {
	var initErr error
	once.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir := filepath.Join(homeDir, ".miru", "logs")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}

		logPath := filepath.Join(logDir, "miru.log")
		global = &logger{
			writer: &lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     30, // days
				Compress:   true,
			},
			logPath:  logPath,
			minLevel: DEBUG,
		}
	})

	return initErr
}

// LogFilePath returns the path of the active log file, or "" before Initialize
func LogFilePath() string {
	if global == nil {
		return ""
	}
	return global.logPath
}

// SetMinLevel sets the minimum level that gets recorded
func SetMinLevel(level Level) {
	if global != nil {
		global.mu.Lock()
		global.minLevel = level
		global.mu.Unlock()
	}
}

func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func callerInfo(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func write(level Level, msg string, fields Fields) {
	if global == nil {
		// Logging is best-effort everywhere; nothing to do before Initialize
		return
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if level < global.minLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, level.String(), callerInfo(3), msg)
	if f := formatFields(fields); f != "" {
		line += " " + f
	}

	_, _ = global.writer.Write([]byte(line + "\n"))
}

// Debug logs a debug message
func Debug(msg string, fields Fields) {
	write(DEBUG, msg, fields)
}

// Info logs an info message
func Info(msg string, fields Fields) {
	write(INFO, msg, fields)
}

// Warn logs a warning message
func Warn(msg string, fields Fields) {
	write(WARN, msg, fields)
}

// Error logs an error message, attaching err under the "error" field
func Error(msg string, err error, fields Fields) {
	if fields == nil {
		fields = make(Fields)
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	write(ERROR, msg, fields)
}

// Package logger is the application-wide leveled logger. GUI builds
// route it to a rotated log file next to the preference database so
// crash reports have something to attach.
package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger = log.New(os.Stderr, "", log.LstdFlags)
	verbose       bool
)

// Init configures the logger. When logPath is non-empty, output goes to
// a rotated file there instead of stderr.
func Init(verboseMode bool, logPath string) {
	verbose = verboseMode
	if logPath == "" {
		return
	}
	SetOutput(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	})
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// Info logs an informational message.
func Info(format string, v ...interface{}) {
	defaultLogger.Printf("[INFO] "+format, v...)
}

// Debug logs a debug message (only in verbose mode).
func Debug(format string, v ...interface{}) {
	if verbose {
		defaultLogger.Printf("[DEBUG] "+format, v...)
	}
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	defaultLogger.Printf("[WARN] "+format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	defaultLogger.Printf("[ERROR] "+format, v...)
}

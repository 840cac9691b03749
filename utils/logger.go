package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Level is a log severity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger provides structured, leveled logging throughout the application.
// All levels write to stderr so that stdout stays reserved for command
// payloads (JSON stats, reports, CSV paths).
type Logger struct {
	min Level
	out *log.Logger
}

// NewLogger creates a Logger that prints every level.
func NewLogger() *Logger {
	return NewLoggerAt(LevelDebug)
}

// NewLoggerAt creates a Logger that suppresses messages below min.
func NewLoggerAt(min Level) *Logger {
	return &Logger{min: min, out: log.New(os.Stderr, "", 0)}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) emit(level Level, tag, format string, args ...any) {
	if level < l.min {
		return
	}
	l.out.Printf(fmt.Sprintf("[%s] %s %s\n", l.timestamp(), tag, format), args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.emit(LevelInfo, "\033[32mINFO\033[0m ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.emit(LevelWarn, "\033[33mWARN\033[0m ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.emit(LevelError, "\033[31mERROR\033[0m", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.emit(LevelDebug, "\033[36mDEBUG\033[0m", format, args...)
}

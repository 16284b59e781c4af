// Package logformat recognizes log severity markers in plain text lines.
package logformat

import (
	"bytes"
	"strings"
)

// Level is a log severity.
type Level int

const (
	LevelUnknown Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to a Level.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelUnknown
	}
}

// severityOrder is checked most severe first so "ERROR" wins over an
// incidental "INFO" later in the line.
var severityOrder = []Level{LevelFatal, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

// LevelDetector detects log levels from line content
type LevelDetector struct {
	patterns map[Level][][]byte
}

// NewLevelDetector creates a detector from per-level marker lists
func NewLevelDetector(patterns map[Level][]string) *LevelDetector {
	d := &LevelDetector{patterns: make(map[Level][][]byte, len(patterns))}
	for level, list := range patterns {
		for _, p := range list {
			if p == "" {
				continue
			}
			d.patterns[level] = append(d.patterns[level], []byte(p))
		}
	}
	return d
}

// Detect returns the log level for a line
func (d *LevelDetector) Detect(content []byte) Level {
	for _, level := range severityOrder {
		for _, pattern := range d.patterns[level] {
			if bytes.Contains(content, pattern) {
				return level
			}
		}
	}
	return LevelUnknown
}

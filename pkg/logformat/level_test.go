package logformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	d := NewLevelDetector(map[Level][]string{
		LevelInfo:  {"[INF]", "INFO"},
		LevelWarn:  {"WARN"},
		LevelError: {"ERROR", ""},
		LevelFatal: {"FATAL"},
	})

	tests := []struct {
		line string
		want Level
	}{
		{"2024-01-01 [INF] started", LevelInfo},
		{"WARN disk almost full", LevelWarn},
		{"INFO retrying after ERROR", LevelError},
		{"FATAL: out of memory", LevelFatal},
		{"nothing to see", LevelUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Detect([]byte(tt.line)), tt.line)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLevel("Warning"))
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, LevelUnknown, ParseLevel("loud"))
	assert.Equal(t, "error", LevelError.String())
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/TimelordUK/mpage/internal/commands"
)

func TestLogLevelDefaultsToWarn(t *testing.T) {
	var level *cli.StringFlag
	for _, f := range rootFlags(&commands.Flags{}) {
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "log-level" {
			level = sf
		}
	}
	require.NotNil(t, level)
	assert.Equal(t, "warn", level.Value)
}

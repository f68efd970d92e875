// cmd/launchpilot/commands_test.go
package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launchFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("launch", pflag.ContinueOnError)
	flags.Float64("creator-pct", 0, "")
	flags.Int("creator-bps", 0, "")
	flags.Int("partner-bps", 0, "")
	return flags
}

func TestSplitFromFlagsDefaults(t *testing.T) {
	flags := launchFlagSet()
	require.NoError(t, flags.Parse(nil))

	split, err := splitFromFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), split.CreatorBps)
	assert.Equal(t, uint16(9000), split.PartnerBps)
}

func TestSplitFromFlagsPercent(t *testing.T) {
	flags := launchFlagSet()
	require.NoError(t, flags.Parse([]string{"--creator-pct", "25"}))

	split, err := splitFromFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, uint16(2500), split.CreatorBps)
	assert.Equal(t, uint16(7500), split.PartnerBps)
}

func TestSplitFromFlagsExplicitPairWins(t *testing.T) {
	flags := launchFlagSet()
	require.NoError(t, flags.Parse([]string{"--creator-pct", "25", "--creator-bps", "4000", "--partner-bps", "6000"}))

	split, err := splitFromFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, uint16(4000), split.CreatorBps)
	assert.Equal(t, uint16(6000), split.PartnerBps)
}

func TestSplitFromFlagsRejectsNonConservingPair(t *testing.T) {
	flags := launchFlagSet()
	require.NoError(t, flags.Parse([]string{"--creator-bps", "4000", "--partner-bps", "4000"}))

	_, err := splitFromFlags(flags)
	require.Error(t, err)
}

func TestParseTimeFlag(t *testing.T) {
	ts, dateOnly, err := parseTimeFlag("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
	assert.False(t, dateOnly)

	ts, dateOnly, err = parseTimeFlag("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), ts)
	assert.True(t, dateOnly)

	ts, dateOnly, err = parseTimeFlag("2025-06-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 15, ts.Hour())
	assert.False(t, dateOnly)

	_, _, err = parseTimeFlag("yesterday")
	require.Error(t, err)
}

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKey_DeterministicPerShape(t *testing.T) {
	require.Equal(t, "timeseries:auto:30", Key("auto", 30))
	require.Equal(t, Key("week", 90), Key("week", 90))
	require.NotEqual(t, Key("day", 30), Key("week", 30))
	require.NotEqual(t, Key("day", 30), Key("day", 31))
}

func TestTTL_ScalesWithRange(t *testing.T) {
	require.Equal(t, time.Duration(0), TTL(0))
	require.Equal(t, time.Minute, TTL(1))
	require.Equal(t, 30*time.Minute, TTL(30))
	require.Equal(t, 90*time.Minute, TTL(90))
	// One minute per day up to the one-day cap.
	require.Equal(t, 24*time.Hour, TTL(1440))
	require.Equal(t, 24*time.Hour, TTL(4000))
}

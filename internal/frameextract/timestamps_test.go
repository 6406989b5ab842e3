package frameextract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMosaicTimestamps_ScenarioTwoEndpoints(t *testing.T) {
	ts := MosaicTimestamps(60, 42)
	require.Len(t, ts, 42)
	require.InDelta(t, 3.0, ts[0], 0.01)
	require.InDelta(t, 57.0, ts[len(ts)-1], 0.01)
}

func TestMosaicTimestamps_WithinRange(t *testing.T) {
	ts := MosaicTimestamps(300, 30)
	require.Len(t, ts, 30)
	for _, v := range ts {
		require.GreaterOrEqual(t, v, 300*mosaicRangeStart-0.001)
		require.LessOrEqual(t, v, 300*mosaicRangeEnd+0.001)
	}
}

func TestMosaicTimestamps_Monotonic(t *testing.T) {
	ts := MosaicTimestamps(120, 25)
	for i := 1; i < len(ts); i++ {
		require.GreaterOrEqual(t, ts[i], ts[i-1])
	}
}

func TestMosaicTimestamps_ZeroCount(t *testing.T) {
	require.Nil(t, MosaicTimestamps(60, 0))
}

func TestMosaicTimestamps_ExactCountPreserved(t *testing.T) {
	for _, count := range []int{1, 2, 3, 4, 10, 17, 100} {
		ts := MosaicTimestamps(600, count)
		require.Lenf(t, ts, count, "count=%d", count)
	}
}

func TestSegmentPoints_SinglePointUsesStart(t *testing.T) {
	pts := segmentPoints(100, 0.1, 0.2, 1, false)
	require.Len(t, pts, 1)
	require.True(t, math.Abs(pts[0]-10) < 0.001)
}

package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/config"
)

func TestThumbnailCount_ShortDurationFallsBackToFour(t *testing.T) {
	count, err := ThumbnailCount(3, config.DensityM)
	require.NoError(t, err)
	require.Equal(t, 4, count)
}

func TestThumbnailCount_ScenarioTwo(t *testing.T) {
	// 60s video, density m (factor 1.0): floor((320/200 + 10*ln(60))/1.0) = 42.
	count, err := ThumbnailCount(60, config.DensityM)
	require.NoError(t, err)
	require.Equal(t, 42, count)
}

func TestThumbnailCount_CapsAtHundred(t *testing.T) {
	count, err := ThumbnailCount(1e9, config.DensityXXL)
	require.NoError(t, err)
	require.LessOrEqual(t, count, 100)
}

func TestThumbnailCount_InvalidDensityFactor(t *testing.T) {
	_, err := ThumbnailCount(60, config.Density{Name: "broken", Factor: 0})
	require.ErrorIs(t, err, InvalidConfiguration)
}

func TestSolve_ScenarioTwoGrid(t *testing.T) {
	layout, err := Solve(config.Aspect16x9, 42, 5120, 4, false, false)
	require.NoError(t, err)
	require.Equal(t, 6, layout.Cols)
	require.Equal(t, 7, layout.Rows)
	require.Len(t, layout.Positions, 42)
	require.Len(t, layout.ThumbnailSizes, 42)
}

func TestSolve_InvariantsHold(t *testing.T) {
	for _, tc := range []struct {
		count   int
		width   int
		spacing int
	}{
		{count: 4, width: 1280, spacing: 2},
		{count: 17, width: 3840, spacing: 8},
		{count: 100, width: 5120, spacing: 4},
	} {
		l, err := Solve(config.Aspect16x9, tc.count, tc.width, tc.spacing, false, false)
		require.NoError(t, err)
		require.Equal(t, len(l.Positions), len(l.ThumbnailSizes))
		require.Equal(t, tc.count, len(l.Positions))

		for i, pos := range l.Positions {
			size := l.ThumbnailSizes[i]
			require.LessOrEqualf(t, pos.X+size.W+tc.spacing, l.MosaicSize.W, "tile %d exceeds mosaic width", i)
			require.LessOrEqualf(t, pos.Y+size.H+tc.spacing, l.MosaicSize.H, "tile %d exceeds mosaic height", i)
		}
	}
}

func TestSolve_AutoRoundsUpToMultipleOfCols(t *testing.T) {
	l, err := Solve(config.Aspect16x9, 41, 5120, 4, false, true)
	require.NoError(t, err)
	require.Equal(t, 0, len(l.Positions)%l.Cols)
}

func TestSolve_CustomReservesFirstTileAtDoubleSize(t *testing.T) {
	l, err := Solve(config.Aspect1x1, 10, 1920, 4, true, false)
	require.NoError(t, err)
	require.Equal(t, l.ThumbnailSize.W*2+4, l.ThumbnailSizes[0].W)
	require.Equal(t, l.ThumbnailSize.H*2+4, l.ThumbnailSizes[0].H)
	require.Equal(t, 10, len(l.Positions))
}

func TestSolve_InvalidWidth(t *testing.T) {
	_, err := Solve(config.Aspect16x9, 10, 0, 4, false, false)
	require.ErrorIs(t, err, InvalidConfiguration)
}

func TestSolve_InvalidThumbCount(t *testing.T) {
	_, err := Solve(config.Aspect16x9, 0, 1920, 4, false, false)
	require.ErrorIs(t, err, InvalidConfiguration)
}

func TestMosaicLayout_JSONRoundTrip(t *testing.T) {
	l, err := Solve(config.Aspect16x9, 12, 1920, 4, false, false)
	require.NoError(t, err)

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var decoded MosaicLayout
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, l, decoded)
}

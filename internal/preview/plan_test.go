package preview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/config"
)

func TestPlan_ScenarioThreeWorkedExample(t *testing.T) {
	density, err := config.DensityByName("xs")
	require.NoError(t, err)

	cfg := config.PreviewConfiguration{Duration: 30, MaxSpeedMultiplier: 1.5}
	plan, err := Plan(300, density, cfg)
	require.NoError(t, err)

	require.Equal(t, 15, plan.ExtractCount)
	require.InDelta(t, 2.0, plan.PerSegmentDuration, 1e-9)
	require.InDelta(t, 1.0, plan.SpeedMultiplier, 1e-9)
}

func TestPlan_ExtractCountFloorsAtFour(t *testing.T) {
	density := config.DensityXL
	cfg := config.PreviewConfiguration{Duration: 30, MaxSpeedMultiplier: 1.5}
	plan, err := Plan(20, density, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, plan.ExtractCount, minExtractCount)
}

func TestPlan_PerSegmentDurationFloorsAtHalfSecond(t *testing.T) {
	density := config.DensityXXS
	cfg := config.PreviewConfiguration{Duration: 1, MaxSpeedMultiplier: 1.5}
	plan, err := Plan(600, density, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, plan.PerSegmentDuration, minSegmentDuration)
}

func TestPlan_SpeedMultiplierCapsAtConfiguredMax(t *testing.T) {
	density := config.DensityM
	cfg := config.PreviewConfiguration{Duration: 5, MaxSpeedMultiplier: 1.2}
	plan, err := Plan(3600, density, cfg)
	require.NoError(t, err)
	require.LessOrEqual(t, plan.SpeedMultiplier, cfg.MaxSpeedMultiplier)
}

func TestPlan_RejectsNonPositiveDuration(t *testing.T) {
	_, err := Plan(0, config.DensityM, config.DefaultPreviewConfiguration())
	require.ErrorIs(t, err, InvalidDuration)
}

func TestSegmentStarts_MonotonicAndBounded(t *testing.T) {
	plan := SegmentPlan{ExtractCount: 15, PerSegmentDuration: 2.0, SpeedMultiplier: 1.0}
	starts := SegmentStarts(300, plan)
	require.Len(t, starts, 15)
	for i := 1; i < len(starts); i++ {
		require.GreaterOrEqual(t, starts[i], starts[i-1])
	}
	last := starts[len(starts)-1]
	require.LessOrEqual(t, last+plan.PerSegmentDuration*plan.SpeedMultiplier, 300.0+1e-6)
}

func TestSegmentStarts_SingleSegmentStartsAtZero(t *testing.T) {
	plan := SegmentPlan{ExtractCount: 1, PerSegmentDuration: 2.0, SpeedMultiplier: 1.0}
	starts := SegmentStarts(30, plan)
	require.Equal(t, []float64{0}, starts)
}

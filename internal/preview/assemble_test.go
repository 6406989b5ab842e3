package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildFilterGraph_ContainsOneTrimPerSegment(t *testing.T) {
	starts := []float64{0, 10, 20}
	plan := SegmentPlan{ExtractCount: 3, PerSegmentDuration: 2.0, SpeedMultiplier: 1.0}

	filter, err := buildFilterGraph(starts, plan.PerSegmentDuration*plan.SpeedMultiplier, plan)
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(filter, "[0:v]trim=start="))
	require.Contains(t, filter, "concat=n=3:v=1:a=1[outv][outa]")
}

func TestBuildFilterGraph_RejectsZeroSpan(t *testing.T) {
	plan := SegmentPlan{ExtractCount: 1, PerSegmentDuration: 0, SpeedMultiplier: 1.0}
	_, err := buildFilterGraph([]float64{0}, 0, plan)
	require.ErrorIs(t, err, ErrSegmentInsertionFailed)
}

func TestAtempoChain_WithinNativeRangeIsSingleStage(t *testing.T) {
	chain := atempoChain(1.2)
	require.Equal(t, "atempo=1.200000", chain)
}

func TestAtempoChain_AboveTwoChainsMultipleStages(t *testing.T) {
	chain := atempoChain(3.0)
	require.Equal(t, 2, strings.Count(chain, "atempo="))
}

func TestAtempoChain_BelowHalfChainsMultipleStages(t *testing.T) {
	chain := atempoChain(0.2)
	require.Equal(t, 3, strings.Count(chain, "atempo="))
}

// Package preview computes sped-up, spliced preview compositions from a
// source video and assembles/exports them through ffmpeg.
package preview

import (
	"errors"
	"math"

	"github.com/fdenis75/hypermovie/internal/config"
)

// InvalidDuration is returned when a non-positive source duration is given
// to Plan.
var InvalidDuration = errors.New("preview: invalid duration")

const minExtractCount = 4
const minSegmentDuration = 0.5

// SegmentPlan is the computed shape of a preview composition: how many
// segments it is built from, how long each one runs in the output, and how
// much the source is sped up to fit preview_duration.
type SegmentPlan struct {
	ExtractCount       int
	PerSegmentDuration float64
	SpeedMultiplier    float64
}

// Plan derives a SegmentPlan from a source duration, density and preview
// configuration, per spec.md §4.5/§8 scenario 3.
func Plan(durationSeconds float64, density config.Density, cfg config.PreviewConfiguration) (SegmentPlan, error) {
	if durationSeconds <= 0 {
		return SegmentPlan{}, InvalidDuration
	}
	if density.ExtractMultiplier <= 0 {
		return SegmentPlan{}, errors.New("preview: invalid density extract multiplier")
	}

	durationMin := durationSeconds / 60.0

	basePerMinute := 12.0 / (1 + 0.2*durationMin) / density.ExtractMultiplier

	extractCount := int(math.Ceil(durationMin * basePerMinute))
	if extractCount < minExtractCount {
		extractCount = minExtractCount
	}

	perSegmentDuration := cfg.Duration / float64(extractCount)
	if perSegmentDuration < minSegmentDuration {
		perSegmentDuration = minSegmentDuration
	}

	ideal := cfg.Duration / float64(extractCount)
	speedMultiplier := ideal * float64(extractCount) / cfg.Duration
	if speedMultiplier > cfg.MaxSpeedMultiplier {
		speedMultiplier = cfg.MaxSpeedMultiplier
	}

	return SegmentPlan{
		ExtractCount:       extractCount,
		PerSegmentDuration: perSegmentDuration,
		SpeedMultiplier:    speedMultiplier,
	}, nil
}

// SegmentStarts spaces ExtractCount start times uniformly across
// [0, durationSeconds - sourceSegmentDuration]. sourceSegmentDuration is the
// span of source video each segment draws from before being sped up, i.e.
// per_segment_duration * speed_multiplier.
func SegmentStarts(durationSeconds float64, plan SegmentPlan) []float64 {
	sourceSpan := plan.PerSegmentDuration * plan.SpeedMultiplier
	span := durationSeconds - sourceSpan
	if span < 0 {
		span = 0
	}
	if plan.ExtractCount == 1 {
		return []float64{0}
	}
	starts := make([]float64, plan.ExtractCount)
	step := span / float64(plan.ExtractCount-1)
	for i := range starts {
		starts[i] = step * float64(i)
	}
	return starts
}

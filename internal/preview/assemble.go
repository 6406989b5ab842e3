package preview

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Assembler builds a spliced, sped-up preview composition from a list of
// segment start times and exports it to destPath.
type Assembler interface {
	Assemble(ctx context.Context, sourceURL string, starts []float64, plan SegmentPlan, destPath string, progress func(float64), cancel <-chan struct{}) error
}

// ffmpegAssembler implements Assembler by building one filter_complex graph
// that trims, re-times and concatenates every segment in a single pass,
// rather than an editor-style insert-then-scale-then-export pipeline — the
// teacher has no NLE layer to generalize, so this follows ffmpeg's own
// idiomatic trim/setpts/atempo/concat shape instead.
type ffmpegAssembler struct {
	ffmpegPath string
}

// NewAssembler resolves the ffmpeg binary on PATH.
func NewAssembler() (Assembler, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToCreateExportSession, err)
	}
	return &ffmpegAssembler{ffmpegPath: path}, nil
}

func (a *ffmpegAssembler) Assemble(ctx context.Context, sourceURL string, starts []float64, plan SegmentPlan, destPath string, progress func(float64), cancel <-chan struct{}) error {
	if len(starts) == 0 {
		return ErrUnableToCreateCompositionTracks
	}

	sourceSpan := plan.PerSegmentDuration * plan.SpeedMultiplier
	filter, err := buildFilterGraph(starts, sourceSpan, plan)
	if err != nil {
		return err
	}

	if isCancelled(cancel) {
		return ErrCancelled
	}
	progress(0.70)

	runCtx, cancelFn := context.WithTimeout(ctx, 5*time.Minute)
	defer cancelFn()

	totalOutSeconds := plan.PerSegmentDuration * float64(len(starts))

	args := []string{
		"-y",
		"-i", sourceURL,
		"-filter_complex", filter,
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-preset", "slow",
		"-crf", "18",
		"-c:a", "aac",
		"-f", "mp4",
		"-progress", "pipe:1",
		"-nostats",
		destPath,
	}
	cmd := exec.CommandContext(runCtx, a.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToCreateExportSession, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: ffmpeg export failed: %v: %s", ErrUnableToCreateExportSession, err, stderr.String())
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		watchProgress(stdout, totalOutSeconds, progress)
	}()
	<-done

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: ffmpeg export failed: %v: %s", ErrUnableToCreateExportSession, err, stderr.String())
	}

	if isCancelled(cancel) {
		return ErrCancelled
	}
	progress(1.0)
	return nil
}

// watchProgress reads ffmpeg's "-progress pipe:1" key=value stream and maps
// out_time_ms against totalOutSeconds onto the 70-100% range per spec.md
// §4.5 step 3 ("poll export progress and map to 70-100% of overall
// progress"). It drains r to EOF regardless of whether any line parses, so
// the command's stdout pipe never backs up.
func watchProgress(r io.Reader, totalOutSeconds float64, progress func(float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok || key != "out_time_ms" {
			continue
		}
		outTimeMicros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || totalOutSeconds <= 0 {
			continue
		}
		fraction := (float64(outTimeMicros) / 1e6) / totalOutSeconds
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		progress(0.70 + 0.30*fraction)
	}
}

// buildFilterGraph produces a filter_complex expression that, for each
// segment, trims [start, start+sourceSpan) out of the source, resets its
// timestamps, re-times it to per_segment_duration via setpts/atempo, then
// concatenates every segment's video and audio streams in order. Output
// cursor position is therefore monotonically non-decreasing by
// construction: segment i's output starts exactly where segment i-1 ended.
func buildFilterGraph(starts []float64, sourceSpan float64, plan SegmentPlan) (string, error) {
	if sourceSpan <= 0 || plan.SpeedMultiplier <= 0 {
		return "", ErrSegmentInsertionFailed
	}

	var b strings.Builder
	for i, start := range starts {
		end := start + sourceSpan
		fmt.Fprintf(&b, "[0:v]trim=start=%.6f:end=%.6f,setpts=PTS-STARTPTS,setpts=PTS/%.6f[v%d];",
			start, end, plan.SpeedMultiplier, i)
		fmt.Fprintf(&b, "[0:a]atrim=start=%.6f:end=%.6f,asetpts=PTS-STARTPTS,%s[a%d];",
			start, end, atempoChain(plan.SpeedMultiplier), i)
	}
	for i := range starts {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(starts))
	return b.String(), nil
}

// atempoChain expresses a speed factor outside atempo's native [0.5, 2.0]
// range as a chain of atempo filters, each within range.
func atempoChain(speed float64) string {
	if speed <= 0 {
		speed = 1.0
	}
	var stages []string
	remaining := speed
	for remaining > 2.0 {
		stages = append(stages, "atempo=2.0")
		remaining /= 2.0
	}
	for remaining < 0.5 {
		stages = append(stages, "atempo=0.5")
		remaining /= 0.5
	}
	stages = append(stages, fmt.Sprintf("atempo=%.6f", remaining))
	return strings.Join(stages, ",")
}

func isCancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}
	select {
	case <-cancel:
		return true
	default:
		return false
	}
}

// Package frameextract pulls timestamped frames out of a video source
// through ffmpeg, bounded by a per-extractor concurrency semaphore, with
// software and hardware-accelerated variants behind a common interface.
package frameextract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // register PNG decoder for image.Decode; ffmpeg is asked for png frames
	"os/exec"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/fdenis75/hypermovie/internal/logging"
)

const defaultConcurrentReads = 8

// Frame is a single decoded frame at the timestamp it was requested for.
type Frame struct {
	Image     image.Image
	Timestamp float64
}

// Tolerance bounds how far from the requested timestamp an extractor may
// seek to find a keyframe.
type Tolerance struct {
	Before time.Duration
	After  time.Duration
}

// AccurateTolerance requires an exact seek, at the cost of a full decode
// pass rather than a keyframe-only seek.
func AccurateTolerance() Tolerance { return Tolerance{} }

// FastTolerance allows ffmpeg to snap to the nearest keyframe within a
// 0.5-2.0s window, trading precision for speed.
func FastTolerance() Tolerance {
	return Tolerance{Before: 500 * time.Millisecond, After: 2 * time.Second}
}

// Session is an opened handle to a single video source.
type Session interface {
	Duration(ctx context.Context) (float64, error)
	ExtractAt(ctx context.Context, timestamp float64, tol Tolerance, maxSize int) (Frame, error)
	Close() error
}

// Extractor opens sessions against video sources. Implementations are
// selected by capability: Software always works; Hardware requires a
// compatible decoder to be present.
type Extractor interface {
	Open(ctx context.Context, url string) (Session, error)
}

// Result is one entry in an Extract stream.
type Result struct {
	RequestedTime float64
	Frame         Frame
	Err           error
}

// ErrExtractionFailed is returned by the mosaic engine when every requested
// frame failed; individual frame failures within a stream are reported
// per-timestamp on the Result instead.
var ErrExtractionFailed = fmt.Errorf("frameextract: all frames failed")

// Extract requests frames at each of timestamps from session, bounded by
// sem (nil means unbounded). Each pending extraction is checked against
// cancel before dispatch and after receipt; partial results delivered so
// far are retained when cancellation occurs mid-stream.
func Extract(ctx context.Context, session Session, timestamps []float64, tol Tolerance, maxSize int, sem *semaphore.Weighted, cancel <-chan struct{}) <-chan Result {
	out := make(chan Result, len(timestamps))

	go func() {
		defer close(out)

		for _, ts := range timestamps {
			select {
			case <-cancel:
				return
			case <-ctx.Done():
				return
			default:
			}

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					out <- Result{RequestedTime: ts, Err: err}
					continue
				}
			}

			frame, err := session.ExtractAt(ctx, ts, tol, maxSize)

			if sem != nil {
				sem.Release(1)
			}

			select {
			case <-cancel:
				return
			default:
			}

			out <- Result{RequestedTime: ts, Frame: frame, Err: err}
		}
	}()

	return out
}

// NewSemaphore returns the default per-extractor read semaphore (8
// concurrent reads), or a custom size when n > 0.
func NewSemaphore(n int) *semaphore.Weighted {
	if n <= 0 {
		n = defaultConcurrentReads
	}
	return semaphore.NewWeighted(int64(n))
}

// softwareExtractor shells out to a plain (non-hardware-accelerated)
// ffmpeg decode pipeline, grounded in the teacher's generateVideoThumbnail
// single-frame seek-and-pipe idiom, generalized to arbitrary timestamps.
type softwareExtractor struct {
	hwaccel bool
}

// NewSoftwareExtractor returns an Extractor that always decodes in software.
func NewSoftwareExtractor() Extractor { return &softwareExtractor{} }

// NewHardwareExtractor returns an Extractor that asks ffmpeg to use
// whatever hardware decoder is available (`-hwaccel auto`), falling back
// to software decode transparently when ffmpeg itself has no such device.
func NewHardwareExtractor() Extractor { return &softwareExtractor{hwaccel: true} }

func (e *softwareExtractor) Open(ctx context.Context, url string) (Session, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("frameextract: ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("frameextract: ffprobe not found: %w", err)
	}
	return &ffmpegSession{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		url:         url,
		hwaccel:     e.hwaccel,
	}, nil
}

type ffmpegSession struct {
	ffmpegPath  string
	ffprobePath string
	url         string
	hwaccel     bool
}

func (s *ffmpegSession) Duration(ctx context.Context) (float64, error) {
	return probeDuration(ctx, s.ffprobePath, s.url)
}

func (s *ffmpegSession) ExtractAt(ctx context.Context, timestamp float64, tol Tolerance, maxSize int) (Frame, error) {
	accurate := tol.Before == 0 && tol.After == 0

	args := []string{}
	if s.hwaccel {
		args = append(args, "-hwaccel", "auto")
	}
	if accurate {
		// -ss after -i: slower, frame-accurate decode rather than a keyframe snap.
		args = append(args, "-i", s.url, "-ss", formatSeekTime(timestamp))
	} else {
		args = append(args, "-ss", formatSeekTime(timestamp), "-i", s.url)
	}
	if maxSize > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale='if(gt(iw,ih),min(%d,iw),-2)':'if(gt(iw,ih),-2,min(%d,ih))'", maxSize, maxSize))
	}
	args = append(args, "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, s.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Debug("frameextract: ffmpeg failed for %s at %.3fs: %v, stderr: %s", s.url, timestamp, err, stderr.String())
		return Frame{}, fmt.Errorf("frameextract: extract at %.3fs: %w", timestamp, err)
	}
	if stdout.Len() == 0 {
		return Frame{}, fmt.Errorf("frameextract: no frame produced at %.3fs", timestamp)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return Frame{}, fmt.Errorf("frameextract: decode frame at %.3fs: %w", timestamp, err)
	}

	return Frame{Image: img, Timestamp: timestamp}, nil
}

func (s *ffmpegSession) Close() error { return nil }

func formatSeekTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

func probeDuration(ctx context.Context, ffprobePath, url string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		url,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("frameextract: ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	var duration float64
	if _, err := fmt.Sscanf(stdout.String(), "%f", &duration); err != nil {
		return 0, fmt.Errorf("frameextract: parse duration: %w", err)
	}
	return duration, nil
}

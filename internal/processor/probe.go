// Package processor loads per-video metadata and, optionally, a cover
// thumbnail, deduplicating concurrent requests for the same URL.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fdenis75/hypermovie/internal/filesystem"
)

// ProbedMetadata is everything ffprobe can tell us about a source file.
type ProbedMetadata struct {
	Duration  float64
	Width     *int
	Height    *int
	FrameRate *float64
	CodecTag  string
	Bitrate   *int64
}

// Prober loads ProbedMetadata for a URL. The software implementation shells
// out to ffprobe; tests substitute a fake.
type Prober interface {
	Probe(ctx context.Context, url string) (ProbedMetadata, error)
}

type ffprobeProber struct {
	ffprobePath string
}

// NewProber resolves ffprobe on PATH.
func NewProber() (Prober, error) {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("processor: ffprobe not found: %w", err)
	}
	return &ffprobeProber{ffprobePath: path}, nil
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType        string `json:"codec_type"`
	CodecTagString   string `json:"codec_tag_string"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	RFrameRate       string `json:"r_frame_rate"`
	AvgFrameRate     string `json:"avg_frame_rate"`
}

type ffprobeOutput struct {
	Format  ffprobeFormat    `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

func (p *ffprobeProber) Probe(ctx context.Context, url string) (ProbedMetadata, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		url,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ProbedMetadata{}, fmt.Errorf("processor: ffprobe failed: %w: %s", err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return ProbedMetadata{}, fmt.Errorf("processor: parse ffprobe output: %w", err)
	}

	meta := ProbedMetadata{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		meta.Duration = d
	}
	if b, err := strconv.ParseInt(out.Format.BitRate, 10, 64); err == nil {
		meta.Bitrate = &b
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width > 0 && s.Height > 0 {
			w, h := s.Width, s.Height
			meta.Width, meta.Height = &w, &h
		}
		if rate, ok := parseFrameRate(s.AvgFrameRate); ok {
			meta.FrameRate = &rate
		} else if rate, ok := parseFrameRate(s.RFrameRate); ok {
			meta.FrameRate = &rate
		}
		meta.CodecTag = s.CodecTagString
		break
	}

	return meta, nil
}

// parseFrameRate converts ffprobe's "30000/1001"-style rational frame rate
// into a float, skipping zero-valued ("0/0") placeholders.
func parseFrameRate(raw string) (float64, bool) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

// statFileSize is split out from Probe because it hits the filesystem
// independently of ffprobe: a locked or unreadable file fails this probe
// without invalidating the codec/duration fields ffprobe already returned.
func statFileSize(url string) (*int64, error) {
	info, err := filesystem.StatWithRetry(url, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	size := info.Size()
	return &size, nil
}

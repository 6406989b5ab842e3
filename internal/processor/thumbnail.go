package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/renameio/v2"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/compositor"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/frameextract"
)

const coverThumbnailLongEdge = 480
const coverThumbnailDurationFraction = 0.10

// SoftwareThumbnailGenerator extracts a single frame at 10% of a video's
// duration and fits it to a 480px long edge, reusing the same frameextract
// and compositor machinery the mosaic engine uses for its per-tile frames.
type SoftwareThumbnailGenerator struct {
	extractor frameextract.Extractor
	cacheDir  string
}

// NewSoftwareThumbnailGenerator builds a generator persisting covers under
// cacheDir/Thumbnails, mirroring the teacher's cacheDir-rooted layout.
func NewSoftwareThumbnailGenerator(extractor frameextract.Extractor, cacheDir string) *SoftwareThumbnailGenerator {
	return &SoftwareThumbnailGenerator{extractor: extractor, cacheDir: cacheDir}
}

// GenerateCover implements ThumbnailGenerator.
func (g *SoftwareThumbnailGenerator) GenerateCover(ctx context.Context, video *catalog.Video, cfg config.MosaicConfiguration) (string, error) {
	session, err := g.extractor.Open(ctx, video.URL)
	if err != nil {
		return "", fmt.Errorf("processor: open session for cover: %w", err)
	}
	defer session.Close()

	duration := video.Duration
	if duration <= 0 {
		if d, err := session.Duration(ctx); err == nil {
			duration = d
		}
	}

	frame, err := session.ExtractAt(ctx, duration*coverThumbnailDurationFraction, frameextract.FastTolerance(), 0)
	if err != nil {
		return "", fmt.Errorf("processor: extract cover frame: %w", err)
	}

	fitted := imaging.Fit(frame.Image, coverThumbnailLongEdge, coverThumbnailLongEdge, imaging.Lanczos)

	data, ext, err := compositor.Encode(fitted, cfg.Format, cfg.CompressionQuality)
	if err != nil {
		return "", fmt.Errorf("processor: encode cover: %w", err)
	}

	dir := filepath.Join(g.cacheDir, "Thumbnails")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("processor: create thumbnail dir: %w", err)
	}
	path := filepath.Join(dir, video.ID.String()+"_thumb."+ext)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("processor: write cover: %w", err)
	}
	defer pending.Cleanup()
	if _, err := pending.Write(data); err != nil {
		return "", fmt.Errorf("processor: write cover: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("processor: write cover: %w", err)
	}

	return path, nil
}

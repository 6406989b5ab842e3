package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/logging"
)

var vipsStartupOnce sync.Once

// startVips brings up libvips on first use. govips does not self-initialize;
// every vips.NewImage* call before Startup panics, so encodeHEIF must run
// this before touching the vips package.
func startVips() {
	vipsStartupOnce.Do(func() {
		vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
			if level <= vips.LogLevelWarning {
				logging.Warn("vips[%s]: %s", domain, msg)
			}
		}, vips.LogLevelWarning)
		vips.Startup(&vips.Config{
			ConcurrencyLevel: 1,
			MaxCacheMem:      50 * 1024 * 1024,
			MaxCacheSize:     100,
		})
		logging.Debug("compositor: libvips started (version: %s)", vips.Version)
	})
}

// Encode renders img in the configured format at the configured
// compression quality. HEIF falls back to JPEG when govips has no HEIF
// encoder compiled in; HEIF is never mandatory for a mosaic to be written.
func Encode(img image.Image, format config.ImageFormat, quality float64) ([]byte, string, error) {
	q := int(quality * 100)
	if q <= 0 {
		q = 85
	}
	if q > 100 {
		q = 100
	}

	switch format {
	case config.FormatPNG:
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("compositor: encode png: %w", err)
		}
		return buf.Bytes(), "png", nil

	case config.FormatHEIF:
		data, ok := encodeHEIF(img, q)
		if ok {
			return data, "heif", nil
		}
		logging.Debug("compositor: heif encoder unavailable, falling back to jpeg")
		fallthrough

	case config.FormatJPEG:
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, "", fmt.Errorf("compositor: encode jpeg: %w", err)
		}
		return buf.Bytes(), "jpeg", nil

	default:
		return nil, "", fmt.Errorf("compositor: unknown format %q", format)
	}
}

func encodeHEIF(img image.Image, quality int) ([]byte, bool) {
	startVips()

	vipsImage, err := vips.NewImageFromBuffer(encodeTempPNG(img))
	if err != nil {
		return nil, false
	}
	defer vipsImage.Close()

	ep := vips.NewHeifExportParams()
	ep.Quality = quality

	data, _, err := vipsImage.ExportHeif(ep)
	if err != nil {
		return nil, false
	}
	return data, true
}

func encodeTempPNG(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Package compositor paints extracted frames onto a mosaic canvas according
// to a solved layout, with optional per-tile shadow/border treatment and a
// bottom metadata strip, grounded in the teacher's folder-thumbnail
// compositing routines generalized from a fixed 2x2 grid to an arbitrary
// MosaicLayout.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/layout"
)

var backgroundColor = color.RGBA{R: 32, G: 32, B: 32, A: 255}

// Tile is one frame to be painted, paired with the label shown if metadata
// is overlaid (currently unused per-tile; metadata is mosaic-wide).
type Tile struct {
	Image     image.Image
	Timestamp float64
}

// Metadata is the optional bottom-strip overlay content.
type Metadata struct {
	CodecTag     string
	BitrateBPS   int64 // bits per second, per catalog.Video.Bitrate
	CustomFields map[string]string
}

// Compose paints tiles onto a canvas sized by l, applying visual according
// to layoutConfig, and overlays metadata when non-nil. Missing tiles
// (nil Image) are rendered as a blank frame at the tile's target size
// rather than aborting the mosaic.
func Compose(l layout.MosaicLayout, tiles []Tile, layoutConfig config.LayoutConfig, metadata *Metadata) (image.Image, error) {
	if len(tiles) != len(l.Positions) {
		return nil, fmt.Errorf("compositor: %d tiles but layout wants %d", len(tiles), len(l.Positions))
	}

	canvas := image.NewRGBA(image.Rect(0, 0, l.MosaicSize.W, l.MosaicSize.H))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)

	for i, tile := range tiles {
		size := l.ThumbnailSizes[i]
		pos := l.Positions[i]
		rect := image.Rect(pos.X, pos.Y, pos.X+size.W, pos.Y+size.H)

		if layoutConfig.Shadow.Enabled {
			drawShadow(canvas, rect, layoutConfig.Shadow)
		}

		frame := tile.Image
		if frame == nil {
			frame = blankFrame(size.W, size.H)
		}
		resized := imaging.Fill(frame, size.W, size.H, imaging.Center, imaging.Lanczos)
		draw.Draw(canvas, rect, resized, image.Point{}, draw.Over)

		if layoutConfig.Border.Enabled {
			drawBorder(canvas, rect, layoutConfig.Border)
		}
	}

	if metadata != nil {
		drawMetadataStrip(canvas, *metadata)
	}

	return canvas, nil
}

func blankFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	return img
}

func drawShadow(canvas *image.RGBA, rect image.Rectangle, shadow config.ShadowSettings) {
	alpha := uint8(shadow.Opacity * 255)
	shadowColor := color.RGBA{R: 0, G: 0, B: 0, A: alpha}
	shadowRect := rect.Add(image.Pt(shadow.OffsetX, shadow.OffsetY))
	// Radius is approximated as a uniform inset expansion rather than a true
	// gaussian blur; the compositor has no blur kernel dependency.
	shadowRect = shadowRect.Inset(-int(shadow.Radius))
	draw.Draw(canvas, shadowRect, &image.Uniform{shadowColor}, image.Point{}, draw.Over)
}

func drawBorder(canvas *image.RGBA, rect image.Rectangle, border config.BorderSettings) {
	w := border.Width
	if w < 1 {
		w = 1
	}
	uni := &image.Uniform{border.Color}
	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+w)
	bottom := image.Rect(rect.Min.X, rect.Max.Y-w, rect.Max.X, rect.Max.Y)
	left := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Max.Y)
	right := image.Rect(rect.Max.X-w, rect.Min.Y, rect.Max.X, rect.Max.Y)
	for _, r := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(canvas, r, uni, image.Point{}, draw.Over)
	}
}

func drawMetadataStrip(canvas *image.RGBA, meta Metadata) {
	bounds := canvas.Bounds()
	stripHeight := bounds.Dy() / 10
	stripRect := image.Rect(bounds.Min.X, bounds.Max.Y-stripHeight, bounds.Max.X, bounds.Max.Y)

	draw.Draw(canvas, stripRect, &image.Uniform{color.RGBA{R: 0, G: 0, B: 0, A: 180}}, image.Point{}, draw.Over)

	parts := []string{}
	if meta.CodecTag != "" {
		parts = append(parts, meta.CodecTag)
	}
	if meta.BitrateBPS > 0 {
		parts = append(parts, humanize.SI(float64(meta.BitrateBPS), "bps"))
	}
	keys := make([]string, 0, len(meta.CustomFields))
	for k := range meta.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, meta.CustomFields[k]))
	}
	text := strings.Join(parts, " | ")

	drawLabel(canvas, text, stripRect.Min.X+8, stripRect.Min.Y+stripHeight/2+4)
}

// drawLabel draws text with a 1px black shadow offset, white foreground,
// using the fixed-width basicfont from golang.org/x/image (no TrueType font needed
// for a single status line).
func drawLabel(canvas *image.RGBA, label string, x, y int) {
	shadow := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(label)

	fg := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	fg.DrawString(label)
}

// Package layout implements the pure, deterministic mosaic layout solver:
// given a desired thumbnail count and mosaic width, it produces the grid
// geometry (rows, columns, tile sizes and positions) a compositor paints
// onto.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/fdenis75/hypermovie/internal/config"
)

// InvalidConfiguration is returned when a density factor or mosaic width
// cannot produce a usable layout.
var InvalidConfiguration = errors.New("layout: invalid configuration")

const (
	thumbnailCountBase = 320.0 / 200.0
	thumbnailCountK    = 10.0
	maxThumbnailCount  = 100
	minDurationSeconds = 5.0
	fallbackCount      = 4
)

// ThumbnailCount computes the base desired tile count for a source of the
// given duration at the given density, before any auto-layout rounding.
func ThumbnailCount(durationSeconds float64, density config.Density) (int, error) {
	if density.Factor <= 0 {
		return 0, fmt.Errorf("%w: density factor %v must be positive", InvalidConfiguration, density.Factor)
	}
	if durationSeconds < minDurationSeconds {
		return fallbackCount, nil
	}
	raw := thumbnailCountBase + thumbnailCountK*math.Log(durationSeconds)
	count := int(math.Floor(raw / density.Factor))
	if count > maxThumbnailCount {
		count = maxThumbnailCount
	}
	if count < 1 {
		count = 1
	}
	return count, nil
}

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Size is an integer pixel dimension.
type Size struct {
	W, H int
}

// MosaicLayout is the computed tile geometry for a mosaic of a given thumb
// count, width, density and aspect ratio.
type MosaicLayout struct {
	Rows           int
	Cols           int
	ThumbnailSize  Size // the base (non-reserved) tile size
	Positions      []Point
	ThumbnailSizes []Size
	MosaicSize     Size
}

// mosaicLayoutJSON mirrors MosaicLayout for round-trip JSON encoding.
type mosaicLayoutJSON struct {
	Rows           int     `json:"rows"`
	Cols           int     `json:"cols"`
	ThumbnailSize  Size    `json:"thumbnail_size"`
	Positions      []Point `json:"positions"`
	ThumbnailSizes []Size  `json:"thumbnail_sizes"`
	MosaicSize     Size    `json:"mosaic_size"`
}

// MarshalJSON implements json.Marshaler.
func (l MosaicLayout) MarshalJSON() ([]byte, error) {
	return marshalLayout(mosaicLayoutJSON(l))
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *MosaicLayout) UnmarshalJSON(data []byte) error {
	j, err := unmarshalLayout(data)
	if err != nil {
		return err
	}
	*l = MosaicLayout(j)
	return nil
}

// Solve computes a MosaicLayout for thumbCount tiles of the given aspect
// ratio, fit into a mosaic of mosaicWidth pixels with the given spacing.
// When auto is set, thumbCount is rounded up to the next multiple of the
// solved column count so the grid is perfectly rectangular. When custom is
// set, the first tile is reserved at twice the normal size and the
// remaining tiles are renumbered around it.
func Solve(aspectRatio config.AspectRatio, thumbCount, mosaicWidth, spacing int, custom, auto bool) (MosaicLayout, error) {
	if mosaicWidth <= 0 {
		return MosaicLayout{}, fmt.Errorf("%w: mosaic width %d must be positive", InvalidConfiguration, mosaicWidth)
	}
	if thumbCount < 1 {
		return MosaicLayout{}, fmt.Errorf("%w: thumbnail count %d must be positive", InvalidConfiguration, thumbCount)
	}
	if spacing < 0 {
		return MosaicLayout{}, fmt.Errorf("%w: spacing %d must be non-negative", InvalidConfiguration, spacing)
	}

	cols := solveCols(thumbCount)

	count := thumbCount
	if auto {
		count = roundUpToMultiple(count, cols)
	}
	rows := ceilDiv(count, cols)

	thumbW := (mosaicWidth - (cols+1)*spacing) / cols
	if thumbW < 1 {
		return MosaicLayout{}, fmt.Errorf("%w: mosaic width %d too small for %d columns at spacing %d", InvalidConfiguration, mosaicWidth, cols, spacing)
	}
	thumbH := int(math.Round(float64(thumbW) / float64(aspectRatio)))
	if thumbH < 1 {
		thumbH = 1
	}

	if custom {
		return solveCustom(cols, rows, count, thumbW, thumbH, spacing, mosaicWidth)
	}

	positions := make([]Point, 0, count)
	sizes := make([]Size, 0, count)
	for i := 0; i < count; i++ {
		r, c := i/cols, i%cols
		positions = append(positions, Point{
			X: spacing + c*(thumbW+spacing),
			Y: spacing + r*(thumbH+spacing),
		})
		sizes = append(sizes, Size{W: thumbW, H: thumbH})
	}

	mosaicHeight := rows*thumbH + (rows+1)*spacing

	return MosaicLayout{
		Rows:           rows,
		Cols:           cols,
		ThumbnailSize:  Size{W: thumbW, H: thumbH},
		Positions:      positions,
		ThumbnailSizes: sizes,
		MosaicSize:     Size{W: mosaicWidth, H: mosaicHeight},
	}, nil
}

// solveCols picks a near-square grid: with tile aspect ratio equal to the
// mosaic's target aspect ratio, cols/rows converge to sqrt(count)
// regardless of the aspect value itself, so the aspect ratio only shapes
// individual tile dimensions, not the grid shape.
func solveCols(thumbCount int) int {
	cols := int(math.Round(math.Sqrt(float64(thumbCount))))
	if cols < 1 {
		cols = 1
	}
	return cols
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

func roundUpToMultiple(n, multiple int) int {
	if multiple <= 0 {
		return n
	}
	return ceilDiv(n, multiple) * multiple
}

// solveCustom lays out count tiles where cell (0,0) is reserved for a tile
// at twice the normal size, consuming the cells that would otherwise hold
// the tiles at (0,1), (1,0) and (1,1); the remaining count-1 tiles fill the
// rest of the grid in row-major order, expanding the row count if needed.
func solveCustom(cols, rows, count, thumbW, thumbH, spacing, mosaicWidth int) (MosaicLayout, error) {
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}
	for cols*rows < count+3 {
		rows++
	}

	reserved := map[[2]int]bool{{0, 0}: true, {0, 1}: true, {1, 0}: true, {1, 1}: true}

	positions := make([]Point, 0, count)
	sizes := make([]Size, 0, count)

	positions = append(positions, Point{X: spacing, Y: spacing})
	sizes = append(sizes, Size{W: 2*thumbW + spacing, H: 2*thumbH + spacing})

	placed := 1
	for r := 0; r < rows && placed < count; r++ {
		for c := 0; c < cols && placed < count; c++ {
			if reserved[[2]int{r, c}] {
				continue
			}
			positions = append(positions, Point{
				X: spacing + c*(thumbW+spacing),
				Y: spacing + r*(thumbH+spacing),
			})
			sizes = append(sizes, Size{W: thumbW, H: thumbH})
			placed++
		}
	}

	mosaicHeight := rows*thumbH + (rows+1)*spacing

	return MosaicLayout{
		Rows:           rows,
		Cols:           cols,
		ThumbnailSize:  Size{W: thumbW, H: thumbH},
		Positions:      positions,
		ThumbnailSizes: sizes,
		MosaicSize:     Size{W: mosaicWidth, H: mosaicHeight},
	}, nil
}

package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/layout"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompose_ProducesMosaicSizedImage(t *testing.T) {
	l, err := layout.Solve(config.Aspect16x9, 4, 800, 4, false, false)
	require.NoError(t, err)

	tiles := make([]Tile, 4)
	for i := range tiles {
		tiles[i] = Tile{Image: solidImage(40, 40, color.White), Timestamp: float64(i)}
	}

	out, err := Compose(l, tiles, config.DefaultLayoutConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, l.MosaicSize.W, out.Bounds().Dx())
	require.Equal(t, l.MosaicSize.H, out.Bounds().Dy())
}

func TestCompose_MismatchedTileCountErrors(t *testing.T) {
	l, err := layout.Solve(config.Aspect16x9, 4, 800, 4, false, false)
	require.NoError(t, err)

	_, err = Compose(l, []Tile{{Image: solidImage(10, 10, color.White)}}, config.DefaultLayoutConfig(), nil)
	require.Error(t, err)
}

func TestCompose_SubstitutesBlankFrameForNilTile(t *testing.T) {
	l, err := layout.Solve(config.Aspect16x9, 1, 400, 4, false, false)
	require.NoError(t, err)

	out, err := Compose(l, []Tile{{Image: nil}}, config.DefaultLayoutConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestCompose_DrawsMetadataStripWithoutPanicking(t *testing.T) {
	l, err := layout.Solve(config.Aspect16x9, 2, 400, 4, false, false)
	require.NoError(t, err)

	tiles := []Tile{
		{Image: solidImage(40, 40, color.White)},
		{Image: solidImage(40, 40, color.White)},
	}
	meta := &Metadata{CodecTag: "h264", BitrateBPS: 5_000_000, CustomFields: map[string]string{"genre": "doc"}}

	out, err := Compose(l, tiles, config.DefaultLayoutConfig(), meta)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestCompose_BorderAndShadowDoNotPanic(t *testing.T) {
	l, err := layout.Solve(config.Aspect16x9, 4, 800, 4, false, false)
	require.NoError(t, err)

	lc := config.DefaultLayoutConfig()
	lc.Border = config.BorderSettings{Enabled: true, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Width: 1}
	lc.Shadow = config.ShadowSettings{Enabled: true, Opacity: 0.5, Radius: 4, OffsetX: 0, OffsetY: -2}

	tiles := make([]Tile, 4)
	for i := range tiles {
		tiles[i] = Tile{Image: solidImage(40, 40, color.White)}
	}

	out, err := Compose(l, tiles, lc, nil)
	require.NoError(t, err)
	require.NotNil(t, out)
}

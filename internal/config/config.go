// Package config holds the explicit configuration structs the coordinator
// threads through the pipeline, each with a Default* constructor carrying
// the factory defaults. There is no global singleton and no environment-
// variable loading: callers build a config value and pass it down.
package config

import "image/color"

// AspectRatio is a target mosaic width/height ratio.
type AspectRatio float64

const (
	Aspect16x9 AspectRatio = 16.0 / 9.0
	Aspect4x3  AspectRatio = 4.0 / 3.0
	Aspect1x1  AspectRatio = 1.0
	Aspect21x9 AspectRatio = 21.0 / 9.0
)

// ImageFormat is the mosaic encoding target.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatHEIF ImageFormat = "heif"
)

// ShadowSettings controls the drop shadow drawn beneath each mosaic tile.
type ShadowSettings struct {
	Enabled bool
	Opacity float64 // 0..1
	Radius  float64 // blur radius, pixels
	OffsetX int
	OffsetY int
}

// BorderSettings controls the border frame drawn inside each mosaic tile.
type BorderSettings struct {
	Enabled bool
	Color   color.RGBA
	Width   int // pixels
}

// LayoutConfig controls the geometric arrangement the layout solver produces.
type LayoutConfig struct {
	AspectRatio AspectRatio
	Spacing     int // gutter pixels between tiles
	Auto        bool
	Custom      bool
	Border      BorderSettings
	Shadow      ShadowSettings
}

// DefaultLayoutConfig returns the factory-default layout: auto grid, 16:9,
// 4px spacing, a 1px white border and a soft drop shadow.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		AspectRatio: Aspect16x9,
		Spacing:     4,
		Auto:        true,
		Border: BorderSettings{
			Enabled: true,
			Color:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
			Width:   1,
		},
		Shadow: ShadowSettings{
			Enabled: true,
			Opacity: 0.5,
			Radius:  4,
			OffsetX: 0,
			OffsetY: -2,
		},
	}
}

// OutputConfig controls where and how a generated artifact is written.
type OutputConfig struct {
	Overwrite      bool
	SaveAtRoot     bool
	SeparateFolders bool
	AddFullPath    bool
}

// MosaicConfiguration is the full set of inputs to mosaic generation.
type MosaicConfiguration struct {
	Width               int
	Density             Density
	Format              ImageFormat
	Layout              LayoutConfig
	IncludeMetadata     bool
	UseAccurateTimestamps bool
	CompressionQuality  float64 // 0..1
	Output              OutputConfig
}

// DefaultMosaicConfiguration returns the §6 factory defaults: 5120px wide,
// medium density, heif (falls back to jpeg at encode time when the platform
// lacks HEIF support), auto 16:9 layout, metadata overlay and accurate
// timestamps on.
func DefaultMosaicConfiguration() MosaicConfiguration {
	return MosaicConfiguration{
		Width:                 5120,
		Density:               DensityM,
		Format:                FormatHEIF,
		Layout:                DefaultLayoutConfig(),
		IncludeMetadata:       true,
		UseAccurateTimestamps: true,
		CompressionQuality:    0.4,
		Output: OutputConfig{
			Overwrite: false,
		},
	}
}

// PreviewConfiguration is the full set of inputs to preview generation.
type PreviewConfiguration struct {
	Duration             float64 // seconds, default 30
	Density              Density
	SaveInCustomLocation bool
	CustomSaveLocation   string
	MaxSpeedMultiplier   float64 // default 1.5
}

// DefaultPreviewConfiguration returns the §6 factory defaults: 30s, xs
// density, 1.5x max speed-up, cache-directory destination.
func DefaultPreviewConfiguration() PreviewConfiguration {
	return PreviewConfiguration{
		Duration:           30,
		Density:            DensityXS,
		MaxSpeedMultiplier: 1.5,
	}
}

// DiscoveryOptions controls filesystem scanning.
type DiscoveryOptions struct {
	// FollowSymlinks descends into symlinked directories during a scan.
	FollowSymlinks bool
	// Watch enables fsnotify-driven incremental rescans after the initial walk.
	Watch bool
}

// DefaultDiscoveryOptions returns the factory defaults: no symlink
// following, no live watch.
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{}
}

// ProcessingConfig bounds the coordinator's concurrency.
type ProcessingConfig struct {
	// ConcurrentOperations is clamped to [1, 12] by the coordinator.
	ConcurrentOperations int
	// BatchSize is the number of videos processed per batch; a batch's
	// catalog writes are made once all of its videos are processed.
	BatchSize int
}

// DefaultProcessingConfig returns the §6 factory defaults: 8 concurrent
// operations, batches of 100.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		ConcurrentOperations: 8,
		BatchSize:            100,
	}
}

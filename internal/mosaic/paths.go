package mosaic

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fdenis75/hypermovie/internal/config"
)

const maxFullPathNameLength = 200

var aspectNames = map[config.AspectRatio]string{
	config.Aspect16x9: "16_9",
	config.Aspect4x3:  "4_3",
	config.Aspect1x1:  "1_1",
	config.Aspect21x9: "21_9",
}

func aspectName(a config.AspectRatio) string {
	if name, ok := aspectNames[a]; ok {
		return name
	}
	return fmt.Sprintf("%.3f", float64(a))
}

func formatExt(format config.ImageFormat) string {
	switch format {
	case config.FormatPNG:
		return "png"
	case config.FormatHEIF:
		return "heif"
	default:
		return "jpg"
	}
}

// dirSuffix is the `_Th<width>_<density>_<aspect_ratio>` directory name
// shared by both the add_full_path truncation budget and the final path.
func dirSuffix(cfg config.MosaicConfiguration) string {
	return fmt.Sprintf("_Th%d_%s_%s", cfg.Width, cfg.Density.Name, aspectName(cfg.Layout.AspectRatio))
}

func fileSuffix(stem string, cfg config.MosaicConfiguration) string {
	return fmt.Sprintf("%s_%d_%s_%s.%s", stem, cfg.Width, cfg.Density.Name, aspectName(cfg.Layout.AspectRatio), formatExt(cfg.Format))
}

// ArtifactPath computes the output path for a video's mosaic.
//
// save_at_root=true roots the `_Th...` directory under libraryRoot instead
// of the video's own parent directory — the spec.md §9 fix for a bug where
// the teacher's original implementation rooted it under the parent
// regardless of the flag.
func ArtifactPath(videoPath, libraryRoot string, cfg config.MosaicConfiguration) string {
	suffix := dirSuffix(cfg)
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	var dir string
	if cfg.Output.SaveAtRoot {
		dir = filepath.Join(libraryRoot, suffix)
	} else {
		dir = filepath.Join(filepath.Dir(videoPath), suffix)
	}

	if cfg.Output.AddFullPath {
		full := strings.NewReplacer("/", "_", " ", "_").Replace(videoPath)
		budget := maxFullPathNameLength - len(suffix)
		if budget > 0 && len(full) > budget {
			full = full[:budget]
		}
		return filepath.Join(dir, fileSuffix(full, cfg))
	}

	return filepath.Join(dir, fileSuffix(stem, cfg))
}

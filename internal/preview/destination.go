package preview

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fdenis75/hypermovie/internal/config"
)

// ResolveDestination chooses the output path for a video's preview per
// spec.md §6: when save_in_custom_location is set (with a non-empty
// location), the preview is saved as "<video_stem>-preview.mp4" in the
// configured location; otherwise it is saved in "<app_cache>/Previews/<uuid>.mp4".
func ResolveDestination(videoID uuid.UUID, sourceURL string, cfg config.PreviewConfiguration, cacheDir string) string {
	if cfg.SaveInCustomLocation && cfg.CustomSaveLocation != "" {
		base := filepath.Base(sourceURL)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(cfg.CustomSaveLocation, stem+"-preview.mp4")
	}
	return filepath.Join(cacheDir, "Previews", videoID.String()+".mp4")
}

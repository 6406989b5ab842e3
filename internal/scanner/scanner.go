// Package scanner enumerates a filesystem root for video files, filters by
// content type, deduplicates by file identity, and pairs preview-suffixed
// siblings with their originals.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fdenis75/hypermovie/internal/filesystem"
	"github.com/fdenis75/hypermovie/internal/mediatypes"
)

// previewSuffix marks a file as a generated preview of another video in the
// same directory, e.g. "clip-preview.mp4" is the preview sibling of
// "clip.mp4".
const previewSuffix = "-preview"

// packageExtensions are directory extensions treated as opaque bundles
// rather than descended into. There is no Go equivalent of Apple's UTType
// "package" bit, so this is a fixed heuristic list of the bundle kinds most
// likely to appear alongside a media library.
var packageExtensions = map[string]bool{
	".app":            true,
	".bundle":         true,
	".framework":      true,
	".photoslibrary":  true,
	".xcodeproj":      true,
}

// Options configures a single Scan call.
type Options struct {
	Root           string
	Recursive      bool
	FollowSymlinks bool
}

// Result is the outcome of a completed scan: the discovered original video
// URLs plus a sibling map from an original's URL to its preview file's URL.
type Result struct {
	URLs      []string
	Siblings  map[string]string
}

// Scan enumerates Root per opts, returning only original video files.
// Preview-suffixed siblings are recorded in Result.Siblings instead of being
// returned directly, per spec.md §4.7. progress, if non-nil, is called with
// the path currently being visited.
func Scan(ctx context.Context, opts Options, progress func(currentPath string)) (Result, error) {
	result := Result{Siblings: make(map[string]string)}
	seen := make(map[string]bool)

	pending := make(map[string]string) // stem (dir+basename w/o ext) -> candidate original path, used to pair previews discovered before their original

	visit := func(path string, d os.DirEntry) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress(path)
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if mediatypes.GetFileType(ext) != mediatypes.FileTypeVideo {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		key := identityKey(path, info)
		if seen[key] {
			return nil
		}
		seen[key] = true

		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		dir := filepath.Dir(path)

		if strings.HasSuffix(stem, previewSuffix) {
			originalStem := strings.TrimSuffix(stem, previewSuffix)
			originalPath, ok := findOriginal(dir, originalStem)
			if ok {
				result.Siblings[originalPath] = path
			} else {
				pending[filepath.Join(dir, originalStem)] = path
			}
			return nil
		}

		result.URLs = append(result.URLs, path)
		if previewPath, ok := pending[filepath.Join(dir, stem)]; ok {
			result.Siblings[path] = previewPath
			delete(pending, filepath.Join(dir, stem))
		}
		return nil
	}

	var err error
	if opts.Recursive {
		err = walkRecursive(opts.Root, opts.FollowSymlinks, visit)
	} else {
		err = walkShallow(opts.Root, visit)
	}

	return result, err
}

// findOriginal looks for any supported video extension matching stem in
// dir, so a preview can be paired even when it is visited before its
// original during the same walk.
func findOriginal(dir, stem string) (string, bool) {
	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := e.Name()
		ext := strings.ToLower(filepath.Ext(base))
		if mediatypes.GetFileType(ext) != mediatypes.FileTypeVideo {
			continue
		}
		if strings.TrimSuffix(base, filepath.Ext(base)) == stem {
			return filepath.Join(dir, base), true
		}
	}
	return "", false
}

// identityKey returns a stable identity for a file: its (device, inode)
// pair where the platform exposes one, falling back to the absolute path.
func identityKey(path string, info os.FileInfo) string {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return joinIdentity(stat.Dev, stat.Ino)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func joinIdentity(dev, ino uint64) string {
	return strings.Join([]string{"dev", itoa(dev), "ino", itoa(ino)}, ":")
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

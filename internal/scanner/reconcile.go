package scanner

import (
	"context"
	"strings"

	"github.com/fdenis75/hypermovie/internal/catalog"
)

// Compare reconciles catalogVideos against the current state of rootURL:
// missing is present on disk but absent from the catalog, orphaned is
// present in the catalog (under rootURL) but absent from disk.
func Compare(ctx context.Context, catalogVideos []*catalog.Video, rootURL string) (missing []string, orphaned []*catalog.Video, err error) {
	result, err := Scan(ctx, Options{Root: rootURL, Recursive: true}, nil)
	if err != nil {
		return nil, nil, err
	}

	onDisk := make(map[string]bool, len(result.URLs))
	for _, u := range result.URLs {
		onDisk[u] = true
	}

	catalogued := make(map[string]bool, len(catalogVideos))
	for _, v := range catalogVideos {
		if !strings.HasPrefix(v.URL, rootURL) {
			continue
		}
		catalogued[v.URL] = true
		if !onDisk[v.URL] {
			orphaned = append(orphaned, v)
		}
	}

	for u := range onDisk {
		if !catalogued[u] {
			missing = append(missing, u)
		}
	}

	return missing, orphaned, nil
}

package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fdenis75/hypermovie/internal/filesystem"
)

// walkRecursive descends Root, skipping hidden entries and package bundles.
// Symlinked directories are not descended into: filepath.WalkDir does not
// follow symbolic links, so followSymlinks has no effect here.
func walkRecursive(root string, followSymlinks bool, visit func(path string, d os.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if packageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
				return filepath.SkipDir
			}
			if d.Type()&os.ModeSymlink != 0 && !followSymlinks {
				return filepath.SkipDir
			}
		}
		return visit(path, d)
	})
}

// walkShallow lists Root's immediate children only, retrying on NFS stale
// file handle errors (a library root is often a network mount).
func walkShallow(root string, visit func(path string, d os.DirEntry) error) error {
	entries, err := filesystem.ReadDirWithRetry(root, filesystem.DefaultRetryConfig())
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, d := range entries {
		if strings.HasPrefix(d.Name(), ".") {
			continue
		}
		path := filepath.Join(root, d.Name())
		if err := visit(path, d); err != nil {
			return err
		}
	}
	return nil
}

// Package fsutil holds file system helpers.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension walks root and returns, sorted, the paths of all files
// whose name ends in ext. Directories starting with a dot are not entered.
func FindFilesByExtension(root string, ext string) ([]string, error) {
	if ext == "" {
		panic("fsutil: empty extension")
	}

	var found []string
	walk := func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && path != root && strings.HasPrefix(d.Name(), "."):
			return filepath.SkipDir
		case !d.IsDir() && strings.HasSuffix(d.Name(), ext):
			found = append(found, path)
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

// Package fsutil provides file system helpers for locating graph sources.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindFiles walks root and returns every regular file whose extension is one
// of extensions, compared case-insensitively. Hidden files and directories
// (names starting with ".") are skipped, except root itself. The result is
// sorted lexically so repeated loads see files in the same order.
func FindFiles(root string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("fsutil: at least one extension is required")
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := filepath.Ext(d.Name())
		if slices.ContainsFunc(extensions, func(e string) bool { return strings.EqualFold(e, ext) }) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// Package archive builds Walk abstraction on top of "archive/zip" so a vault
// packed into a single zip file could be read without unpacking.
package archive

import (
	"archive/zip"
	"context"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The name argument is the entry path relative to the
// walked root, always slash separated. If an error is returned, processing
// stops.
type WalkFunc func(name string, file *zip.File) error

// MatchFunc decides if entry (relative name) should be visited.
type MatchFunc func(name string) bool

// Walk walks all files in the archive located under root (slash separated
// path inside archive, empty for everything) which satisfy match condition,
// calling walkFn for each item. Directory entries, entries with path traversal
// components ("..") and absolute paths are skipped.
func Walk(ctx context.Context, archive, root string, match MatchFunc, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	prefix := strings.Trim(root, "/")
	if len(prefix) > 0 {
		prefix += "/"
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || !isSafePath(f.Name) {
			continue
		}
		name, ok := strings.CutPrefix(f.Name, prefix)
		if !ok || len(name) == 0 {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if err := walkFn(name, f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the archive root:
// absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

package vault

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"booknav/archive"
	"booknav/common"
)

// Source enumerates vault documents. Failure to enumerate is the only fatal
// condition for index building, problems with individual documents are
// logged and such documents are skipped.
type Source interface {
	Kind() common.SourceKind
	// Location is a path suitable for watching changes.
	Location() string
	Load(ctx context.Context) ([]*Document, error)
}

// Filter decides which files are documents.
type Filter struct {
	Extensions []string
	Ignore     []string
}

// Match reports if vault relative slash separated name should be loaded.
func (f Filter) Match(name string) bool {
	if f.Skip(name) {
		return false
	}
	ext := path.Ext(name)
	for _, e := range f.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Skip reports if name or any of its parent folders is hidden or ignored.
func (f Filter) Skip(name string) bool {
	parts := strings.Split(name, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
		prefix := strings.Join(parts[:i+1], "/")
		for _, pattern := range f.Ignore {
			if ok, _ := path.Match(pattern, prefix); ok {
				return true
			}
			if ok, _ := path.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

// DirSource loads documents from a directory tree.
type DirSource struct {
	root   string
	filter Filter
	log    *zap.Logger
}

func NewDirSource(root string, filter Filter, log *zap.Logger) *DirSource {
	return &DirSource{root: root, filter: filter, log: log}
}

func (s *DirSource) Kind() common.SourceKind { return common.SourceKindDirectory }

func (s *DirSource) Location() string { return s.root }

func (s *DirSource) Load(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root {
				return err
			}
			s.log.Warn("Unable to access vault entry, skipping", zap.String("path", p), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if s.filter.Skip(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !s.filter.Match(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.log.Warn("Unable to stat document, skipping", zap.String("path", rel), zap.Error(err))
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			s.log.Warn("Unable to read document, skipping", zap.String("path", rel), zap.Error(err))
			return nil
		}
		docs = append(docs, ParseDocument(rel, data, info.ModTime(), s.log))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate vault directory %s: %w", s.root, err)
	}
	return docs, nil
}

// ZipSource loads documents from a zip archive, optionally rooted at a path
// inside archive.
type ZipSource struct {
	archive string
	root    string
	filter  Filter
	log     *zap.Logger
}

func NewZipSource(archive, root string, filter Filter, log *zap.Logger) *ZipSource {
	return &ZipSource{archive: archive, root: root, filter: filter, log: log}
}

func (s *ZipSource) Kind() common.SourceKind { return common.SourceKindArchive }

func (s *ZipSource) Location() string { return s.archive }

func (s *ZipSource) Load(ctx context.Context) (docs []*Document, err error) {
	err = archive.Walk(ctx, s.archive, s.root, s.filter.Match, func(name string, file *zip.File) (err error) {
		r, err := file.Open()
		if err != nil {
			s.log.Warn("Unable to open archived document, skipping", zap.String("path", name), zap.Error(err))
			return nil
		}
		defer func() {
			err = multierr.Append(err, r.Close())
		}()
		data, err := io.ReadAll(r)
		if err != nil {
			s.log.Warn("Unable to read archived document, skipping", zap.String("path", name), zap.Error(err))
			return nil
		}
		docs = append(docs, ParseDocument(name, data, file.Modified, s.log))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate vault archive %s: %w", s.archive, err)
	}
	return docs, nil
}

// Open selects source for the given location. Location is either a directory,
// a zip archive or a path inside zip archive ("notes.zip/Vault").
func Open(location string, filter Filter, log *zap.Logger) (Source, error) {
	location, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}

	var head, tail string
	for head = location; len(head) != 0; head, tail = filepath.Split(head) {
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}
		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				return nil, fmt.Errorf("vault was not found (%s) => (%s)", head, strings.TrimPrefix(location, head))
			}
			return NewDirSource(head, filter, log), nil
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s)", head)
		}
		isZip, err := isArchiveFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if !isZip {
			return nil, fmt.Errorf("vault must be a directory or zip archive (%s)", head)
		}
		root := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(location, head), string(filepath.Separator)))
		return NewZipSource(head, root, filter, log), nil
	}
	return nil, fmt.Errorf("vault was not found (%s)", location)
}

func isArchiveFile(fname string) (bool, error) {
	f, err := os.Open(fname)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// We only need the first 262 bytes to detect file type
	head := make([]byte, 262)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// Package vault provides the document collection navigation is computed
// from: enumeration of documents with their front matter metadata and lookup
// of link targets relative to a referencing document.
package vault

import (
	"bytes"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	yaml "gopkg.in/yaml.v3"
)

// Document is a single note in the vault. Path is the document identity:
// vault relative, slash separated, with extension.
type Document struct {
	Path    string
	Meta    map[string]any
	ModTime time.Time
}

// Name returns document base name without extension, which is what wiki
// links refer to.
func (d *Document) Name() string {
	base := path.Base(d.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Dir returns vault relative folder of the document, "." for vault root.
func (d *Document) Dir() string {
	return path.Dir(d.Path)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseDocument builds document from raw file content. Broken front matter
// is not an error - document simply has no metadata.
func ParseDocument(name string, data []byte, modTime time.Time, log *zap.Logger) *Document {
	doc := &Document{
		Path:    name,
		Meta:    map[string]any{},
		ModTime: modTime,
	}

	data = decodeText(data, log.With(zap.String("path", name)))

	block, ok := frontMatter(data)
	if !ok {
		return doc
	}
	var meta map[string]any
	if err := yaml.Unmarshal(block, &meta); err != nil {
		log.Debug("Unable to parse front matter, ignoring", zap.String("path", name), zap.Error(err))
		return doc
	}
	if meta != nil {
		doc.Meta = meta
	}
	return doc
}

// decodeText converts legacy encoded notes to UTF-8.
func decodeText(data []byte, log *zap.Logger) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	enc, name, _ := charset.DetermineEncoding(data, "text/plain")
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		log.Debug("Unable to decode document, using raw content", zap.String("charset", name), zap.Error(err))
		return data
	}
	log.Debug("Document decoded", zap.String("charset", name))
	return decoded
}

// frontMatter returns YAML block delimited by "---" lines at the very
// beginning of the document. Closing delimiter may also be "...".
func frontMatter(data []byte) ([]byte, bool) {
	first, rest, found := bytes.Cut(data, []byte("\n"))
	if !found || string(bytes.TrimRight(first, " \t\r")) != "---" {
		return nil, false
	}
	var block []byte
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = bytes.Cut(rest, []byte("\n"))
		switch string(bytes.TrimRight(line, " \t\r")) {
		case "---", "...":
			return block, true
		}
		block = append(append(block, line...), '\n')
	}
	return nil, false
}

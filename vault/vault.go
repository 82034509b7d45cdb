package vault

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Vault is an immutable set of documents loaded from a source.
type Vault struct {
	docs   []*Document
	byPath map[string]*Document
	// folded base name -> documents, ordered by path
	byName map[string][]*Document
	ext    string
}

// New indexes documents for lookups. defaultExt is appended to links which
// do not carry extension. Documents with duplicate paths are dropped, first
// one wins.
func New(docs []*Document, defaultExt string) *Vault {
	v := &Vault{
		byPath: make(map[string]*Document, len(docs)),
		byName: make(map[string][]*Document, len(docs)),
		ext:    defaultExt,
	}
	for _, d := range docs {
		if _, exists := v.byPath[d.Path]; exists {
			continue
		}
		v.byPath[d.Path] = d
		v.docs = append(v.docs, d)
	}
	sort.Slice(v.docs, func(i, j int) bool {
		return natural.Less(v.docs[i].Path, v.docs[j].Path)
	})
	for _, d := range v.docs {
		key := fold(d.Name())
		v.byName[key] = append(v.byName[key], d)
	}
	return v
}

// Documents returns all documents in natural path order.
func (v *Vault) Documents() []*Document {
	if v == nil {
		return nil
	}
	return v.docs
}

// Document returns document by its vault path.
func (v *Vault) Document(p string) (*Document, bool) {
	if v == nil {
		return nil, false
	}
	d, ok := v.byPath[p]
	return d, ok
}

// Len returns number of documents.
func (v *Vault) Len() int {
	if v == nil {
		return 0
	}
	return len(v.docs)
}

// FirstLinkTarget finds the best matching document for the link text as it
// appears in the source document (without [[ ]] decoration).
func (v *Vault) FirstLinkTarget(link, source string) (*Document, bool) {
	if v == nil {
		return nil, false
	}
	link = cleanLink(link)
	if len(link) == 0 {
		return nil, false
	}
	dir := path.Dir(source)

	if strings.Contains(link, "/") {
		candidates := []string{
			path.Join(dir, link),
			path.Clean(strings.TrimPrefix(link, "/")),
		}
		for _, c := range candidates {
			if d, ok := v.byPathWithExt(c); ok {
				return d, true
			}
		}
		// partial path, matched as a suffix
		suffix := "/" + fold(strings.TrimPrefix(link, "/"))
		for _, d := range v.byName[fold(strings.TrimSuffix(path.Base(link), v.ext))] {
			p := fold(d.Path)
			if strings.HasSuffix(p, suffix) || strings.HasSuffix(strings.TrimSuffix(p, fold(path.Ext(d.Path))), suffix) {
				return d, true
			}
		}
		return nil, false
	}

	name := link
	if ext := path.Ext(link); ext != "" && strings.EqualFold(ext, v.ext) {
		name = strings.TrimSuffix(link, ext)
	}
	candidates := v.byName[fold(name)]
	if len(candidates) == 0 {
		return nil, false
	}
	best := candidates[0]
	for _, d := range candidates {
		if d.Dir() == dir {
			return d, true
		}
		if len(d.Path) < len(best.Path) {
			best = d
		}
	}
	return best, true
}

func (v *Vault) byPathWithExt(p string) (*Document, bool) {
	if strings.HasPrefix(p, "../") || p == ".." {
		return nil, false
	}
	if d, ok := v.byPath[p]; ok {
		return d, true
	}
	if d, ok := v.byPath[p+v.ext]; ok {
		return d, true
	}
	// case insensitive fallback over documents with the same name
	want := fold(p)
	for _, d := range v.byName[fold(strings.TrimSuffix(path.Base(p), v.ext))] {
		if fp := fold(d.Path); fp == want || fp == want+fold(v.ext) {
			return d, true
		}
	}
	return nil, false
}

// cleanLink drops alias and subpath parts of the link.
func cleanLink(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "|"); i >= 0 {
		link = link[:i]
	}
	if i := strings.IndexAny(link, "#^"); i >= 0 {
		link = link[:i]
	}
	if strings.Contains(link, "%") {
		if u, err := url.PathUnescape(link); err == nil {
			link = u
		}
	}
	return strings.TrimSpace(link)
}

// fold makes names comparable regardless of case and Unicode normalization.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

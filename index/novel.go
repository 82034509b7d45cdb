// Package index builds immutable snapshot of book -> chapter -> stage
// relationships inferred from vault metadata.
package index

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/maruel/natural"

	"booknav/common"
)

// Novel is a complete snapshot of the index. It is never modified after it
// has been published, a new one is built on every change.
type Novel struct {
	Generation uuid.UUID
	Built      time.Time
	// Books by book document path.
	Books map[string]*Book
	// Chapters by chapter (info) document path.
	Chapters map[string]*Chapter
	// Stages by outline, draft or final document path.
	Stages map[string]*Stage
	// Problems found while building, in discovery order.
	Diagnostics []Diagnostic
}

// Book returns book backed by the document, nil when there is none.
func (n *Novel) Book(path string) *Book {
	if n == nil {
		return nil
	}
	return n.Books[path]
}

// Chapter returns chapter whose info document is path.
func (n *Novel) Chapter(path string) *Chapter {
	if n == nil {
		return nil
	}
	return n.Chapters[path]
}

// Stage returns registered outline, draft or final stage backed by path.
func (n *Novel) Stage(path string) *Stage {
	if n == nil {
		return nil
	}
	return n.Stages[path]
}

// SortedBooks returns books in natural order of their document paths.
func (n *Novel) SortedBooks() []*Book {
	if n == nil {
		return nil
	}
	res := make([]*Book, 0, len(n.Books))
	for _, b := range n.Books {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool {
		return natural.Less(res[i].File, res[j].File)
	})
	return res
}

// Book owns its chapters: [prologue?, chapters..., epilogue?].
type Book struct {
	File     string
	Title    string
	Prologue *Chapter
	Epilogue *Chapter
	Chapters []*Chapter
	// Chapter references which did not resolve to a usable document.
	Missing []string
}

// ReportName is file name book dump is stored under in debug report.
func (b *Book) ReportName() string {
	return "index/" + slug.Make(b.Title) + ".txt"
}

// Chapter is an entry of book sequence.
type Chapter struct {
	Book *Book
	// Position in the full sequence, prologue included.
	Index int
	Kind  common.ChapterKind
	// Only set for common.ChapterKindChapter, starting from 1.
	Number   *int
	Label    string
	Datetime string
	Location string

	Info    string
	Outline string
	Draft   string
	Final   string
}

// StageFile returns document backing stage of given kind, empty if absent.
func (c *Chapter) StageFile(kind common.StageKind) string {
	switch kind {
	case common.StageKindInfo:
		return c.Info
	case common.StageKindOutline:
		return c.Outline
	case common.StageKindDraft:
		return c.Draft
	case common.StageKindFinal:
		return c.Final
	}
	return ""
}

// Previous returns neighbour before this chapter in book sequence.
func (c *Chapter) Previous() *Chapter {
	if c.Index <= 0 || c.Index > len(c.Book.Chapters) {
		return nil
	}
	return c.Book.Chapters[c.Index-1]
}

// Next returns neighbour after this chapter in book sequence.
func (c *Chapter) Next() *Chapter {
	if c.Index < 0 || c.Index+1 >= len(c.Book.Chapters) {
		return nil
	}
	return c.Book.Chapters[c.Index+1]
}

// Stage is the role a document plays for its chapter.
type Stage struct {
	File    string
	Chapter *Chapter
	Kind    common.StageKind
}

// Diagnostic describes reference which was dropped while building.
type Diagnostic struct {
	// Document with the reference.
	File string
	Ref  string
	// Document reference resolved to, empty when unresolved.
	Target  string
	Problem string
}

package index

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"booknav/common"
	"booknav/links"
	"booknav/meta"
	"booknav/vault"
)

// Catalog enumerates vault documents.
type Catalog interface {
	Documents(ctx context.Context) ([]*vault.Document, error)
}

type Options struct {
	Keys   meta.Keys
	Labels *Labeler
}

// Builder scans the catalog and publishes snapshots. Build is expected to be
// called from a single goroutine, Last could be called from anywhere.
type Builder struct {
	catalog  Catalog
	resolver *links.Resolver
	keys     meta.Keys
	labels   *Labeler
	log      *zap.Logger

	last atomic.Pointer[Novel]
}

func NewBuilder(catalog Catalog, resolver *links.Resolver, opts Options, log *zap.Logger) *Builder {
	b := &Builder{
		catalog:  catalog,
		resolver: resolver,
		keys:     opts.Keys,
		labels:   opts.Labels,
		log:      log,
	}
	if b.labels == nil {
		b.labels = DefaultLabeler()
	}
	return b
}

// Last returns most recently published snapshot, nil if nothing was built yet.
func (b *Builder) Last() *Novel {
	return b.last.Load()
}

// Build scans all documents and publishes new snapshot. When documents cannot
// be enumerated error is returned and previous snapshot stays in effect.
func (b *Builder) Build(ctx context.Context) (*Novel, error) {
	start := time.Now()

	docs, err := b.catalog.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate documents: %w", err)
	}
	docs = append([]*vault.Document(nil), docs...)
	sort.SliceStable(docs, func(i, j int) bool {
		return natural.Less(docs[i].Path, docs[j].Path)
	})

	gen, err := uuid.NewV7()
	if err != nil {
		gen = uuid.New()
	}
	s := &scan{
		Builder: b,
		novel: &Novel{
			Generation: gen,
			Built:      start,
			Books:      make(map[string]*Book),
			Chapters:   make(map[string]*Chapter),
			Stages:     make(map[string]*Stage),
		},
	}

	// a document could be book, chapter and stage at the same time, navigation
	// picks the most specific role
	for _, doc := range docs {
		if rec, ok := meta.ParseBook(doc.Meta, b.keys); ok {
			book := s.book(doc, rec)
			s.novel.Books[book.File] = book
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.last.Store(s.novel)

	b.log.Debug("Index built",
		zap.Stringer("generation", s.novel.Generation),
		zap.Int("documents", len(docs)),
		zap.Int("books", len(s.novel.Books)),
		zap.Int("chapters", len(s.novel.Chapters)),
		zap.Int("stages", len(s.novel.Stages)),
		zap.Int("problems", len(s.novel.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)))
	return s.novel, nil
}

// scan is a state of a single build.
type scan struct {
	*Builder
	novel *Novel
}

func (s *scan) book(doc *vault.Document, rec meta.BookRecord) *Book {
	book := &Book{File: doc.Path, Title: rec.Title}

	type entry struct {
		ref  string
		kind common.ChapterKind
	}
	entries := make([]entry, 0, len(rec.Chapters)+2)
	if len(rec.Prologue) > 0 {
		entries = append(entries, entry{rec.Prologue, common.ChapterKindPrologue})
	}
	for _, ref := range rec.Chapters {
		entries = append(entries, entry{ref, common.ChapterKindChapter})
	}
	if len(rec.Epilogue) > 0 {
		entries = append(entries, entry{rec.Epilogue, common.ChapterKindEpilogue})
	}

	number := 0
	for _, e := range entries {
		target, ok := s.resolver.Resolve(e.ref, doc.Path)
		if !ok {
			book.Missing = append(book.Missing, e.ref)
			s.problem(doc.Path, e.ref, "", "unresolved reference")
			continue
		}
		if owner, exists := s.novel.Chapters[target.Path]; exists {
			book.Missing = append(book.Missing, e.ref)
			s.problem(doc.Path, e.ref, target.Path, fmt.Sprintf("chapter document already belongs to %s", owner.Book.File))
			continue
		}

		ch := &Chapter{
			Book:  book,
			Index: len(book.Chapters),
			Kind:  e.kind,
			Info:  target.Path,
		}
		if e.kind.Numbered() {
			number++
			n := number
			ch.Number = &n
		}
		s.novel.Chapters[ch.Info] = ch
		s.chapter(ch, target)

		book.Chapters = append(book.Chapters, ch)
		switch e.kind {
		case common.ChapterKindPrologue:
			book.Prologue = ch
		case common.ChapterKindEpilogue:
			book.Epilogue = ch
		}
	}
	return book
}

func (s *scan) chapter(ch *Chapter, doc *vault.Document) {
	rec := meta.ParseChapter(doc.Meta, s.keys)
	ch.Datetime = rec.Datetime
	ch.Location = rec.Location

	label, err := s.labels.Label(ch, doc.Name())
	if err != nil {
		s.log.Warn("Unable to expand chapter label", zap.String("path", ch.Info), zap.Error(err))
		label = fallbackLabel(ch)
	}
	ch.Label = label

	for _, st := range []struct {
		kind common.StageKind
		ref  string
		file *string
	}{
		{common.StageKindOutline, rec.Outline, &ch.Outline},
		{common.StageKindDraft, rec.Draft, &ch.Draft},
		{common.StageKindFinal, rec.Final, &ch.Final},
	} {
		if len(st.ref) == 0 {
			continue
		}
		target, ok := s.resolver.Resolve(st.ref, doc.Path)
		if !ok {
			s.problem(doc.Path, st.ref, "", fmt.Sprintf("unresolved %s reference", st.kind))
			continue
		}
		if other, exists := s.novel.Stages[target.Path]; exists {
			s.problem(doc.Path, st.ref, target.Path, fmt.Sprintf("document is already %s of %s", other.Kind, other.Chapter.Info))
			continue
		}
		*st.file = target.Path
		s.novel.Stages[target.Path] = &Stage{File: target.Path, Chapter: ch, Kind: st.kind}
	}
}

func (s *scan) problem(file, ref, target, problem string) {
	d := Diagnostic{File: file, Ref: ref, Target: target, Problem: problem}
	s.novel.Diagnostics = append(s.novel.Diagnostics, d)
	if len(target) > 0 {
		s.log.Warn("Reference dropped", zap.String("path", file), zap.String("ref", ref), zap.String("target", target), zap.String("problem", problem))
		return
	}
	s.log.Debug("Reference dropped", zap.String("path", file), zap.String("ref", ref), zap.String("problem", problem))
}

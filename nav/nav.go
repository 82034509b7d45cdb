// Package nav answers which toolbar a document gets and where its buttons
// lead. All functions are pure readers of the index snapshot passed in.
package nav

import (
	"booknav/common"
	"booknav/index"
)

// Mode is navigational context of a document. Book is set for book overview,
// Stage for chapter stage mode.
type Mode struct {
	Kind  common.ModeKind
	Book  *index.Book
	Stage *index.Stage
}

// ResolveMode is total: every document (including unknown ones and nil index)
// gets a mode. Registered stages take precedence over chapter info documents,
// which take precedence over books.
func ResolveMode(idx *index.Novel, path string) Mode {
	if idx == nil || len(path) == 0 {
		return Mode{Kind: common.ModeKindNone}
	}
	if st := idx.Stage(path); st != nil {
		return Mode{Kind: common.ModeKindChapter, Stage: st}
	}
	if ch := idx.Chapter(path); ch != nil {
		return Mode{
			Kind:  common.ModeKindChapter,
			Stage: &index.Stage{File: ch.Info, Chapter: ch, Kind: common.StageKindInfo},
		}
	}
	if b := idx.Book(path); b != nil {
		return Mode{Kind: common.ModeKindBook, Book: b}
	}
	return Mode{Kind: common.ModeKindNone}
}

// Target is either a document to open or a disabled button.
type Target struct {
	File    string
	Enabled bool
}

func File(path string) Target {
	if len(path) == 0 {
		return Disabled()
	}
	return Target{File: path, Enabled: true}
}

func Disabled() Target {
	return Target{}
}

// Targets holds destinations of all chapter toolbar buttons.
type Targets struct {
	Outline     Target
	Draft       Target
	Final       Target
	ChapterInfo Target
	BookInfo    Target
	Previous    Target
	Next        Target
}

// Stage returns target of stage button of given kind.
func (t Targets) Stage(kind common.StageKind) Target {
	switch kind {
	case common.StageKindInfo:
		return t.ChapterInfo
	case common.StageKindOutline:
		return t.Outline
	case common.StageKindDraft:
		return t.Draft
	case common.StageKindFinal:
		return t.Final
	}
	return Disabled()
}

// NavigationTargets computes destinations for stage document toolbar.
// Previous and next keep the stage kind and are disabled when the neighbour
// does not have it.
func NavigationTargets(st *index.Stage) Targets {
	if st == nil || st.Chapter == nil {
		return Targets{}
	}
	ch := st.Chapter
	res := Targets{
		Outline:     File(ch.Outline),
		Draft:       File(ch.Draft),
		Final:       File(ch.Final),
		ChapterInfo: File(ch.Info),
	}
	if ch.Book == nil {
		return res
	}
	res.BookInfo = File(ch.Book.File)
	if prev := ch.Previous(); prev != nil {
		res.Previous = File(prev.StageFile(st.Kind))
	}
	if next := ch.Next(); next != nil {
		res.Next = File(next.StageFile(st.Kind))
	}
	return res
}

// ChapterTarget is destination of chapter button in book overview.
func ChapterTarget(ch *index.Chapter) Target {
	if ch == nil {
		return Disabled()
	}
	return File(ch.Info)
}

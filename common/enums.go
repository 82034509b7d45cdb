// Package common keeps enumerations shared by the index, navigation and
// toolbar packages, so none of them has to import the other for a kind tag.
package common

import (
	"fmt"
	"strings"
)

// Role a document plays for its chapter.
type StageKind int

const (
	StageKindInfo StageKind = iota
	StageKindOutline
	StageKindDraft
	StageKindFinal
)

var stageKindNames = []string{"info", "outline", "draft", "final"}

// StageKinds lists all stages in toolbar order.
func StageKinds() []StageKind {
	return []StageKind{StageKindInfo, StageKindOutline, StageKindDraft, StageKindFinal}
}

// StageKindNames returns list of possible string values of StageKind.
func StageKindNames() []string {
	return append([]string(nil), stageKindNames...)
}

func (s StageKind) String() string {
	if s < 0 || int(s) >= len(stageKindNames) {
		return fmt.Sprintf("StageKind(%d)", int(s))
	}
	return stageKindNames[s]
}

// IsValid reports if value is one of the defined stages.
func (s StageKind) IsValid() bool {
	return s >= 0 && int(s) < len(stageKindNames)
}

// ParseStageKind converts a string to StageKind, case insensitive.
func ParseStageKind(name string) (StageKind, error) {
	for i, n := range stageKindNames {
		if strings.EqualFold(n, name) {
			return StageKind(i), nil
		}
	}
	return StageKind(0), fmt.Errorf("%s is not a valid StageKind, try [%s]", name, strings.Join(stageKindNames, ", "))
}

// Position of a chapter entry in the book structure.
type ChapterKind int

const (
	ChapterKindPrologue ChapterKind = iota
	ChapterKindChapter
	ChapterKindEpilogue
)

var chapterKindNames = []string{"prologue", "chapter", "epilogue"}

func (c ChapterKind) String() string {
	if c < 0 || int(c) >= len(chapterKindNames) {
		return fmt.Sprintf("ChapterKind(%d)", int(c))
	}
	return chapterKindNames[c]
}

// Numbered reports if entries of this kind receive chapter numbers.
func (c ChapterKind) Numbered() bool {
	return c == ChapterKindChapter
}

// Resolved navigational context of a document.
type ModeKind int

const (
	ModeKindNone ModeKind = iota
	ModeKindBook
	ModeKindChapter
)

var modeKindNames = []string{"none", "book", "chapter"}

func (m ModeKind) String() string {
	if m < 0 || int(m) >= len(modeKindNames) {
		return fmt.Sprintf("ModeKind(%d)", int(m))
	}
	return modeKindNames[m]
}

// Where vault documents are loaded from.
type SourceKind int

const (
	SourceKindDirectory SourceKind = iota
	SourceKindArchive
)

var sourceKindNames = []string{"directory", "archive"}

func (s SourceKind) String() string {
	if s < 0 || int(s) >= len(sourceKindNames) {
		return fmt.Sprintf("SourceKind(%d)", int(s))
	}
	return sourceKindNames[s]
}

package toolbar

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"booknav/common"
	"booknav/index"
	"booknav/nav"
)

// chapterHandler shows chapter label, book and stage buttons with the active
// stage highlighted, and previous/next within the same stage.
type chapterHandler struct {
	stage     *index.Stage
	targets   nav.Targets
	destroyed bool
}

func (h *chapterHandler) Kind() common.ModeKind { return common.ModeKindChapter }

func (h *chapterHandler) Update(st State) {
	if h.destroyed || st.Mode.Stage == nil {
		return
	}
	h.stage = st.Mode.Stage
	h.targets = nav.NavigationTargets(h.stage)
}

func (h *chapterHandler) Destroy() {
	h.destroyed = true
	h.stage = nil
}

// Button order of chapter toolbar.
const (
	ButtonBook = iota
	ButtonPrevious
	ButtonInfo
	ButtonOutline
	ButtonDraft
	ButtonFinal
	ButtonNext
)

func (h *chapterHandler) View() View {
	v := View{Kind: common.ModeKindChapter, OverflowBefore: -1}
	if h.stage == nil || h.stage.Chapter == nil {
		return v
	}
	ch := h.stage.Chapter
	v.Title = ch.Label

	book := "Book"
	if ch.Book != nil {
		book = ch.Book.Title
	}
	v.Buttons = append(v.Buttons,
		Button{Label: book, Target: h.targets.BookInfo},
		Button{Label: "Previous", Target: h.targets.Previous},
	)
	caser := cases.Title(language.English)
	for _, kind := range common.StageKinds() {
		v.Buttons = append(v.Buttons, Button{
			Label:  caser.String(kind.String()),
			Target: h.targets.Stage(kind),
			Active: kind == h.stage.Kind,
		})
	}
	v.Buttons = append(v.Buttons, Button{Label: "Next", Target: h.targets.Next})
	return v
}

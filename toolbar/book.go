package toolbar

import (
	"slices"

	"booknav/common"
	"booknav/index"
	"booknav/layout"
	"booknav/nav"
)

// bookHandler shows book title and a strip of chapter buttons which
// collapses into overflow menu when it does not fit.
type bookHandler struct {
	widths layout.Measurer
	opts   layout.Options

	book      *index.Book
	engine    *layout.Engine
	last      layout.Result
	destroyed bool
}

func (h *bookHandler) Kind() common.ModeKind { return common.ModeKindBook }

func (h *bookHandler) Update(st State) {
	if h.destroyed || st.Mode.Book == nil {
		return
	}
	labels := make([]string, 0, len(st.Mode.Book.Chapters))
	for _, ch := range st.Mode.Book.Chapters {
		labels = append(labels, ch.Label)
	}
	// same strip keeps its layout state and measured widths
	if h.engine == nil || !slices.Equal(h.engine.Labels(), labels) {
		h.engine = layout.NewEngine(labels, h.widths, h.opts)
	}
	h.book = st.Mode.Book
	h.last = h.engine.Layout(st.Width)
}

func (h *bookHandler) Destroy() {
	h.destroyed = true
	h.book, h.engine = nil, nil
}

func (h *bookHandler) View() View {
	v := View{Kind: common.ModeKindBook, OverflowBefore: -1}
	if h.book == nil {
		return v
	}
	v.Title = h.book.Title
	v.Deferred = h.last.Deferred
	for i, ch := range h.book.Chapters {
		b := Button{
			Label:  ch.Label,
			Target: nav.ChapterTarget(ch),
			Hidden: h.engine.IsHidden(i),
		}
		v.Buttons = append(v.Buttons, b)
		if b.Hidden {
			v.Overflow = append(v.Overflow, b)
		}
	}
	if len(v.Overflow) > 0 {
		v.OverflowBefore = h.last.OverflowBefore
	}
	return v
}

package index

import (
	"time"

	"booknav/utils/debug"
)

// String returns a readable tree of the whole snapshot. It exists solely for
// manual inspection during debugging.
func (n *Novel) String() string {
	if n == nil {
		return "<nil Novel>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Novel generation[%s] built[%s] books[%d] chapters[%d] stages[%d]",
		n.Generation, n.Built.UTC().Format(time.RFC3339), len(n.Books), len(n.Chapters), len(n.Stages))
	out := tw.String()

	for _, b := range n.SortedBooks() {
		out += "\n" + b.String()
	}

	if len(n.Diagnostics) > 0 {
		tw := debug.NewTreeWriter()
		tw.Line(0, "Diagnostics (%d)", len(n.Diagnostics))
		for _, d := range n.Diagnostics {
			tw.Line(1, "File[%q] ref[%q]: %s", d.File, d.Ref, d.Problem)
			tw.Field(2, "target", d.Target)
		}
		out += "\n" + tw.String()
	}
	return out
}

// String returns a readable tree of the book with all its chapters.
func (b *Book) String() string {
	if b == nil {
		return "<nil Book>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Book[%q] title[%q] chapters[%d]", b.File, b.Title, len(b.Chapters))
	for _, ch := range b.Chapters {
		if ch.Number != nil {
			tw.Line(1, "[%d] %s #%d label[%q] info[%q]", ch.Index, ch.Kind, *ch.Number, ch.Label, ch.Info)
		} else {
			tw.Line(1, "[%d] %s label[%q] info[%q]", ch.Index, ch.Kind, ch.Label, ch.Info)
		}
		tw.Field(2, "datetime", ch.Datetime)
		tw.Field(2, "location", ch.Location)
		tw.Field(2, "outline", ch.Outline)
		tw.Field(2, "draft", ch.Draft)
		tw.Field(2, "final", ch.Final)
	}
	tw.List(1, "Missing", b.Missing)
	return tw.String()
}

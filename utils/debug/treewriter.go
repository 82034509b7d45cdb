// Package debug has helpers producing human readable dumps of index
// structures for logs and debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Field writes "label: value" with value quoted. Empty values are skipped,
// so optional metadata does not clutter the dump.
func (tw *TreeWriter) Field(depth int, label, value string) {
	if len(value) == 0 {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(quote(value))
	tw.w.WriteByte('\n')
}

// List writes header with number of items followed by quoted items one level
// deeper. Nothing is written for empty list.
func (tw *TreeWriter) List(depth int, label string, items []string) {
	if len(items) == 0 {
		return
	}
	tw.Line(depth, "%s (%d)", label, len(items))
	for _, item := range items {
		tw.indent(depth + 1)
		tw.w.WriteString(quote(item))
		tw.w.WriteByte('\n')
	}
}

func quote(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

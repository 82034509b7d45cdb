// Package toolbar turns navigation context of the active document into
// toolbar view models. There is a handler per mode kind, switching kind
// destroys the old handler and creates a new one.
package toolbar

import (
	"go.uber.org/zap"

	"booknav/common"
	"booknav/index"
	"booknav/layout"
	"booknav/nav"
)

// State is everything handler needs to produce its view.
type State struct {
	Mode nav.Mode
	// Container width, 0 when not sized yet.
	Width float64
}

// Button is a single toolbar control.
type Button struct {
	Label  string
	Target nav.Target
	Active bool
	// Collapsed into overflow menu.
	Hidden bool
}

// View is plain data describing the toolbar.
type View struct {
	Kind    common.ModeKind
	Title   string
	Buttons []Button
	// Overflow menu entries, same targets as hidden buttons.
	Overflow []Button
	// Overflow button goes before this button, -1 when not shown.
	OverflowBefore int
	// Layout could not be computed yet and must be retried.
	Deferred bool
}

// Handler owns toolbar of a single mode kind.
type Handler interface {
	Kind() common.ModeKind
	Update(st State)
	Destroy()
	View() View
}

// Mount holds the handler of a single view (pane).
type Mount struct {
	widths layout.Measurer
	opts   layout.Options
	log    *zap.Logger

	handler Handler
	state   State
}

// NewMount creates mount with empty toolbar. Label widths are measured
// through widths which could be shared among mounts.
func NewMount(widths layout.Measurer, opts layout.Options, log *zap.Logger) *Mount {
	return &Mount{
		widths:  widths,
		opts:    opts,
		log:     log,
		handler: &noneHandler{},
		state:   State{Mode: nav.Mode{Kind: common.ModeKindNone}},
	}
}

// Handler returns current handler.
func (m *Mount) Handler() Handler {
	return m.handler
}

// Update resolves mode of the active document against the snapshot and
// refreshes toolbar.
func (m *Mount) Update(idx *index.Novel, path string) View {
	m.state.Mode = nav.ResolveMode(idx, path)
	if m.handler.Kind() != m.state.Mode.Kind {
		m.log.Debug("Switching toolbar", zap.Stringer("from", m.handler.Kind()), zap.Stringer("to", m.state.Mode.Kind), zap.String("path", path))
		m.handler.Destroy()
		m.handler = m.newHandler(m.state.Mode.Kind)
	}
	m.handler.Update(m.state)
	return m.handler.View()
}

// Resize recomputes layout for new container width.
func (m *Mount) Resize(width float64) View {
	m.state.Width = width
	m.handler.Update(m.state)
	return m.handler.View()
}

// Width returns last known container width.
func (m *Mount) Width() float64 {
	return m.state.Width
}

// View returns current toolbar.
func (m *Mount) View() View {
	return m.handler.View()
}

// Close destroys the handler, mount shows empty toolbar afterwards.
func (m *Mount) Close() {
	m.handler.Destroy()
	m.handler = &noneHandler{}
}

func (m *Mount) newHandler(kind common.ModeKind) Handler {
	switch kind {
	case common.ModeKindBook:
		return &bookHandler{widths: m.widths, opts: m.opts}
	case common.ModeKindChapter:
		return &chapterHandler{}
	}
	return &noneHandler{}
}

type noneHandler struct{}

func (h *noneHandler) Kind() common.ModeKind { return common.ModeKindNone }
func (h *noneHandler) Update(State)          {}
func (h *noneHandler) Destroy()              {}
func (h *noneHandler) View() View {
	return View{Kind: common.ModeKindNone, OverflowBefore: -1}
}

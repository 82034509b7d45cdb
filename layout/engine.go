package layout

import (
	"booknav/config"
)

type Options struct {
	// Added to every measured label, button chrome.
	Padding       float64
	OverflowLabel string
	// Only used to decide if the whole strip fits.
	SafetyBuffer float64
	// Measured text narrower than this is treated as not measured yet.
	MinPlausibleWidth float64
}

func OptionsFromConfig(cfg *config.ToolbarConfig) Options {
	return Options{
		Padding:           cfg.ButtonPadding,
		OverflowLabel:     cfg.OverflowLabel,
		SafetyBuffer:      cfg.SafetyBuffer,
		MinPlausibleWidth: cfg.MinPlausibleWidth,
	}
}

// Result of a layout pass. Buttons in [Start, End) are hidden, the range is
// empty when Start == End.
type Result struct {
	Start, End      int
	OverflowVisible bool
	// Container is not sized yet, nothing was changed, layout should be
	// attempted again later.
	Deferred bool
	// Buttons whose hidden state changed with this pass, ascending.
	Toggled []int
	// Overflow button goes right before this button, -1 when not shown.
	OverflowBefore int
}

// MenuItem is overflow menu entry, Index is the button it stands for.
type MenuItem struct {
	Index int
	Label string
}

// Remeasurer is implemented by measurers which remember results.
type Remeasurer interface {
	Remeasure(label string) float64
}

// Engine keeps layout state of a single toolbar strip.
type Engine struct {
	labels []string
	m      Measurer
	opts   Options

	// text widths, 0 when not measured
	widths   []float64
	overflow float64

	start, end int
}

func NewEngine(labels []string, m Measurer, opts Options) *Engine {
	return &Engine{
		labels: append([]string(nil), labels...),
		m:      m,
		opts:   opts,
		widths: make([]float64, len(labels)),
	}
}

// Labels returns button labels in strip order.
func (e *Engine) Labels() []string {
	return e.labels
}

// Hidden returns current hidden range [start, end).
func (e *Engine) Hidden() (start, end int) {
	return e.start, e.end
}

// IsHidden reports if button is collapsed into overflow menu.
func (e *Engine) IsHidden(i int) bool {
	return i >= e.start && i < e.end
}

// Menu lists hidden buttons in strip order.
func (e *Engine) Menu() []MenuItem {
	res := make([]MenuItem, 0, e.end-e.start)
	for i := e.start; i < e.end; i++ {
		res = append(res, MenuItem{Index: i, Label: e.labels[i]})
	}
	return res
}

// Layout recomputes hidden range for container width. Repeated calls with
// the same width give the same range and toggle nothing.
func (e *Engine) Layout(width float64) Result {
	n := len(e.labels)
	if n == 0 {
		return e.result(nil)
	}
	if width <= 0 {
		res := e.result(nil)
		res.Deferred = true
		return res
	}

	total := e.measure()
	overflow := e.overflow + e.opts.Padding
	start, end := 0, 0
	if total+e.opts.SafetyBuffer > width {
		// squeeze from the middle outwards, start side first
		mid := n / 2
		start, end = mid, mid+1
		hidden := e.button(mid)
		for fromStart := true; total-hidden+overflow > width && (start > 0 || end < n); fromStart = !fromStart {
			if (fromStart && start > 0) || end == n {
				start--
				hidden += e.button(start)
			} else {
				hidden += e.button(end)
				end++
			}
		}
	}

	var toggled []int
	for i := range n {
		was, now := e.IsHidden(i), i >= start && i < end
		if was != now {
			toggled = append(toggled, i)
		}
	}
	e.start, e.end = start, end
	return e.result(toggled)
}

func (e *Engine) result(toggled []int) Result {
	res := Result{
		Start:          e.start,
		End:            e.end,
		Toggled:        toggled,
		OverflowBefore: -1,
	}
	if e.end > e.start {
		res.OverflowVisible = true
		res.OverflowBefore = e.start
	}
	return res
}

func (e *Engine) button(i int) float64 {
	return e.widths[i] + e.opts.Padding
}

// measure fills width cache and returns total width of all buttons.
func (e *Engine) measure() float64 {
	var total float64
	for i, label := range e.labels {
		if e.widths[i] < e.opts.MinPlausibleWidth || e.widths[i] == 0 {
			e.widths[i] = e.text(label)
		}
		total += e.button(i)
	}
	if e.overflow < e.opts.MinPlausibleWidth || e.overflow == 0 {
		e.overflow = e.text(e.opts.OverflowLabel)
	}
	return total
}

// text measures label asking for fresh measurement when remembered one is
// implausible.
func (e *Engine) text(label string) float64 {
	w := e.m.Measure(label)
	if w < e.opts.MinPlausibleWidth {
		if r, ok := e.m.(Remeasurer); ok {
			w = r.Remeasure(label)
		} else {
			w = e.m.Measure(label)
		}
	}
	return w
}

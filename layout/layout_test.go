package layout

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

// fixedMeasurer returns the same width for every label except overflow one.
type fixedMeasurer struct {
	mu       sync.Mutex
	width    float64
	overflow float64
	calls    map[string]int
	// number of first calls per label returning 0 (not rendered yet)
	blank int
}

func (m *fixedMeasurer) Measure(label string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[label]++
	if m.calls[label] <= m.blank {
		return 0
	}
	if label == "…" {
		return m.overflow
	}
	return m.width
}

var testOptions = Options{
	Padding:           16,
	OverflowLabel:     "…",
	SafetyBuffer:      4,
	MinPlausibleWidth: 2,
}

func chapterLabels(n int) []string {
	res := make([]string, 0, n)
	for i := range n {
		res = append(res, fmt.Sprintf("Chapter %d", i+1))
	}
	return res
}

// Button width W = 84 + 16 = 100, overflow button 34 + 16 = 50.
func newTestEngine(n int) (*Engine, *fixedMeasurer) {
	m := &fixedMeasurer{width: 84, overflow: 34}
	return NewEngine(chapterLabels(n), m, testOptions), m
}

func visibleWidth(e *Engine, res Result) float64 {
	var w float64
	for i := range e.Labels() {
		if i < res.Start || i >= res.End {
			w += e.button(i)
		}
	}
	if res.OverflowVisible {
		w += e.overflow + e.opts.Padding
	}
	return w
}

func TestLayout_Overflow(t *testing.T) {
	e, _ := newTestEngine(10)
	res := e.Layout(550)

	if res.Deferred {
		t.Fatal("layout must not be deferred")
	}
	if res.Start != 3 || res.End != 8 {
		t.Errorf("hidden range = [%d, %d), want [3, 8)", res.Start, res.End)
	}
	if !res.OverflowVisible || res.OverflowBefore != 3 {
		t.Errorf("overflow visible = %v before %d", res.OverflowVisible, res.OverflowBefore)
	}
	if w := visibleWidth(e, res); w > 550 {
		t.Errorf("visible width %v exceeds container", w)
	}

	menu := e.Menu()
	var labels []string
	for _, item := range menu {
		labels = append(labels, item.Label)
		if e.Labels()[item.Index] != item.Label {
			t.Errorf("menu item %d label mismatch", item.Index)
		}
	}
	want := []string{"Chapter 4", "Chapter 5", "Chapter 6", "Chapter 7", "Chapter 8"}
	if !slices.Equal(labels, want) {
		t.Errorf("Menu() = %q, want %q", labels, want)
	}
	if !slices.Equal(res.Toggled, []int{3, 4, 5, 6, 7}) {
		t.Errorf("Toggled = %v", res.Toggled)
	}
}

func TestLayout_Centered(t *testing.T) {
	for _, tt := range []struct {
		n          int
		width      float64
		start, end int
	}{
		{10, 950, 5, 6}, // one hidden: 900 + 50
		{10, 850, 4, 6}, // two hidden, start side first
		{10, 750, 4, 7}, // three hidden
		{9, 850, 4, 5},  // odd count, midpoint 4
		{10, 50, 0, 10}, // nothing fits
		{2, 150, 1, 2},  // midpoint of two is the second
		{3, 120, 0, 3},  // single button does not fit next to overflow
	} {
		t.Run(fmt.Sprintf("%d@%v", tt.n, tt.width), func(t *testing.T) {
			e, _ := newTestEngine(tt.n)
			res := e.Layout(tt.width)
			if res.Start != tt.start || res.End != tt.end {
				t.Errorf("hidden range = [%d, %d), want [%d, %d)", res.Start, res.End, tt.start, tt.end)
			}
		})
	}
}

func TestLayout_Fits(t *testing.T) {
	e, _ := newTestEngine(5)

	res := e.Layout(504)
	if res.OverflowVisible || res.Start != res.End || res.OverflowBefore != -1 {
		t.Errorf("everything must be visible: %+v", res)
	}
	if len(e.Menu()) != 0 {
		t.Error("menu must be empty")
	}

	// safety buffer is not available
	res = e.Layout(503)
	if !res.OverflowVisible {
		t.Error("strip without safety buffer must overflow")
	}
}

func TestLayout_Idempotent(t *testing.T) {
	e, m := newTestEngine(10)
	first := e.Layout(550)
	second := e.Layout(550)

	if first.Start != second.Start || first.End != second.End || first.OverflowVisible != second.OverflowVisible {
		t.Errorf("layout differs: %+v vs %+v", first, second)
	}
	if len(second.Toggled) != 0 {
		t.Errorf("second pass toggled %v", second.Toggled)
	}
	if m.calls["Chapter 1"] != 1 {
		t.Errorf("label measured %d times, want once", m.calls["Chapter 1"])
	}
}

func TestLayout_OnlyChangedToggle(t *testing.T) {
	e, _ := newTestEngine(10)
	e.Layout(550) // [3, 8)
	res := e.Layout(750)
	if res.Start != 4 || res.End != 7 {
		t.Fatalf("hidden range = [%d, %d)", res.Start, res.End)
	}
	if !slices.Equal(res.Toggled, []int{3, 7}) {
		t.Errorf("Toggled = %v, want [3 7]", res.Toggled)
	}

	res = e.Layout(2000)
	if !slices.Equal(res.Toggled, []int{4, 5, 6}) || res.OverflowVisible {
		t.Errorf("widening must show remaining buttons: %+v", res)
	}
}

func TestLayout_ZeroChapters(t *testing.T) {
	e, _ := newTestEngine(0)
	for _, width := range []float64{10, 0, -5} {
		res := e.Layout(width)
		if res.OverflowVisible || res.Deferred || len(e.Menu()) != 0 {
			t.Errorf("Layout(%v) of empty strip = %+v, want settled with no overflow", width, res)
		}
	}
}

func TestLayout_Deferred(t *testing.T) {
	e, m := newTestEngine(10)
	for _, width := range []float64{0, -5} {
		res := e.Layout(width)
		if !res.Deferred {
			t.Errorf("Layout(%v) must be deferred", width)
		}
		if res.OverflowVisible || len(res.Toggled) != 0 {
			t.Errorf("deferred layout must change nothing: %+v", res)
		}
	}
	if len(m.calls) != 0 {
		t.Error("nothing must be measured before container is sized")
	}

	e.Layout(550)
	res := e.Layout(0)
	if !res.Deferred || res.Start != 3 || res.End != 8 {
		t.Errorf("deferred layout must keep previous range: %+v", res)
	}
}

func TestLayout_SingleWideChapter(t *testing.T) {
	e, _ := newTestEngine(1)
	res := e.Layout(60)
	if res.Start != 0 || res.End != 1 || !res.OverflowVisible {
		t.Errorf("single too wide chapter must be hidden: %+v", res)
	}
	if menu := e.Menu(); len(menu) != 1 || menu[0].Label != "Chapter 1" {
		t.Errorf("Menu() = %+v", menu)
	}
}

func TestLayout_RemeasureImplausible(t *testing.T) {
	m := &fixedMeasurer{width: 84, overflow: 34, blank: 1}
	e := NewEngine(chapterLabels(3), m, testOptions)

	// first measurement of every label is blank, engine asks again
	res := e.Layout(310)
	if res.OverflowVisible {
		t.Errorf("strip of three 100px buttons must fit 310px: %+v", res)
	}
	if m.calls["Chapter 1"] != 2 {
		t.Errorf("label measured %d times, want 2", m.calls["Chapter 1"])
	}
}

func TestLayout_RemeasureThroughMemo(t *testing.T) {
	m := &fixedMeasurer{width: 84, overflow: 34, blank: 1}
	memo := NewMemo(m)
	e := NewEngine(chapterLabels(3), memo, testOptions)

	if res := e.Layout(310); res.OverflowVisible {
		t.Errorf("strip must fit: %+v", res)
	}
	if w := memo.Measure("Chapter 1"); w != 84 {
		t.Errorf("memo keeps %v, want fresh width", w)
	}
}

func TestMemo(t *testing.T) {
	m := &fixedMeasurer{width: 10, overflow: 5}
	memo := NewMemo(m)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, l := range chapterLabels(20) {
				if memo.Measure(l) != 10 {
					t.Errorf("Measure(%q) wrong", l)
				}
			}
		}()
	}
	wg.Wait()

	if memo.Len() != 20 {
		t.Errorf("Len() = %d, want 20", memo.Len())
	}

	// shared between engines: second engine does not measure again
	before := m.calls["Chapter 1"]
	NewEngine(chapterLabels(3), memo, testOptions).Layout(1000)
	if m.calls["Chapter 1"] != before {
		t.Error("memo must be reused across engines")
	}
}

func TestFontMeasurer(t *testing.T) {
	fm, err := NewFontMeasurer(13, 96)
	if err != nil {
		t.Fatalf("NewFontMeasurer() error = %v", err)
	}
	short, long := fm.Measure("Chapter 1"), fm.Measure("Chapter 1 and much more")
	if short <= 0 {
		t.Errorf("Measure() = %v, want positive", short)
	}
	if long <= short {
		t.Errorf("longer label must be wider: %v <= %v", long, short)
	}
	if fm.Measure("") != 0 {
		t.Error("empty label must have zero width")
	}
}

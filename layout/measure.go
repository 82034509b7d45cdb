// Package layout decides which chapter buttons of a toolbar strip stay
// visible and which collapse into the overflow menu when the strip does not
// fit its container.
package layout

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Measurer returns natural width of label text in pixels.
type Measurer interface {
	Measure(label string) float64
}

// FontMeasurer measures text with a TrueType face. Faces keep glyph caches
// and cannot be used concurrently, so access is serialized.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

// NewFontMeasurer uses Go regular font of given size (points) at DPI.
func NewFontMeasurer(size, dpi float64) (*FontMeasurer, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	return &FontMeasurer{face: face}, nil
}

func (m *FontMeasurer) Measure(label string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(m.face, label)) / 64
}

// Memo remembers label widths. It has no per view state and is shared by
// all toolbars.
type Memo struct {
	m Measurer

	mu     sync.RWMutex
	widths map[string]float64
}

func NewMemo(m Measurer) *Memo {
	return &Memo{m: m, widths: make(map[string]float64)}
}

func (c *Memo) Measure(label string) float64 {
	c.mu.RLock()
	w, ok := c.widths[label]
	c.mu.RUnlock()
	if ok {
		return w
	}
	return c.Remeasure(label)
}

// Remeasure ignores remembered width and replaces it with a fresh one.
func (c *Memo) Remeasure(label string) float64 {
	w := c.m.Measure(label)
	c.mu.Lock()
	c.widths[label] = w
	c.mu.Unlock()
	return w
}

// Len returns number of remembered labels.
func (c *Memo) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.widths)
}

package text

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the rendered width of a string in pixels.
type Measurer interface {
	Measure(s string) (float64, error)
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(s string) (float64, error)

// Measure implements Measurer.
func (f MeasureFunc) Measure(s string) (float64, error) { return f(s) }

// CharWidth is a Measurer that gives every rune the same width.
type CharWidth float64

// Measure implements Measurer.
func (c CharWidth) Measure(s string) (float64, error) {
	return float64(utf8.RuneCountInString(s)) * float64(c), nil
}

// regular is the parsed Go Regular font, shared by all faces.
var regular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// NewFace returns a Go Regular face at the given size in pixels (72 DPI, so
// points and pixels coincide). Faces are not safe for concurrent use.
func NewFace(size float64) (font.Face, error) {
	f, err := regular()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// FontMeasurer measures strings with a TrueType face. It is safe for
// concurrent use.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
	err  error
}

// NewFontMeasurer returns a measurer for Go Regular at size pixels.
func NewFontMeasurer(size float64) *FontMeasurer {
	face, err := NewFace(size)
	return &FontMeasurer{face: face, err: err}
}

var (
	defaultMu        sync.Mutex
	defaultMeasurers = map[float64]*FontMeasurer{}
)

// DefaultMeasurer returns a shared FontMeasurer for the given size.
func DefaultMeasurer(size float64) *FontMeasurer {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	m, ok := defaultMeasurers[size]
	if !ok {
		m = NewFontMeasurer(size)
		defaultMeasurers[size] = m
	}
	return m
}

// Measure implements Measurer.
func (m *FontMeasurer) Measure(s string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	adv := font.MeasureString(m.face, s)
	m.mu.Unlock()
	return float64(adv) / 64, nil
}

// Close releases the underlying face.
func (m *FontMeasurer) Close() error {
	if m.face == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face.Close()
}

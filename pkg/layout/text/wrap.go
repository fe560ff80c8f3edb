package text

import (
	"strings"
	"unicode/utf8"
)

// Wrapper wraps labels to a pixel width.
type Wrapper struct {
	// Measurer measures candidate lines. When nil, wrapping uses the
	// character budget only.
	Measurer Measurer

	// Padding is the horizontal space reserved inside the box.
	Padding float64

	// WrapChars is the character budget of the fallback wrapper.
	WrapChars int
}

// Wrap breaks label into at most maxLines lines that fit within
// boxWidth-Padding pixels. The whole label is tried first; if it fits it is
// returned as a single line. Otherwise words are added greedily.
//
// The character fallback is used when the measurer is nil, returns an error,
// measures a non-empty string as zero width or less, or produces a single
// line longer than twice the character budget.
func (w Wrapper) Wrap(label string, boxWidth float64, maxLines int) []string {
	words := strings.Fields(label)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}
	if w.Measurer == nil {
		return WrapChars(label, w.WrapChars, maxLines)
	}

	lines, ok := w.measured(words, boxWidth-w.Padding, maxLines)
	if !ok || w.degenerate(lines) {
		return WrapChars(label, w.WrapChars, maxLines)
	}
	return lines
}

func (w Wrapper) measured(words []string, target float64, maxLines int) ([]string, bool) {
	whole := strings.Join(words, " ")
	width, ok := w.measure(whole)
	if !ok {
		return nil, false
	}
	if width <= target {
		return []string{whole}, true
	}

	var lines []string
	line := ""
	for _, word := range words {
		if line == "" {
			line = word
			continue
		}
		candidate := line + " " + word
		cw, ok := w.measure(candidate)
		if !ok {
			return nil, false
		}
		if cw <= target {
			line = candidate
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxLines {
			return lines, true
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines, true
}

func (w Wrapper) measure(s string) (float64, bool) {
	width, err := w.Measurer.Measure(s)
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

func (w Wrapper) degenerate(lines []string) bool {
	if len(lines) != 1 || w.WrapChars <= 0 {
		return false
	}
	return utf8.RuneCountInString(lines[0]) > 2*w.WrapChars
}

// WrapChars wraps label greedily so that lines hold at most maxChars runes,
// keeping over-long words whole, and returns at most maxLines lines. A
// non-positive maxChars disables wrapping.
func WrapChars(label string, maxChars, maxLines int) []string {
	words := strings.Fields(label)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}
	if maxChars <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	line := ""
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= maxChars:
			line += " " + word
		default:
			lines = append(lines, line)
			if len(lines) == maxLines {
				return lines
			}
			line = word
		}
	}
	return append(lines, line)
}

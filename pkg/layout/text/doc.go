// Package text wraps node labels into lines that fit a box.
//
// Wrapping is greedy and word-based. A [Wrapper] measures candidate lines
// with a [Measurer] (by default [FontMeasurer], which uses the Go Regular
// TrueType font) and falls back to a character-count budget ([WrapChars])
// whenever measurement is unavailable, fails, or produces nonsense.
//
// Words are never split: a word wider than the box is kept whole on its own
// line. Output is capped at a maximum line count and the remaining words are
// dropped silently.
//
//	w := text.Wrapper{Measurer: text.DefaultMeasurer(14), Padding: 16, WrapChars: 24}
//	lines := w.Wrap("Review request for a very long line of text", 200, 4)
package text

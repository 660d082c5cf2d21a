// Package outline infers a document title and a numbered-heading outline
// from positioned word tokens.
package outline

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Line is a visual line: the words of a page that share a rounded top.
type Line struct {
	Y     int
	Words []doctree.Word // sorted by X0
}

// Text joins the line's words left to right with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Key is the identity used for frequency counting and deduplication.
func (l Line) Key() string {
	return LineKey(l.Text())
}

// LineKey lowercases and trims text.
func LineKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// GroupLines buckets words by their rounded top coordinate and returns the
// lines in ascending vertical order. Words whose tops round to different
// integers are never merged.
func GroupLines(words []doctree.Word) []Line {
	byY := make(map[int][]doctree.Word)
	for _, w := range words {
		y := roundY(w.Top)
		byY[y] = append(byY[y], w)
	}

	lines := make([]Line, 0, len(byY))
	for y, ws := range byY {
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].X0 < ws[j].X0 })
		lines = append(lines, Line{Y: y, Words: ws})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Y < lines[j].Y })
	return lines
}

// roundY rounds half to even: 120.5 and 119.5 both become 120.
func roundY(top float64) int {
	return int(math.RoundToEven(top))
}

// inBand reports whether y lies in the header or footer band of a page.
func inBand(y int, pageHeight, margin float64) bool {
	fy := float64(y)
	return fy < margin || fy > pageHeight-margin
}

func textLen(s string) int {
	return utf8.RuneCountInString(s)
}

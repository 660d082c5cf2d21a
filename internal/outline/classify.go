package outline

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Matches: 1 Intro, 1.1 Scope, 2.3.1 Details
var headingPattern = regexp.MustCompile(`^\d+(?:\.\d+)*\s+.+`)

// HeadingLevel reports whether text is a numbered heading and, if so, its
// level: no dots in the leading numeral is H1, one dot H2, more H3.
func HeadingLevel(text string) (doctree.Level, bool) {
	if !headingPattern.MatchString(text) {
		return "", false
	}
	number := strings.Fields(text)[0]
	switch strings.Count(number, ".") {
	case 0:
		return doctree.H1, true
	case 1:
		return doctree.H2, true
	default:
		return doctree.H3, true
	}
}

// Classifier walks pages in order and collects numbered headings. A
// Classifier belongs to one document; its seen-set spans all pages.
type Classifier struct {
	opts       Options
	freq       Frequency
	totalPages int

	seen    map[string]struct{}
	outline []doctree.Entry
}

// NewClassifier returns a classifier that drops lines freq marks as
// boilerplate for a document of totalPages pages.
func NewClassifier(opts Options, freq Frequency, totalPages int) *Classifier {
	return &Classifier{
		opts:       opts.withDefaults(),
		freq:       freq,
		totalPages: totalPages,
		seen:       make(map[string]struct{}),
		outline:    []doctree.Entry{},
	}
}

// Classify visits the lines of one page top to bottom. pageNum is the
// 1-based position of the page in the document.
func (c *Classifier) Classify(page doctree.Page, pageNum int) {
	for _, line := range GroupLines(page.Words) {
		if inBand(line.Y, page.Height, c.opts.BandMargin) {
			continue
		}
		text := line.Text()
		key := LineKey(text)
		if text == "" || textLen(text) > c.opts.MaxHeadingLen {
			continue
		}
		if _, dup := c.seen[key]; dup {
			continue
		}
		if c.freq.IsBoilerplate(key, c.totalPages, c.opts.BoilerplateRatio) {
			continue
		}

		level, ok := HeadingLevel(text)
		if !ok {
			continue
		}
		c.outline = append(c.outline, doctree.Entry{Level: level, Text: text, Page: pageNum})
		c.seen[key] = struct{}{}
	}
}

// Outline returns the headings collected so far.
func (c *Classifier) Outline() []doctree.Entry {
	out := make([]doctree.Entry, len(c.outline))
	copy(out, c.outline)
	return out
}

package outline

import "github.com/dgallion1/docoutline/internal/doctree"

// Frequency counts how often each line key occurs in the header and footer
// bands across a document. Every band line counts, so a key that appears on
// two band lines of the same page is counted twice for that page.
type Frequency map[string]int

// Add counts the band lines of one page.
func (f Frequency) Add(page doctree.Page, opts Options) {
	opts = opts.withDefaults()
	for _, line := range GroupLines(page.Words) {
		if !inBand(line.Y, page.Height, opts.BandMargin) {
			continue
		}
		text := line.Text()
		if textLen(text) > opts.MinBoilerplateLen {
			f[LineKey(text)]++
		}
	}
}

// IsBoilerplate reports whether key recurs on more than ratio of totalPages.
func (f Frequency) IsBoilerplate(key string, totalPages int, ratio float64) bool {
	return float64(f[key]) > float64(totalPages)*ratio
}

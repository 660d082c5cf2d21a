package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DetectTitle returns the trimmed text of the largest-font word longer than
// minLen characters, or doctree.UnknownTitle when there is none. The first
// word wins a tie. Only one word is ever returned.
func DetectTitle(words []doctree.Word, minLen int) string {
	title := doctree.UnknownTitle
	found := false
	var best float64
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if textLen(text) <= minLen {
			continue
		}
		if !found || w.Size > best {
			title, best, found = text, w.Size, true
		}
	}
	return title
}

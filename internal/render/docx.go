package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fumiama/go-docx"
)

// WriteDOCX writes a Word document with the title in the Title style and
// each entry as a Heading1..Heading3 paragraph followed by its page number.
func WriteDOCX(w io.Writer, res doctree.Result) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Style("Title").AddText(res.Title).Size("44").Bold()

	for _, e := range res.Outline {
		depth := e.Level.Depth()
		if depth == 0 {
			depth = 1
		}
		para := doc.AddParagraph().Style(fmt.Sprintf("Heading%d", depth))
		para.AddText(e.Text)
		para.AddText(fmt.Sprintf("\t%d", e.Page)).Size("18")
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/yuin/goldmark"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
)

// Markdown renders the outline as a nested bullet list under a level-one
// heading holding the title. Each item ends with its page number.
func Markdown(res doctree.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", markdownEscaper.Replace(res.Title))

	var walk func(nodes []*doctree.DocNode, indent int)
	walk = func(nodes []*doctree.DocNode, indent int) {
		for _, n := range nodes {
			fmt.Fprintf(&sb, "%s- %s (p. %d)\n", strings.Repeat("  ", indent), markdownEscaper.Replace(n.Title), n.Page)
			walk(n.Children, indent+1)
		}
	}
	walk(res.Tree().Children, 0)

	return sb.String()
}

// WriteHTML renders the Markdown form to a standalone HTML page.
func WriteHTML(w io.Writer, res doctree.Result) error {
	var body bytes.Buffer
	if err := goldmark.New().Convert([]byte(Markdown(res)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(res.Title), body.String())
	return err
}

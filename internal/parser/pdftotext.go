package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/net/html"
)

// PdftotextOpener shells out to poppler's pdftotext with -bbox, which emits
// an XHTML document of <page> elements holding positioned <word> elements.
type PdftotextOpener struct {
	Binary string // default "pdftotext"
}

func (o PdftotextOpener) Open(ctx context.Context, path string) (doctree.Document, error) {
	bin := o.Binary
	if bin == "" {
		bin = "pdftotext"
	}
	cmd := exec.CommandContext(ctx, bin, "-bbox", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	pages, err := ParseBBox(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	return NewMemDocument(pages), nil
}

// ParseBBox reads pdftotext -bbox output. Word sizes are the box heights.
func ParseBBox(r io.Reader) ([]doctree.Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bbox html: %w", err)
	}

	var pages []doctree.Page
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				pages = append(pages, doctree.Page{
					Number: len(pages) + 1,
					Height: attrFloat(n, "height"),
				})
			case "word":
				if len(pages) == 0 {
					return
				}
				text := textContent(n)
				if text == "" {
					return
				}
				top, bottom := attrFloat(n, "yMin"), attrFloat(n, "yMax")
				p := &pages[len(pages)-1]
				p.Words = append(p.Words, doctree.Word{
					Text:   text,
					X0:     attrFloat(n, "xMin"),
					Top:    top,
					Bottom: bottom,
					Size:   bottom - top,
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return pages, nil
}

// attrFloat looks up an attribute case-insensitively; the HTML parser
// lowercases attribute names.
func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			f, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

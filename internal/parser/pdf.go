package parser

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/dgallion1/docoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// defaultPageHeight is US Letter, used when a page has no usable MediaBox.
const defaultPageHeight = 792.0

// PDFOpener reads word tokens with github.com/ledongthuc/pdf.
type PDFOpener struct {
	// XTolerance is the largest horizontal gap, in points, between two
	// glyphs of the same word. Default 3.
	XTolerance float64
	// YTolerance is the largest baseline difference, in points, between two
	// glyphs of the same word. Default 3.
	YTolerance float64
}

func (o PDFOpener) Open(_ context.Context, path string) (doc doctree.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	xTol, yTol := o.XTolerance, o.YTolerance
	if xTol <= 0 {
		xTol = 3
	}
	if yTol <= 0 {
		yTol = 3
	}
	return &pdfDocument{file: f, reader: reader, xTol: xTol, yTol: yTol}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdflib.Reader
	xTol   float64
	yTol   float64
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

// Page decodes one page. The PDF library panics on malformed content
// streams; that is reported as an error.
func (d *pdfDocument) Page(n int) (page doctree.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page %d: %v", n, r)
		}
	}()

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return doctree.Page{Number: n, Height: defaultPageHeight}, nil
	}

	height := pageHeight(p)
	words := buildWords(p.Content().Text, height, d.xTol, d.yTol)
	return doctree.Page{Number: n, Height: height, Words: words}, nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

// pageHeight reads the page's MediaBox, inherited from the nearest Pages
// ancestor when the page itself has none.
func pageHeight(p pdflib.Page) float64 {
	box := mediaBox(p.V)
	if box.Kind() != pdflib.Array || box.Len() != 4 {
		return defaultPageHeight
	}
	h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
	if h == 0 {
		return defaultPageHeight
	}
	return h
}

func mediaBox(v pdflib.Value) pdflib.Value {
	for depth := 0; !v.IsNull() && depth < 32; depth++ {
		if box := v.Key("MediaBox"); !box.IsNull() {
			return box
		}
		v = v.Key("Parent")
	}
	return pdflib.Value{}
}

type wordBuilder struct {
	text     strings.Builder
	x0, x1   float64
	baseline float64
	size     float64
}

// buildWords merges glyphs into words. A word ends at whitespace, at a
// baseline or font size change, or when the next glyph is more than xTol
// away from (or left of) the current word. PDF coordinates grow upwards, so
// tops are flipped against the page height.
func buildWords(glyphs []pdflib.Text, height, xTol, yTol float64) []doctree.Word {
	var words []doctree.Word
	var cur *wordBuilder

	flush := func() {
		if cur == nil {
			return
		}
		if text := strings.TrimSpace(cur.text.String()); text != "" {
			words = append(words, doctree.Word{
				Text:   text,
				X0:     cur.x0,
				Top:    height - (cur.baseline + cur.size),
				Bottom: height - cur.baseline,
				Size:   cur.size,
			})
		}
		cur = nil
	}

	for _, g := range glyphs {
		runes := []rune(g.S)
		if len(runes) == 0 {
			continue
		}
		advance := g.W / float64(len(runes))

		for i, r := range runes {
			x := g.X + float64(i)*advance
			if unicode.IsSpace(r) {
				flush()
				continue
			}
			if cur != nil {
				gap := x - cur.x1
				if gap > xTol || x < cur.x0 ||
					math.Abs(g.Y-cur.baseline) > yTol || g.FontSize != cur.size {
					flush()
				}
			}
			if cur == nil {
				cur = &wordBuilder{x0: x, x1: x, baseline: g.Y, size: g.FontSize}
			}
			cur.text.WriteRune(r)
			cur.x1 = x + advance
		}
	}
	flush()

	return words
}

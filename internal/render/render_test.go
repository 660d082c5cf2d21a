package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sample() doctree.Result {
	return doctree.Result{
		Title: "Requirements Specification",
		Outline: []doctree.Entry{
			{Level: doctree.H1, Text: "1 Introduction", Page: 1},
			{Level: doctree.H2, Text: "1.1 Purpose", Page: 1},
			{Level: doctree.H3, Text: "1.1.1 Scope <draft>", Page: 2},
			{Level: doctree.H1, Text: "2 Système", Page: 3},
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatJSON,
		"json":     FormatJSON,
		"YAML":     FormatYAML,
		"yml":      FormatYAML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"html":     FormatHTML,
		" docx ":   FormatDOCX,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".json", FormatJSON.Extension())
	assert.Equal(t, ".yaml", FormatYAML.Extension())
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".html", FormatHTML.Extension())
	assert.Equal(t, ".docx", FormatDOCX.Extension())
}

func TestWriteJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample()))

	out := buf.String()
	assert.Contains(t, out, "\n  \"title\": \"Requirements Specification\"")
	assert.Contains(t, out, "1.1.1 Scope <draft>")
	assert.Contains(t, out, "2 Système")
	assert.JSONEq(t, `{
		"title": "Requirements Specification",
		"outline": [
			{"level": "H1", "text": "1 Introduction", "page": 1},
			{"level": "H2", "text": "1.1 Purpose", "page": 1},
			{"level": "H3", "text": "1.1.1 Scope <draft>", "page": 2},
			{"level": "H1", "text": "2 Système", "page": 3}
		]
	}`, out)
}

func TestWriteJSON_EmptyOutlineIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, doctree.Result{Title: doctree.UnknownTitle}))
	assert.JSONEq(t, `{"title": "Unknown Title", "outline": []}`, buf.String())
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sample()))

	var got doctree.Result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), "level: H2")
}

func TestMarkdown_Nesting(t *testing.T) {
	md := Markdown(sample())
	want := "# Requirements Specification\n\n" +
		"- 1 Introduction (p. 1)\n" +
		"  - 1.1 Purpose (p. 1)\n" +
		"    - 1.1.1 Scope \\<draft\\> (p. 2)\n" +
		"- 2 Système (p. 3)\n"
	assert.Equal(t, want, md)
}

func TestMarkdown_EmptyOutline(t *testing.T) {
	assert.Equal(t, "# Unknown Title\n\n", Markdown(doctree.NewResult()))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, sample()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Requirements Specification</title>")
	assert.Contains(t, out, "<h1>Requirements Specification</h1>")
	assert.Contains(t, out, "<li>1 Introduction (p. 1)")
	assert.Contains(t, out, "&lt;draft&gt;")
	assert.NotContains(t, out, "<draft>")
}

func docxHeadingStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxFirstText(para *docx.Paragraph) string {
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				return t.Text
			}
		}
	}
	return ""
}

func TestWriteDOCX_Styles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatDOCX, sample()))

	doc, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var styles, texts []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		styles = append(styles, docxHeadingStyle(para))
		texts = append(texts, docxFirstText(para))
	}

	assert.Equal(t, []string{"Title", "Heading1", "Heading2", "Heading3", "Heading1"}, styles)
	assert.Equal(t, []string{
		"Requirements Specification",
		"1 Introduction",
		"1.1 Purpose",
		"1.1.1 Scope <draft>",
		"2 Système",
	}, texts)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("pdf"), sample()))
}

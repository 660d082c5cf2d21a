// Package render writes outline results in the supported output formats.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatHTML, FormatDOCX}

// ParseFormat validates a format name. "md" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("unsupported format: %q", s)
}

// Extension is the file extension, with the dot, for files in this format.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatDOCX:
		return ".docx"
	}
	return ".json"
}

// ContentType is the HTTP media type for this format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/json"
}

// Write renders res to w.
func Write(w io.Writer, f Format, res doctree.Result) error {
	if res.Outline == nil {
		res.Outline = []doctree.Entry{}
	}
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(res))
		return err
	case FormatHTML:
		return WriteHTML(w, res)
	case FormatDOCX:
		return WriteDOCX(w, res)
	}
	return fmt.Errorf("unsupported format: %q", f)
}

// WriteJSON writes the canonical form: two-space indent, non-ASCII text
// and markup characters left unescaped.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

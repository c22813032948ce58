// Package export renders a parsed document as JSON, plain text, HTML or
// Markdown.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tsawler/docstruct/model"
)

// Format defines the available export formats
type Format int

const (
	// FormatJSON is the indented JSON model
	FormatJSON Format = iota
	// FormatText is standardised plain text
	FormatText
	// FormatMarkdown is GitHub-flavoured Markdown
	FormatMarkdown
	// FormatHTML is a standalone HTML page
	FormatHTML
)

// String returns the name used in configuration and query strings.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (f Format) FileExtension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// ContentType returns the media type of the rendered output.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat maps a name such as "md" or "markdown" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return FormatJSON, fmt.Errorf("unknown export format %q", name)
	}
}

// Render writes doc to w in the given format.
func Render(doc *model.Document, f Format, w io.Writer) error {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatText:
		_, err := io.WriteString(w, Text(doc))
		return err
	case FormatMarkdown:
		s, err := Markdown(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s)
		return err
	case FormatHTML:
		return WriteHTML(doc, w)
	default:
		return fmt.Errorf("unknown export format %d", f)
	}
}

// RenderToFile writes doc to filename in the given format.
func RenderToFile(doc *model.Document, f Format, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Render(doc, f, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

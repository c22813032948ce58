// Package docstruct provides a fluent API for extracting the structure of
// DOCX files: nested sections, paragraphs, list items, tables with merged
// cells resolved, SmartArt diagrams and references to images and embedded
// objects.
//
// Basic usage:
//
//	doc, err := docstruct.Open("report.docx").Parse()
//	if err != nil {
//	    // handle error
//	}
//	for _, d := range doc.Diagnostics {
//	    log.Println(d)
//	}
//
// With options:
//
//	doc, err := docstruct.Open("report.docx").
//	    SkipTableOfContents(false).
//	    MaxHeadingLevel(3).
//	    WithMediaSink(media.DirStore{Dir: "out"}).
//	    Parse()
//
// Problems that do not prevent a result (an unresolvable image, a table
// without a grid, a cycle in a diagram) are reported in
// Document.Diagnostics. Parse fails only when the package cannot be opened
// or its main document cannot be read; the error is a *ParseError naming
// the stage.
//
// For lower-level access the docx, tables, lists, sections, diagram and
// media packages can be used directly.
package docstruct

import (
	"github.com/tsawler/docstruct/media"
	"github.com/tsawler/docstruct/model"
)

// Extractor provides a fluent interface for configuring a parse. Each
// configuration method returns a new Extractor, so a configured Extractor
// can be reused and shared between goroutines.
type Extractor struct {
	filename string
	name     string
	data     []byte
	options  Options
	sink     media.Sink
}

// Open returns an Extractor for the DOCX file at filename. Nothing is read
// until Parse is called.
//
// Example:
//
//	doc, err := docstruct.Open("document.docx").Parse()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  DefaultOptions(),
	}
}

// FromBytes returns an Extractor for a DOCX package held in memory. The name
// is only used for metadata and error messages.
//
// Example:
//
//	doc, err := docstruct.FromBytes("upload.docx", body).Parse()
func FromBytes(name string, data []byte) *Extractor {
	return &Extractor{
		name:    name,
		data:    data,
		options: DefaultOptions(),
	}
}

// Parse parses the DOCX file at path with default options.
func Parse(path string) (*model.Document, error) {
	return Open(path).Parse()
}

// ParseBytes parses an in-memory DOCX package with default options.
func ParseBytes(data []byte) (*model.Document, error) {
	return FromBytes("", data).Parse()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := docstruct.Must(docstruct.Parse("document.docx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

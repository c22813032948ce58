package docstruct

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/docstruct/docx"
	"github.com/tsawler/docstruct/format"
	"github.com/tsawler/docstruct/media"
	"github.com/tsawler/docstruct/model"
)

// clone creates a copy of the Extractor. The data slice is shared; it is
// never modified.
func (e *Extractor) clone() *Extractor {
	c := *e
	return &c
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// SkipTableOfContents controls whether table-of-contents paragraphs are
// dropped. It is enabled by default.
//
// Example:
//
//	doc, err := docstruct.Open("doc.docx").SkipTableOfContents(false).Parse()
func (e *Extractor) SkipTableOfContents(skip bool) *Extractor {
	c := e.clone()
	c.options.SkipTableOfContents = skip
	return c
}

// TextPatternHeadings controls whether paragraphs starting with a number
// such as "2.1 " are treated as headings when their style is not a heading
// style. It is enabled by default.
func (e *Extractor) TextPatternHeadings(enabled bool) *Extractor {
	c := e.clone()
	c.options.TextPatternHeadings = enabled
	return c
}

// HeaderFooterImages controls whether images in headers and footers are
// collected into Document.HeaderFooterImages. It is enabled by default.
func (e *Extractor) HeaderFooterImages(enabled bool) *Extractor {
	c := e.clone()
	c.options.HeaderFooterImages = enabled
	return c
}

// ImageDimensions controls whether pixel sizes are read from image headers.
// Declared sizes from the drawing markup are always reported.
func (e *Extractor) ImageDimensions(enabled bool) *Extractor {
	c := e.clone()
	c.options.ImageDimensions = enabled
	return c
}

// MaxHeadingLevel caps the level of detected headings. Deeper headings open
// sections at the cap. Zero removes the cap.
//
// Example:
//
//	doc, err := docstruct.Open("doc.docx").MaxHeadingLevel(2).Parse()
func (e *Extractor) MaxHeadingLevel(level int) *Extractor {
	c := e.clone()
	c.options.MaxHeadingLevel = max(level, 0)
	return c
}

// WithOptions replaces all options at once.
func (e *Extractor) WithOptions(opts Options) *Extractor {
	c := e.clone()
	c.options = opts
	return c
}

// WithMediaSink stores the bytes of every referenced image and object
// preview in sink and sets the PreviewRef of each reference to the handle
// the sink returns.
//
// Example:
//
//	doc, err := docstruct.Open("doc.docx").
//	    WithMediaSink(media.DirStore{Dir: "out"}).
//	    Parse()
func (e *Extractor) WithMediaSink(sink media.Sink) *Extractor {
	c := e.clone()
	c.sink = sink
	return c
}

// Options returns the options the Extractor will parse with.
func (e *Extractor) Options() Options {
	return e.options
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Parse opens the package, builds the document model and closes the
// package again. The returned error is always a *ParseError.
func (e *Extractor) Parse() (*model.Document, error) {
	source := e.source()

	pkg, err := e.open()
	if err != nil {
		return nil, &ParseError{Stage: StageOpen, Source: source, Err: err}
	}
	defer pkg.Close()

	a := newAssembler(pkg, e.options, e.sink)
	doc, err := a.run()
	if err != nil {
		return nil, &ParseError{Stage: StageBody, Source: source, Err: err}
	}
	if source != "" {
		doc.Metadata.SourceName = filepath.Base(source)
	}
	return doc, nil
}

func (e *Extractor) source() string {
	if e.data != nil {
		return e.name
	}
	return e.filename
}

// open opens the package and checks that its main part is a word-processing
// document. When opening fails, the content is inspected so a spreadsheet or
// presentation is reported as such.
func (e *Extractor) open() (*docx.Package, error) {
	pkg, err := e.openPackage()
	if err != nil {
		return nil, explainOpenError(e.detect(), err)
	}

	main := pkg.MainPart()
	if f := format.FromContentType(pkg.ContentType(main)); f != format.Unknown && f != format.DOCX {
		pkg.Close()
		return nil, fmt.Errorf("%w: main part %s is %s", ErrNotWordPackage, main, f)
	}
	return pkg, nil
}

func (e *Extractor) openPackage() (*docx.Package, error) {
	if e.data != nil {
		return docx.OpenBytes(e.data)
	}
	if e.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	return docx.OpenFile(e.filename)
}

// detect inspects the source content. Errors yield format.Unknown.
func (e *Extractor) detect() format.Format {
	if e.data != nil {
		f, _ := format.DetectFromReader(bytes.NewReader(e.data), int64(len(e.data)))
		return f
	}

	file, err := os.Open(e.filename)
	if err != nil {
		return format.Unknown
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return format.Unknown
	}
	f, _ := format.DetectFromReader(file, info.Size())
	return f
}

func explainOpenError(f format.Format, err error) error {
	if f == format.Unknown || f == format.DOCX {
		return err
	}
	return fmt.Errorf("%w: content is %s: %w", ErrNotWordPackage, f, err)
}

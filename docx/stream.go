package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/docstruct/diag"
)

// ErrMissingBody is returned when the main document has no <w:body>.
var ErrMissingBody = errors.New("document has no body element")

// Table structure that is only meaningful inside <w:tbl>. Found directly
// in the body it cannot be classified as a block.
var strayTableParts = map[string]bool{
	"tr": true,
	"tc": true,
}

// BlockKind identifies the type of a body-level block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockTable:
		return "table"
	default:
		return "unknown"
	}
}

// Block is one paragraph or table of the document body. Index counts blocks
// yielded so far, starting at 0.
type Block struct {
	Kind      BlockKind
	Index     int
	Paragraph *Paragraph
	Table     *Table
}

// BlockStream reads the body of a main document part and yields its
// paragraphs and tables in document order. Content controls and customXml
// wrappers are transparent; every other body child is skipped.
type BlockStream struct {
	d       *xml.Decoder
	diags   *diag.Collector
	roots   map[string]bool
	started bool
	done    bool
	depth   int
	index   int
	err     error
}

// NewBlockStream creates a stream over the main document XML in r.
// Recoverable problems are recorded on diags.
func NewBlockStream(r io.Reader, diags *diag.Collector) *BlockStream {
	return &BlockStream{
		d:     xml.NewDecoder(r),
		diags: diags,
		roots: map[string]bool{"body": true},
	}
}

// NewStoryStream creates a stream over a header or footer part, whose
// blocks sit directly under <w:hdr> or <w:ftr>.
func NewStoryStream(r io.Reader, diags *diag.Collector) *BlockStream {
	return &BlockStream{
		d:     xml.NewDecoder(r),
		diags: diags,
		roots: map[string]bool{"hdr": true, "ftr": true, "body": true},
	}
}

// Err returns the error that stopped the stream, if any. A malformed main
// document surfaces here as an *xml.SyntaxError or ErrMissingBody.
func (s *BlockStream) Err() error {
	return s.err
}

// Next returns the next block. It returns false at the end of the body or
// when a fatal error occurred; check Err to tell the two apart.
func (s *BlockStream) Next() (Block, bool) {
	if s.done {
		return Block{}, false
	}
	if !s.started {
		if err := s.seekBody(); err != nil {
			s.fail(err)
			return Block{}, false
		}
		s.started = true
	}

	for {
		tok, err := s.d.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			s.fail(fmt.Errorf("reading body: %w", err))
			return Block{}, false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if blockContainers[t.Name.Local] {
				s.depth++
				continue
			}
			switch t.Name.Local {
			case "p":
				p := &Paragraph{}
				if err := s.d.DecodeElement(p, &t); err != nil {
					if s.fatal(err) {
						return Block{}, false
					}
					continue
				}
				return s.emit(Block{Kind: BlockParagraph, Paragraph: p}), true
			case "tbl":
				tbl := &Table{}
				if err := s.d.DecodeElement(tbl, &t); err != nil {
					if s.fatal(err) {
						return Block{}, false
					}
					continue
				}
				return s.emit(Block{Kind: BlockTable, Table: tbl}), true
			default:
				if err := s.d.Skip(); err != nil {
					s.fail(fmt.Errorf("skipping %s: %w", t.Name.Local, err))
					return Block{}, false
				}
				if strayTableParts[t.Name.Local] {
					s.diags.Addf("blocks", "unclassifiable %s outside a table after block %d skipped", t.Name.Local, s.index)
				}
			}
		case xml.EndElement:
			if s.depth == 0 {
				s.done = true
				return Block{}, false
			}
			s.depth--
		}
	}
}

func (s *BlockStream) emit(b Block) Block {
	b.Index = s.index
	s.index++
	return b
}

// seekBody advances to the start of the block container.
func (s *BlockStream) seekBody() error {
	for {
		tok, err := s.d.Token()
		if err == io.EOF {
			return ErrMissingBody
		}
		if err != nil {
			return err
		}
		if t, ok := tok.(xml.StartElement); ok && s.roots[t.Name.Local] {
			return nil
		}
	}
}

// fatal classifies a block decoding error. Syntax errors and truncation end
// the stream; anything else becomes a diagnostic and the block is dropped.
func (s *BlockStream) fatal(err error) bool {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.fail(err)
		return true
	}
	s.diags.Addf("blocks", "block %d skipped: %v", s.index, err)
	return false
}

func (s *BlockStream) fail(err error) {
	s.err = err
	s.done = true
}

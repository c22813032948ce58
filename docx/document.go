package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/docstruct/tables"
)

// Elements that wrap runs inside a paragraph and are descended into.
var runContainers = map[string]bool{
	"hyperlink":  true,
	"ins":        true,
	"smartTag":   true,
	"fldSimple":  true,
	"customXml":  true,
	"sdt":        true,
	"sdtContent": true,
	"moveTo":     true,
	"dir":        true,
	"bdo":        true,
}

// Elements that wrap block-level content (paragraphs, tables, rows, cells).
var blockContainers = map[string]bool{
	"sdt":        true,
	"sdtContent": true,
	"customXml":  true,
}

// decodeChildren reads the children of the element whose start tag has just
// been consumed. Children named in containers are flattened into the same
// callback; every other start element is passed to fn, which must consume it.
func decodeChildren(d *xml.Decoder, containers map[string]bool, fn func(xml.StartElement) error) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if containers[t.Name.Local] {
				if err := decodeChildren(d, containers, fn); err != nil {
					return err
				}
				continue
			}
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// ErrListLevel is returned when a paragraph's numbering level is not a
// level Word can render (0 through 8).
var ErrListLevel = errors.New("list level out of range")

// maxListLevel is the deepest numbering level, 0-based.
const maxListLevel = 8

// Paragraph is a decoded <w:p> element. Runs are kept in document order,
// including runs nested in hyperlinks, insertions, smart tags and fields.
type Paragraph struct {
	props paragraphPropsXML
	Runs  []Run
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style      valXML            `xml:"pStyle"`
	NumPr      numberingPropsXML `xml:"numPr"`
	OutlineLvl valXML            `xml:"outlineLvl"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	XMLName xml.Name
	ILvl    valXML `xml:"ilvl"`
	NumID   valXML `xml:"numId"`
}

func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	err := decodeChildren(d, runContainers, func(t xml.StartElement) error {
		switch t.Name.Local {
		case "pPr":
			return d.DecodeElement(&p.props, &t)
		case "r":
			var r Run
			if err := d.DecodeElement(&r, &t); err != nil {
				return err
			}
			p.Runs = append(p.Runs, r)
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return err
	}

	// The element is fully consumed here, so the caller can drop the
	// paragraph and keep reading.
	if v := p.props.NumPr.ILvl.Val; v != "" {
		if level, err := strconv.Atoi(v); err != nil || level < 0 || level > maxListLevel {
			return fmt.Errorf("numbering level %q: %w", v, ErrListLevel)
		}
	}
	return nil
}

// StyleID returns the paragraph style id, or "" when none is set.
func (p *Paragraph) StyleID() string {
	return p.props.Style.Val
}

// Numbering returns the numbering instance and level of a list paragraph.
// ok is false when the paragraph carries no numbering or numId 0, which
// Word uses to switch numbering off.
func (p *Paragraph) Numbering() (numID string, level int, ok bool) {
	numID = p.props.NumPr.NumID.Val
	if p.props.NumPr.XMLName.Local == "" || numID == "" || numID == "0" {
		return "", 0, false
	}
	level, err := strconv.Atoi(p.props.NumPr.ILvl.Val)
	if err != nil || level < 0 {
		level = 0
	}
	return numID, level, true
}

// OutlineLevel returns the direct outline level (0-based), or -1.
func (p *Paragraph) OutlineLevel() int {
	return parseOutlineLevel(p.props.OutlineLvl.Val)
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for i := range p.Runs {
		sb.WriteString(p.Runs[i].Text())
	}
	return sb.String()
}

// Run is a decoded <w:r> element. Inner holds the run's raw XML so that
// drawings and embedded objects can be located without a second parse of
// the body.
type Run struct {
	props runPropsXML
	Inner []byte
	text  *string
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Bold   boolXML `xml:"b"`
	Italic boolXML `xml:"i"`
}

// boolXML represents a toggle property. Presence means true unless val is
// "false" or "0".
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// set reports whether the element was present.
func (b boolXML) set() bool {
	return b.XMLName.Local != ""
}

func (b boolXML) value() bool {
	return b.Val != "false" && b.Val != "0"
}

func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Props runPropsXML `xml:"rPr"`
		Inner []byte      `xml:",innerxml"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	r.props = raw.Props
	r.Inner = raw.Inner
	return nil
}

// Text returns the run's own text: w:t content, tabs as "\t" and breaks as
// "\n". Text inside drawings and text boxes is not part of the run's text.
func (r *Run) Text() string {
	if r.text != nil {
		return *r.text
	}
	s := runText(r.Inner)
	r.text = &s
	return s
}

// HasEmbeddedContent reports whether the run may hold a drawing, picture or
// embedded object.
func (r *Run) HasEmbeddedContent() bool {
	return bytes.Contains(r.Inner, []byte("drawing")) ||
		bytes.Contains(r.Inner, []byte("pict")) ||
		bytes.Contains(r.Inner, []byte("object"))
}

func runText(inner []byte) string {
	if len(inner) == 0 {
		return ""
	}
	var sb strings.Builder
	d := xml.NewDecoder(bytes.NewReader(inner))
	d.Strict = false
	depth := 0
	inText := false
	for {
		tok, err := d.Token()
		if err != nil {
			if err != io.EOF {
				// Keep what was read before the damage.
				return sb.String()
			}
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 1 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab", "ptab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			case "noBreakHyphen":
				sb.WriteByte('-')
			}
		case xml.EndElement:
			if depth == 1 {
				inText = false
			}
			depth--
		case xml.CharData:
			if inText && depth == 1 {
				sb.Write(t)
			}
		}
	}
	return sb.String()
}

// Table is a decoded <w:tbl> element.
type Table struct {
	GridCols []int
	Rows     []Row
}

// Row is a decoded <w:tr> element. GridBefore counts grid columns skipped
// before the first cell.
type Row struct {
	GridBefore int
	Cells      []Cell
}

// Cell is a decoded <w:tc> element. Paragraphs of nested tables are
// flattened into Paragraphs in reading order.
type Cell struct {
	Span       int
	VMerge     tables.VMerge
	Paragraphs []Paragraph
	Nested     int
}

type rowPropsXML struct {
	GridBefore valXML `xml:"gridBefore"`
}

type cellPropsXML struct {
	GridSpan valXML    `xml:"gridSpan"`
	VMerge   vMergeXML `xml:"vMerge"`
}

// vMergeXML represents vertical merge.
type vMergeXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"` // "restart", "continue" or empty (continue)
}

type gridColXML struct {
	W string `xml:"w,attr"`
}

func (t *Table) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return decodeChildren(d, blockContainers, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "tblGrid":
			return decodeChildren(d, nil, func(col xml.StartElement) error {
				if col.Name.Local != "gridCol" {
					return d.Skip()
				}
				var g gridColXML
				if err := d.DecodeElement(&g, &col); err != nil {
					return err
				}
				w, _ := strconv.Atoi(g.W)
				t.GridCols = append(t.GridCols, w)
				return nil
			})
		case "tr":
			var r Row
			if err := d.DecodeElement(&r, &el); err != nil {
				return err
			}
			t.Rows = append(t.Rows, r)
			return nil
		default:
			return d.Skip()
		}
	})
}

func (r *Row) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return decodeChildren(d, blockContainers, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "trPr":
			var props rowPropsXML
			if err := d.DecodeElement(&props, &el); err != nil {
				return err
			}
			r.GridBefore, _ = strconv.Atoi(props.GridBefore.Val)
			return nil
		case "tc":
			var c Cell
			if err := d.DecodeElement(&c, &el); err != nil {
				return err
			}
			r.Cells = append(r.Cells, c)
			return nil
		default:
			return d.Skip()
		}
	})
}

func (c *Cell) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.Span = 1
	return decodeChildren(d, blockContainers, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "tcPr":
			var props cellPropsXML
			if err := d.DecodeElement(&props, &el); err != nil {
				return err
			}
			if n, err := strconv.Atoi(props.GridSpan.Val); err == nil && n > 1 {
				c.Span = n
			}
			c.VMerge = vMergeMark(props.VMerge)
			return nil
		case "p":
			var p Paragraph
			if err := d.DecodeElement(&p, &el); err != nil {
				if !errors.Is(err, ErrListLevel) {
					return err
				}
				// Cell paragraphs keep their text without numbering.
				p.props.NumPr = numberingPropsXML{}
			}
			c.Paragraphs = append(c.Paragraphs, p)
			return nil
		case "tbl":
			var nested Table
			if err := d.DecodeElement(&nested, &el); err != nil {
				return err
			}
			c.Nested++
			for _, row := range nested.Rows {
				for _, cell := range row.Cells {
					c.Paragraphs = append(c.Paragraphs, cell.Paragraphs...)
				}
			}
			return nil
		default:
			return d.Skip()
		}
	})
}

func vMergeMark(v vMergeXML) tables.VMerge {
	if v.XMLName.Local == "" {
		return tables.None
	}
	if v.Val == "restart" {
		return tables.Start
	}
	return tables.Continue
}

// Columns returns the number of grid columns declared by <w:tblGrid>.
func (t *Table) Columns() int {
	return len(t.GridCols)
}

// MergeGrid describes the table's cell layout for merge resolution.
func (t *Table) MergeGrid() tables.Grid {
	g := tables.Grid{
		Columns: len(t.GridCols),
		Rows:    make([]tables.Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]tables.Cell, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = tables.Cell{Span: c.Span, VMerge: c.VMerge}
		}
		g.Rows[i] = tables.Row{Before: row.GridBefore, Cells: cells}
	}
	return g
}

// parseOutlineLevel parses an outline level string to an integer.
// Level 9 means body text and is reported as -1.
func parseOutlineLevel(s string) int {
	if s == "" {
		return -1
	}
	level, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || level < 0 || level > 8 {
		return -1
	}
	return level
}

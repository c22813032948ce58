// Package docxtest builds small DOCX packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Default Extension="bin" ContentType="application/vnd.openxmlformats-officedocument.oleObject"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	PackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	// Numbering defines numId 1 as a decimal list and numId 2 as a bullet
	// list.
	Numbering = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:abstractNum w:abstractNumId="0">
    <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl>
    <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1.%2."/></w:lvl>
  </w:abstractNum>
  <w:abstractNum w:abstractNumId="1">
    <w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="-"/></w:lvl>
  </w:abstractNum>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
  <w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>
</w:numbering>`

	RelTypeImage   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeHeader  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RelTypeOLE     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject"
	RelTypeDiagram = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData"
	RelTypeLayout  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramLayout"
)

// PNG returns an encoded w x h PNG image.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Rel is one relationship of a part.
type Rel struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Builder collects the parts of a package.
type Builder struct {
	parts map[string][]byte
	rels  map[string][]Rel
}

// New returns a builder holding content types, package relationships and
// an empty body.
func New() *Builder {
	b := &Builder{
		parts: make(map[string][]byte),
		rels:  make(map[string][]Rel),
	}
	b.Part("[Content_Types].xml", ContentTypes)
	b.Part("_rels/.rels", PackageRels)
	b.Body("")
	return b
}

// Body replaces word/document.xml with body wrapped in a document element.
func (b *Builder) Body(body string) *Builder {
	return b.Part("word/document.xml", Document(body))
}

// Part sets a part's content. An empty content removes the part.
func (b *Builder) Part(name, content string) *Builder {
	return b.Binary(name, []byte(content))
}

// Binary sets a part's content from bytes.
func (b *Builder) Binary(name string, data []byte) *Builder {
	if len(data) == 0 {
		delete(b.parts, name)
		return b
	}
	b.parts[name] = data
	return b
}

// Rel adds a relationship from the part named from.
func (b *Builder) Rel(from string, r Rel) *Builder {
	b.rels[from] = append(b.rels[from], r)
	return b
}

// Bytes zips the package. Parts are written in name order.
func (b *Builder) Bytes() ([]byte, error) {
	parts := make(map[string][]byte, len(b.parts)+len(b.rels))
	for name, data := range b.parts {
		parts[name] = data
	}
	for from, rels := range b.rels {
		parts[relsName(from)] = []byte(relationships(rels))
	}

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := w.Write(parts[name]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the package to dir/name and returns the path.
func (b *Builder) WriteFile(dir, name string) (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	file := filepath.Join(dir, name)
	return file, os.WriteFile(file, data, 0o644)
}

func relsName(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

func relationships(rels []Rel) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		mode := ""
		if r.External {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`, r.ID, r.Type, r.Target, mode)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

const namespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
  xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"
  xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram"
  xmlns:v="urn:schemas-microsoft-com:vml"
  xmlns:o="urn:schemas-microsoft-com:office:office"`

// Document wraps body content in a w:document element.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + namespaces + `>
  <w:body>` + body + `</w:body>
</w:document>`
}

// Header wraps blocks in a w:hdr element.
func Header(blocks string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr ` + namespaces + `>` + blocks + `</w:hdr>`
}

// Paragraph returns a plain paragraph.
func Paragraph(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// Styled returns a paragraph with a paragraph style.
func Styled(style, text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="` + style + `"/></w:pPr><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// Heading returns a paragraph with the built-in HeadingN style.
func Heading(level int, text string) string {
	return Styled(fmt.Sprintf("Heading%d", level), text)
}

// Bold returns a paragraph whose only run is bold.
func Bold(text string) string {
	return `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>` + text + `</w:t></w:r></w:p>`
}

// ListItem returns a numbered paragraph.
func ListItem(numID string, level int, text string) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%s"/></w:numPr></w:pPr><w:r><w:t>%s</w:t></w:r></w:p>`, level, numID, text)
}

// Image returns a paragraph holding an inline picture of the given size in
// pixels that references relID.
func Image(relID string, width, height int) string {
	return fmt.Sprintf(`<w:p><w:r><w:drawing><wp:inline><wp:extent cx="%d" cy="%d"/><wp:docPr id="1" name="Picture 1" descr="alt text"/><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="%s"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		width*9525, height*9525, relID)
}

// SmartArt returns a paragraph holding a diagram reference.
func SmartArt(dataRelID, layoutRelID string) string {
	return fmt.Sprintf(`<w:p><w:r><w:drawing><wp:inline><wp:extent cx="952500" cy="952500"/><wp:docPr id="2" name="Diagram 1"/><a:graphic><a:graphicData><dgm:relIds r:dm="%s" r:lo="%s"/></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		dataRelID, layoutRelID)
}

// Cell is one table cell.
type Cell struct {
	Text   string
	Span   int
	VMerge string // "restart", "continue" or empty
}

// Table returns a table with the given grid column count and rows.
func Table(columns int, rows ...[]Cell) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblGrid>`)
	for range columns {
		sb.WriteString(`<w:gridCol w:w="2000"/>`)
	}
	sb.WriteString(`</w:tblGrid>`)
	for _, row := range rows {
		sb.WriteString(`<w:tr>`)
		for _, c := range row {
			sb.WriteString(`<w:tc><w:tcPr>`)
			if c.Span > 1 {
				fmt.Fprintf(&sb, `<w:gridSpan w:val="%d"/>`, c.Span)
			}
			switch c.VMerge {
			case "restart":
				sb.WriteString(`<w:vMerge w:val="restart"/>`)
			case "continue":
				sb.WriteString(`<w:vMerge/>`)
			}
			sb.WriteString(`</w:tcPr>`)
			sb.WriteString(Paragraph(c.Text))
			sb.WriteString(`</w:tc>`)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

// DiagramData is a SmartArt data model with a document point, two top
// level nodes and one child of the first.
const DiagramData = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <dgm:ptLst>
    <dgm:pt modelId="0" type="doc"/>
    <dgm:pt modelId="1"><dgm:t><a:p><a:r><a:t>Plan</a:t></a:r></a:p></dgm:t></dgm:pt>
    <dgm:pt modelId="2"><dgm:t><a:p><a:r><a:t>Build</a:t></a:r></a:p></dgm:t></dgm:pt>
    <dgm:pt modelId="3"><dgm:t><a:p><a:r><a:t>Scope</a:t></a:r></a:p></dgm:t></dgm:pt>
  </dgm:ptLst>
  <dgm:cxnLst>
    <dgm:cxn modelId="10" srcId="0" destId="1" srcOrd="0" destOrd="0"/>
    <dgm:cxn modelId="11" srcId="0" destId="2" srcOrd="1" destOrd="0"/>
    <dgm:cxn modelId="12" srcId="1" destId="3" srcOrd="0" destOrd="0"/>
  </dgm:cxnLst>
</dgm:dataModel>`

// DiagramLayout is a layout definition of the process family.
const DiagramLayout = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<dgm:layoutDef xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" uniqueId="urn:microsoft.com/office/officeart/2005/8/layout/process1"><dgm:title val=""/></dgm:layoutDef>`

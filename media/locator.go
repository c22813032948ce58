// Package media locates images, embedded objects and diagrams referenced
// from a run of a word-processing document, and describes them without
// reading or converting their pixel data.
package media

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tsawler/docstruct/diag"
	"github.com/tsawler/docstruct/docx"
	"github.com/tsawler/docstruct/model"
)

// emuPerPixel converts DrawingML extents to pixels at 96 dpi.
const emuPerPixel = 9525

// PartSource gives read access to package parts. *docx.Package satisfies it.
type PartSource interface {
	OpenPart(name string) (io.ReadCloser, error)
	PartSize(name string) (int64, bool)
	ContentType(name string) string
}

// Relations resolves the relationship ids of the part being scanned.
// *docx.Relationships satisfies it.
type Relations interface {
	Lookup(id string) (docx.Relationship, bool)
}

// DiagramRef points at the data and layout parts of a SmartArt diagram.
type DiagramRef struct {
	ID            string
	DataRelID     string
	LayoutRelID   string
	DataPart      string
	LayoutPart    string
	SourceContext string
}

// Found holds the references located in one fragment, in document order.
type Found struct {
	Images   []*model.ImageRef
	Objects  []*model.EmbeddedObjectRef
	Diagrams []DiagramRef
}

// Empty reports whether nothing was found.
func (f Found) Empty() bool {
	return len(f.Images) == 0 && len(f.Objects) == 0 && len(f.Diagrams) == 0
}

// Locator resolves references found in run fragments of one part.
type Locator struct {
	src   PartSource
	rels  Relations
	diags *diag.Collector

	// DecodeDimensions reads pixel sizes from image headers.
	DecodeDimensions bool

	seq int
}

// NewLocator returns a locator for fragments of the part whose relationship
// table is rels.
func NewLocator(src PartSource, rels Relations, diags *diag.Collector) *Locator {
	return &Locator{src: src, rels: rels, diags: diags, DecodeDimensions: true}
}

// drawing is the state of the enclosing w:drawing or VML shape.
type drawing struct {
	cx, cy int64
	name   string
	descr  string
	style  string
}

// pendingObject collects the parts of a w:object until it closes.
type pendingObject struct {
	style   string
	preview string
	ole     []xml.StartElement
}

// Locate scans a run's inner XML for image, object and diagram references.
// Unresolvable references are reported as diagnostics and omitted.
func (l *Locator) Locate(fragment []byte, context string) Found {
	var found Found
	if len(fragment) == 0 {
		return found
	}

	d := xml.NewDecoder(bytes.NewReader(fragment))
	d.Strict = false

	var (
		cur      drawing
		obj      *pendingObject
		fallback int
	)
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if fallback > 0 {
				fallback++
				continue
			}
			switch t.Name.Local {
			case "Fallback":
				// Alternate content repeats the choice for older readers.
				fallback = 1
			case "drawing":
				cur = drawing{}
			case "extent":
				cur.cx = attrInt(t, "cx")
				cur.cy = attrInt(t, "cy")
			case "docPr":
				cur.name = attr(t, "name")
				cur.descr = attr(t, "descr")
			case "blip":
				if id := relAttr(t, "embed"); id != "" {
					l.image(&found, id, cur, context)
				} else if id := relAttr(t, "link"); id != "" {
					l.image(&found, id, cur, context)
				}
			case "relIds":
				l.diagram(&found, relAttr(t, "dm"), relAttr(t, "lo"), context)
			case "object":
				obj = &pendingObject{}
			case "shape":
				if obj != nil {
					obj.style = attr(t, "style")
				} else {
					cur = drawing{style: attr(t, "style"), descr: attr(t, "alt")}
				}
			case "imagedata":
				id := relAttr(t, "id")
				switch {
				case obj != nil:
					obj.preview = id
				case id != "":
					if cur.descr == "" {
						cur.descr = attr(t, "title")
					}
					l.image(&found, id, cur, context)
				}
			case "OLEObject":
				if obj != nil {
					obj.ole = append(obj.ole, t.Copy())
				} else {
					l.object(&found, t, pendingObject{}, context)
				}
			}

		case xml.EndElement:
			if fallback > 0 {
				fallback--
				continue
			}
			if t.Name.Local == "object" && obj != nil {
				for _, ole := range obj.ole {
					l.object(&found, ole, *obj, context)
				}
				obj = nil
			}
		}
	}
	return found
}

func (l *Locator) image(found *Found, relID string, cur drawing, context string) {
	rel, ok := l.rels.Lookup(relID)
	if !ok {
		l.diags.Addf("media", "%s: image relationship %q not found", context, relID)
		return
	}

	img := &model.ImageRef{
		RelID:         relID,
		Name:          cur.name,
		AltText:       cur.descr,
		SourceContext: context,
	}
	if cur.cx > 0 && cur.cy > 0 {
		img.DeclaredWidth = emuToPixels(cur.cx)
		img.DeclaredHeight = emuToPixels(cur.cy)
	} else if w, h := styleSize(cur.style); w != "" && h != "" {
		img.DeclaredWidth = cssPixels(w)
		img.DeclaredHeight = cssPixels(h)
	}

	if rel.External {
		img.External = true
		img.Target = rel.Target
		img.Format = FormatFromName(rel.Target)
		if img.Format == "" {
			img.Format = FormatUnknown
		}
		img.ID = l.id("img", rel.Target, context)
		found.Images = append(found.Images, img)
		return
	}

	size, ok := l.src.PartSize(rel.Part)
	if !ok {
		l.diags.Addf("media", "%s: image part %q for %q is missing", context, rel.Part, relID)
		return
	}
	img.Target = rel.Part
	img.Size = size
	img.ContentType = l.src.ContentType(rel.Part)
	img.Format = l.format(rel.Part, img.ContentType, &img.ContentType)
	img.ID = l.id("img", rel.Part, context)

	if l.DecodeDimensions && Decodable(img.Format) {
		img.PixelWidth, img.PixelHeight = l.dimensions(rel.Part, context)
	}
	found.Images = append(found.Images, img)
}

func (l *Locator) object(found *Found, ole xml.StartElement, obj pendingObject, context string) {
	progID := attr(ole, "ProgID")
	o := &model.EmbeddedObjectRef{
		ProgID:        progID,
		OLEType:       attr(ole, "Type"),
		SourceContext: context,
	}
	o.ObjectKind, o.Description = ClassifyProgID(progID)
	o.Width, o.Height = styleSize(obj.style)

	key := progID
	if id := relAttr(ole, "id"); id != "" {
		rel, ok := l.rels.Lookup(id)
		if !ok {
			l.diags.Addf("media", "%s: object relationship %q not found", context, id)
			return
		}
		o.RelID = id
		if rel.External {
			o.Target = rel.Target
		} else {
			o.Target = rel.Part
			o.ContentType = l.src.ContentType(rel.Part)
			if size, ok := l.src.PartSize(rel.Part); ok {
				o.Size = size
			} else {
				l.diags.Addf("media", "%s: object part %q is missing", context, rel.Part)
			}
		}
		key = o.Target
	}

	if obj.preview != "" {
		if rel, ok := l.rels.Lookup(obj.preview); ok && !rel.External {
			o.PreviewRelID = obj.preview
			o.PreviewTarget = rel.Part
			o.PreviewFormat = l.format(rel.Part, l.src.ContentType(rel.Part), nil)
		} else {
			l.diags.Addf("media", "%s: preview relationship %q not found", context, obj.preview)
		}
	}

	o.ID = l.id("obj", key, context)
	found.Objects = append(found.Objects, o)
}

func (l *Locator) diagram(found *Found, dataID, layoutID, context string) {
	if dataID == "" {
		l.diags.Addf("media", "%s: diagram without a data relationship", context)
		return
	}
	rel, ok := l.rels.Lookup(dataID)
	if !ok || rel.External {
		l.diags.Addf("media", "%s: diagram data relationship %q not found", context, dataID)
		return
	}

	ref := DiagramRef{
		DataRelID:     dataID,
		DataPart:      rel.Part,
		SourceContext: context,
	}
	if layoutID != "" {
		if lo, ok := l.rels.Lookup(layoutID); ok && !lo.External {
			ref.LayoutRelID = layoutID
			ref.LayoutPart = lo.Part
		} else {
			l.diags.Addf("media", "%s: diagram layout relationship %q not found", context, layoutID)
		}
	}
	ref.ID = l.id("dgm", rel.Part, context)
	found.Diagrams = append(found.Diagrams, ref)
}

// format determines a part's format from its content type, then its name,
// then its leading bytes. A sniffed MIME type is stored in *ct when it was
// empty.
func (l *Locator) format(part, contentType string, ct *string) string {
	if f := FormatFromContentType(contentType); f != "" {
		return f
	}
	if f := FormatFromName(part); f != "" {
		return f
	}

	rc, err := l.src.OpenPart(part)
	if err != nil {
		return FormatUnknown
	}
	defer rc.Close()

	f, sniffed, err := Sniff(rc)
	if err != nil {
		return FormatUnknown
	}
	if ct != nil && *ct == "" {
		*ct = sniffed
	}
	if f == "" {
		return FormatUnknown
	}
	return f
}

func (l *Locator) dimensions(part, context string) (int, int) {
	rc, err := l.src.OpenPart(part)
	if err != nil {
		return 0, 0
	}
	defer rc.Close()

	w, h, err := Dimensions(rc)
	if err != nil {
		l.diags.Addf("media", "%s: reading dimensions of %q: %v", context, part, err)
		return 0, 0
	}
	return w, h
}

// id derives a stable identifier from the referenced target, the source
// context and the reference's position within this locator.
func (l *Locator) id(prefix, target, context string) string {
	l.seq++
	name := fmt.Sprintf("%s|%s|%d", target, context, l.seq)
	u := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
	return prefix + "_" + strings.ReplaceAll(u.String(), "-", "")[:8]
}

// ClassifyProgID maps an OLE program id to an object kind and description.
func ClassifyProgID(progID string) (kind, description string) {
	switch {
	case strings.Contains(progID, "Visio"):
		return "visio_diagram", "Visio drawing"
	case strings.Contains(progID, "Excel"):
		return "excel_spreadsheet", "Excel spreadsheet"
	case strings.Contains(progID, "PowerPoint"):
		return "powerpoint_presentation", "PowerPoint presentation"
	case strings.Contains(progID, "Word"):
		return "word_document", "Word document"
	default:
		return "unknown", progID
	}
}

func emuToPixels(emu int64) int {
	return int(math.Round(float64(emu) / emuPerPixel))
}

var (
	styleWidth  = regexp.MustCompile(`(?:^|;)\s*width\s*:\s*([^;]+)`)
	styleHeight = regexp.MustCompile(`(?:^|;)\s*height\s*:\s*([^;]+)`)
	cssLength   = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*(pt|px|in|cm|mm|pc)?$`)
)

// styleSize returns the width and height declared in a VML style attribute.
func styleSize(style string) (width, height string) {
	if m := styleWidth.FindStringSubmatch(style); m != nil {
		width = strings.TrimSpace(m[1])
	}
	if m := styleHeight.FindStringSubmatch(style); m != nil {
		height = strings.TrimSpace(m[1])
	}
	return width, height
}

// cssPixels converts a CSS length to pixels at 96 dpi. Unitless values are
// pixels; unparsable values are 0.
func cssPixels(s string) int {
	m := cssLength.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "pt":
		v = v * 96 / 72
	case "pc":
		v = v * 16
	case "in":
		v *= 96
	case "cm":
		v = v * 96 / 2.54
	case "mm":
		v = v * 96 / 25.4
	}
	return int(math.Round(v))
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && (a.Name.Space == "" || a.Name.Space == se.Name.Space) {
			return a.Value
		}
	}
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// relAttr returns a relationship attribute such as r:embed. Fragments are
// scanned without namespace declarations, so the prefix is matched as well
// as the namespace URI.
func relAttr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local != local {
			continue
		}
		if a.Name.Space == "r" || strings.HasSuffix(a.Name.Space, "/relationships") {
			return a.Value
		}
	}
	return ""
}

func attrInt(se xml.StartElement, local string) int64 {
	n, err := strconv.ParseInt(attr(se, local), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

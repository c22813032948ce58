package diagram

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// dataModelXML mirrors dgm:dataModel. Element names match by local name.
type dataModelXML struct {
	Points      []pointXML      `xml:"ptLst>pt"`
	Connections []connectionXML `xml:"cxnLst>cxn"`
}

type pointXML struct {
	ID   string
	Type string
	Text string
}

// UnmarshalXML reads a point's attributes and joins the non-empty text runs
// of its text body.
func (p *pointXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "modelId":
			p.ID = attr.Value
		case "type":
			p.Type = attr.Value
		}
	}

	var parts []string
	var names []string
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			names = append(names, t.Name.Local)
		case xml.EndElement:
			if len(names) == 0 {
				p.Text = strings.Join(parts, " ")
				return nil
			}
			names = names[:len(names)-1]
		case xml.CharData:
			if len(names) > 0 && names[len(names)-1] == "t" {
				if s := strings.TrimSpace(string(t)); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}
}

type connectionXML struct {
	ModelID string `xml:"modelId,attr"`
	Type    string `xml:"type,attr"`
	SrcID   string `xml:"srcId,attr"`
	DestID  string `xml:"destId,attr"`
	SrcOrd  string `xml:"srcOrd,attr"`
	DestOrd string `xml:"destOrd,attr"`
}

// ParseDataModel reads a diagram data part into points and connections.
// Points without a type are nodes and connections without a type are
// parent links, as the schema defaults them.
func ParseDataModel(data []byte) ([]Point, []Connection, error) {
	var dm dataModelXML
	if err := xml.Unmarshal(data, &dm); err != nil {
		return nil, nil, fmt.Errorf("parsing diagram data: %w", err)
	}

	points := make([]Point, 0, len(dm.Points))
	for _, p := range dm.Points {
		typ := p.Type
		if typ == "" {
			typ = PointNode
		}
		points = append(points, Point{ID: p.ID, Type: typ, Text: p.Text})
	}

	cxns := make([]Connection, 0, len(dm.Connections))
	for _, c := range dm.Connections {
		typ := c.Type
		if typ == "" {
			typ = ConnectionParent
		}
		cxns = append(cxns, Connection{
			ID:      c.ModelID,
			Type:    typ,
			SrcID:   c.SrcID,
			DestID:  c.DestID,
			SrcOrd:  atoi(c.SrcOrd),
			DestOrd: atoi(c.DestOrd),
		})
	}
	return points, cxns, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Layout kinds returned by ClassifyLayout.
const (
	LayoutList         = "list"
	LayoutProcess      = "process"
	LayoutCycle        = "cycle"
	LayoutHierarchy    = "hierarchy"
	LayoutRelationship = "relationship"
	LayoutPyramid      = "pyramid"
	LayoutUnknown      = "unknown"
)

// namespaceURI matches URIs whose host names ("openxmlformats.org") would
// otherwise match layout keywords.
var namespaceURI = regexp.MustCompile(`https?://[^"'\s<>]*`)

// layoutPatterns is checked in order; the first kind with a matching
// keyword wins.
var layoutPatterns = []struct {
	kind     string
	keywords []string
}{
	{LayoutList, []string{"list", "bullet", "sequence"}},
	{LayoutProcess, []string{"process", "flow", "step"}},
	{LayoutCycle, []string{"cycle", "circular"}},
	{LayoutHierarchy, []string{"hierarchy", "org", "tree"}},
	{LayoutRelationship, []string{"relationship", "venn", "matrix"}},
	{LayoutPyramid, []string{"pyramid", "funnel"}},
}

// ClassifyLayout names the kind of diagram a layout definition part
// describes. It looks at the layout's uniqueId first, then its title, then
// the whole part without namespace URIs, and returns LayoutUnknown when nothing matches.
func ClassifyLayout(data []byte) string {
	if len(data) == 0 {
		return LayoutUnknown
	}

	uniqueID, title := layoutIdentity(data)
	body := namespaceURI.ReplaceAllString(string(data), "")
	for _, s := range []string{uniqueID, title, body} {
		if kind := matchLayout(s); kind != "" {
			return kind
		}
	}
	return LayoutUnknown
}

func matchLayout(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	for _, p := range layoutPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(s, kw) {
				return p.kind
			}
		}
	}
	return ""
}

// layoutIdentity returns the uniqueId attribute of the root element and the
// val of its first title child.
func layoutIdentity(data []byte) (uniqueID, title string) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return uniqueID, title
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				uniqueID = attr(t, "uniqueId")
			case depth == 2 && t.Name.Local == "title" && title == "":
				title = attr(t, "val")
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				return uniqueID, title
			}
		}
	}
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/docstruct/model"
)

// HTML renders the document as a standalone HTML page.
func HTML(doc *model.Document) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(doc, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML builds the page as a node tree and renders it to w.
func WriteHTML(doc *model.Document, w io.Writer) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	page := element("html")
	root.AppendChild(page)

	head := element("head")
	page.AppendChild(head)
	head.AppendChild(element("meta", "charset", "utf-8"))
	title := element("title")
	title.AppendChild(text(documentTitle(doc)))
	head.AppendChild(title)

	page.AppendChild(bodyNode(doc))

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}

func bodyNode(doc *model.Document) *html.Node {
	body := element("body")
	if doc != nil && doc.Root != nil {
		appendNodes(body, doc.Root.Content)
	}
	return body
}

func documentTitle(doc *model.Document) string {
	switch {
	case doc == nil:
		return ""
	case doc.Metadata.Title != "":
		return doc.Metadata.Title
	default:
		return doc.Metadata.SourceName
	}
}

// element creates an element node. attrs alternate between keys and values.
func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendNodes(parent *html.Node, nodes []model.Node) {
	var lists listStack
	for _, n := range nodes {
		li, isItem := n.(*model.ListItem)
		if !isItem {
			lists.reset()
		}

		switch v := n.(type) {
		case *model.Section:
			sec := element("section", "data-level", strconv.Itoa(v.Level))
			heading := element(headingTag(v.Level))
			heading.AppendChild(text(sectionTitle(v)))
			sec.AppendChild(heading)
			appendNodes(sec, v.Content)
			parent.AppendChild(sec)
		case *model.Paragraph:
			parent.AppendChild(paragraph(v))
		case *model.ListItem:
			lists.add(parent, li)
		case *model.Table:
			parent.AppendChild(table(v))
		case *model.Diagram:
			parent.AppendChild(diagram(v))
		case *model.ImageRef:
			parent.AppendChild(image(v))
		case *model.EmbeddedObjectRef:
			p := element("p", "class", "object", "data-id", v.ID, "data-prog-id", v.ProgID)
			p.AppendChild(text(objectPlaceholder(v)))
			parent.AppendChild(p)
		}
	}
}

func headingTag(level int) string {
	return "h" + strconv.Itoa(min(max(level, 1), 6))
}

func paragraph(p *model.Paragraph) *html.Node {
	node := element("p")
	inner := node
	if p.Bold {
		b := element("strong")
		inner.AppendChild(b)
		inner = b
	}
	if p.Italic {
		i := element("em")
		inner.AppendChild(i)
		inner = i
	}
	inner.AppendChild(text(p.Text))
	return node
}

// listStack nests consecutive list items into ul/ol elements by level.
type listStack struct {
	lists []*html.Node
}

func (s *listStack) reset() {
	s.lists = s.lists[:0]
}

func (s *listStack) add(parent *html.Node, item *model.ListItem) {
	depth := item.Level + 1
	for len(s.lists) > depth {
		s.lists = s.lists[:len(s.lists)-1]
	}
	for len(s.lists) < depth {
		tag := "ol"
		if item.IsBullet {
			tag = "ul"
		}
		list := element(tag)
		if len(s.lists) == 0 {
			parent.AppendChild(list)
		} else {
			outer := s.lists[len(s.lists)-1]
			if outer.LastChild == nil {
				outer.AppendChild(element("li"))
			}
			outer.LastChild.AppendChild(list)
		}
		s.lists = append(s.lists, list)
	}

	li := element("li")
	li.AppendChild(text(item.Text))
	s.lists[len(s.lists)-1].AppendChild(li)
}

// table renders the first row as a header row, which Markdown tables need.
func table(t *model.Table) *html.Node {
	node := element("table", "data-index", strconv.Itoa(t.Index))
	var section *html.Node
	for r, row := range t.Rows {
		cellTag := "td"
		switch r {
		case 0:
			section = element("thead")
			node.AppendChild(section)
			cellTag = "th"
		case 1:
			section = element("tbody")
			node.AppendChild(section)
		}

		tr := element("tr")
		for _, c := range row {
			var attrs []string
			if c.RowSpan > 1 {
				attrs = append(attrs, "rowspan", strconv.Itoa(c.RowSpan))
			}
			if c.ColSpan > 1 {
				attrs = append(attrs, "colspan", strconv.Itoa(c.ColSpan))
			}
			cell := element(cellTag, attrs...)
			for i, n := range c.Content {
				if i > 0 {
					cell.AppendChild(element("br"))
				}
				switch v := n.(type) {
				case *model.Paragraph:
					cell.AppendChild(text(v.Text))
				case *model.ImageRef:
					cell.AppendChild(image(v))
				}
			}
			tr.AppendChild(cell)
		}
		section.AppendChild(tr)
	}
	return node
}

func diagram(d *model.Diagram) *html.Node {
	fig := element("figure", "class", "diagram", "data-id", d.ID, "data-layout", d.Layout)
	var lists listStack
	for _, it := range d.Items {
		lists.add(fig, &model.ListItem{Text: it.Text, Level: max(it.Level-1, 0), IsBullet: true})
	}
	return fig
}

func image(img *model.ImageRef) *html.Node {
	src := img.PreviewRef
	if src == "" {
		src = img.Target
	}
	alt := img.AltText
	if alt == "" {
		alt = img.Name
	}
	attrs := []string{"src", src, "alt", alt, "data-id", img.ID}
	if img.DeclaredWidth > 0 && img.DeclaredHeight > 0 {
		attrs = append(attrs,
			"width", strconv.Itoa(img.DeclaredWidth),
			"height", strconv.Itoa(img.DeclaredHeight))
	}
	return element("img", attrs...)
}

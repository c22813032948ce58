package model

import "time"

// RootTitle is the title of the implicit level-0 section.
const RootTitle = "root"

// Document represents a parsed word-processing document.
type Document struct {
	Metadata           Metadata     `json:"metadata"`
	Root               *Section     `json:"root"`
	HeaderFooterImages []*ImageRef  `json:"header_footer_images,omitempty"`
	Stats              Stats        `json:"stats"`
	Diagnostics        []Diagnostic `json:"diagnostics"`
}

// Metadata contains document-level information
type Metadata struct {
	SourceName     string    `json:"source_name,omitempty"`
	Title          string    `json:"title,omitempty"`
	Author         string    `json:"author,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Keywords       string    `json:"keywords,omitempty"`
	Category       string    `json:"category,omitempty"`
	Description    string    `json:"description,omitempty"`
	LastModifiedBy string    `json:"last_modified_by,omitempty"`
	Revision       string    `json:"revision,omitempty"`
	Application    string    `json:"application,omitempty"`
	Company        string    `json:"company,omitempty"`
	Created        time.Time `json:"created,omitzero"`
	Modified       time.Time `json:"modified,omitzero"`
	ByteSize       int64     `json:"byte_size"`
}

// Stats counts what the assembler processed.
type Stats struct {
	Blocks   int `json:"blocks"`
	Tables   int `json:"tables"`
	Images   int `json:"images"`
	Objects  int `json:"objects"`
	Diagrams int `json:"diagrams"`
}

// Diagnostic is a non-fatal problem encountered while parsing.
type Diagnostic struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

func (d Diagnostic) String() string {
	return d.Component + ": " + d.Message
}

// NewDocument creates an empty document with a root section.
func NewDocument() *Document {
	return &Document{
		Root:        NewSection(RootTitle, "", 0),
		Diagnostics: make([]Diagnostic, 0),
	}
}

// Walk visits every node of the tree in document order, descending into
// sections and table cells. Returning false from fn stops the walk.
func (d *Document) Walk(fn func(Node) bool) {
	if d == nil || d.Root == nil {
		return
	}
	walkNodes(d.Root.Content, fn)
}

func walkNodes(nodes []Node, fn func(Node) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		switch n := n.(type) {
		case *Section:
			if !walkNodes(n.Content, fn) {
				return false
			}
		case *Table:
			for _, row := range n.Rows {
				for _, cell := range row {
					if !walkNodes(cell.Content, fn) {
						return false
					}
				}
			}
		}
	}
	return true
}

// Sections returns every section below the root in document order.
func (d *Document) Sections() []*Section {
	var out []*Section
	d.Walk(func(n Node) bool {
		if s, ok := n.(*Section); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Tables returns all tables in document order.
func (d *Document) Tables() []*Table {
	var out []*Table
	d.Walk(func(n Node) bool {
		if t, ok := n.(*Table); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// AttachPreviews sets PreviewRef on every image and embedded object whose id
// appears in refs, including header and footer images. It returns the number
// of references attached.
func (d *Document) AttachPreviews(refs map[string]string) int {
	if d == nil || len(refs) == 0 {
		return 0
	}
	n := 0
	for _, img := range d.HeaderFooterImages {
		if ref, ok := refs[img.ID]; ok {
			img.PreviewRef = ref
			n++
		}
	}
	d.Walk(func(node Node) bool {
		switch v := node.(type) {
		case *ImageRef:
			if ref, ok := refs[v.ID]; ok {
				v.PreviewRef = ref
				n++
			}
		case *EmbeddedObjectRef:
			if ref, ok := refs[v.ID]; ok {
				v.PreviewRef = ref
				n++
			}
		}
		return true
	})
	return n
}

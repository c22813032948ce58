package model

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindSection Kind = iota
	KindParagraph
	KindListItem
	KindTable
	KindDiagram
	KindImage
	KindEmbeddedObject
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindParagraph:
		return "paragraph"
	case KindListItem:
		return "list_item"
	case KindTable:
		return "table"
	case KindDiagram:
		return "diagram"
	case KindImage:
		return "image"
	case KindEmbeddedObject:
		return "embedded_object"
	default:
		return "unknown"
	}
}

// Node is an element of section content. The set of implementations is
// closed to this package.
type Node interface {
	Kind() Kind
	isNode()
}

// Section is a heading together with the content nested beneath it.
type Section struct {
	Title   string
	Number  string
	Level   int
	Content []Node
}

// NewSection creates a section with empty content.
func NewSection(title, number string, level int) *Section {
	return &Section{
		Title:   title,
		Number:  number,
		Level:   level,
		Content: make([]Node, 0),
	}
}

// Append adds a node to the end of the section's content.
func (s *Section) Append(n Node) {
	s.Content = append(s.Content, n)
}

func (*Section) Kind() Kind { return KindSection }
func (*Section) isNode()    {}

// Paragraph represents a paragraph of text
type Paragraph struct {
	Text   string
	Bold   bool
	Italic bool
	Style  string
}

func (*Paragraph) Kind() Kind { return KindParagraph }
func (*Paragraph) isNode()    {}

// ListItem represents a single list entry. Text does not include Prefix.
type ListItem struct {
	Text     string
	Level    int
	Prefix   string
	IsBullet bool
	ListID   string
}

func (*ListItem) Kind() Kind { return KindListItem }
func (*ListItem) isNode()    {}

// Diagram is a SmartArt diagram reconstructed into a depth-first item list.
// Layout is the diagram family classified from its layout definition
// (list, process, cycle, hierarchy, relationship, pyramid or unknown).
type Diagram struct {
	ID            string
	Layout        string
	Items         []DiagramItem
	SourceContext string
}

// DiagramItem is one emitted diagram point.
type DiagramItem struct {
	Text   string `json:"text"`
	Level  int    `json:"level"`
	NodeID string `json:"node_id"`
}

func (*Diagram) Kind() Kind { return KindDiagram }
func (*Diagram) isNode()    {}

// ImageRef describes an embedded image without carrying its bytes.
type ImageRef struct {
	ID             string
	RelID          string
	Target         string
	External       bool
	Format         string
	ContentType    string
	DeclaredWidth  int
	DeclaredHeight int
	PixelWidth     int
	PixelHeight    int
	Size           int64
	Name           string
	AltText        string
	SourceContext  string
	PreviewRef     string
}

func (*ImageRef) Kind() Kind { return KindImage }
func (*ImageRef) isNode()    {}

// EmbeddedObjectRef describes an embedded OLE object.
type EmbeddedObjectRef struct {
	ID            string
	RelID         string
	Target        string
	ProgID        string
	OLEType       string
	ObjectKind    string
	Description   string
	Width         string
	Height        string
	ContentType   string
	Size          int64
	PreviewRelID  string
	PreviewTarget string
	PreviewFormat string
	SourceContext string
	PreviewRef    string
}

func (*EmbeddedObjectRef) Kind() Kind { return KindEmbeddedObject }
func (*EmbeddedObjectRef) isNode()    {}

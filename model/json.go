package model

import "encoding/json"

// Each node marshals with a "type" discriminator so consumers of the JSON
// form can switch on it the way Go code switches on the concrete type.

func (s *Section) MarshalJSON() ([]byte, error) {
	content := s.Content
	if content == nil {
		content = []Node{}
	}
	return json.Marshal(struct {
		Type    string `json:"type"`
		Title   string `json:"title"`
		Number  string `json:"number,omitempty"`
		Level   int    `json:"level"`
		Content []Node `json:"content"`
	}{KindSection.String(), s.Title, s.Number, s.Level, content})
}

func (p *Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Text   string `json:"text"`
		Bold   bool   `json:"bold"`
		Italic bool   `json:"italic"`
		Style  string `json:"style,omitempty"`
	}{KindParagraph.String(), p.Text, p.Bold, p.Italic, p.Style})
}

func (li *ListItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		Level    int    `json:"level"`
		Prefix   string `json:"prefix"`
		IsBullet bool   `json:"is_bullet"`
		ListID   string `json:"list_id,omitempty"`
	}{KindListItem.String(), li.Text, li.Level, li.Prefix, li.IsBullet, li.ListID})
}

func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = [][]*TableCell{}
	}
	return json.Marshal(struct {
		Type    string         `json:"type"`
		Index   int            `json:"index"`
		Columns int            `json:"columns"`
		Rows    [][]*TableCell `json:"rows"`
	}{KindTable.String(), t.Index, t.Columns, rows})
}

func (c *TableCell) MarshalJSON() ([]byte, error) {
	content := c.Content
	if content == nil {
		content = []Node{}
	}
	return json.Marshal(struct {
		Type    string `json:"type"`
		Row     int    `json:"row"`
		Col     int    `json:"col"`
		RowSpan int    `json:"row_span"`
		ColSpan int    `json:"col_span"`
		Content []Node `json:"content"`
	}{"table_cell", c.Row, c.Col, c.RowSpan, c.ColSpan, content})
}

func (d *Diagram) MarshalJSON() ([]byte, error) {
	items := d.Items
	if items == nil {
		items = []DiagramItem{}
	}
	return json.Marshal(struct {
		Type          string        `json:"type"`
		ID            string        `json:"id"`
		Layout        string        `json:"diagram_type"`
		Items         []DiagramItem `json:"items"`
		SourceContext string        `json:"source_context,omitempty"`
	}{KindDiagram.String(), d.ID, d.Layout, items, d.SourceContext})
}

type imageJSON struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	RelID          string `json:"rel_id"`
	Target         string `json:"target,omitempty"`
	External       bool   `json:"external,omitempty"`
	Format         string `json:"format"`
	ContentType    string `json:"content_type,omitempty"`
	DeclaredWidth  int    `json:"declared_width,omitempty"`
	DeclaredHeight int    `json:"declared_height,omitempty"`
	PixelWidth     int    `json:"pixel_width,omitempty"`
	PixelHeight    int    `json:"pixel_height,omitempty"`
	Size           int64  `json:"size"`
	Name           string `json:"name,omitempty"`
	AltText        string `json:"alt_text,omitempty"`
	SourceContext  string `json:"source_context,omitempty"`
	PreviewRef     string `json:"preview_ref,omitempty"`
}

func (img *ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageJSON{
		Type:           KindImage.String(),
		ID:             img.ID,
		RelID:          img.RelID,
		Target:         img.Target,
		External:       img.External,
		Format:         img.Format,
		ContentType:    img.ContentType,
		DeclaredWidth:  img.DeclaredWidth,
		DeclaredHeight: img.DeclaredHeight,
		PixelWidth:     img.PixelWidth,
		PixelHeight:    img.PixelHeight,
		Size:           img.Size,
		Name:           img.Name,
		AltText:        img.AltText,
		SourceContext:  img.SourceContext,
		PreviewRef:     img.PreviewRef,
	})
}

type objectJSON struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	RelID         string `json:"rel_id,omitempty"`
	Target        string `json:"target,omitempty"`
	ProgID        string `json:"prog_id"`
	OLEType       string `json:"ole_type,omitempty"`
	ObjectKind    string `json:"object_type"`
	Description   string `json:"description"`
	Width         string `json:"width,omitempty"`
	Height        string `json:"height,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	Size          int64  `json:"size"`
	PreviewRelID  string `json:"preview_rel_id,omitempty"`
	PreviewTarget string `json:"preview_target,omitempty"`
	PreviewFormat string `json:"preview_format,omitempty"`
	SourceContext string `json:"source_context,omitempty"`
	PreviewRef    string `json:"preview_ref,omitempty"`
}

func (o *EmbeddedObjectRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(objectJSON{
		Type:          KindEmbeddedObject.String(),
		ID:            o.ID,
		RelID:         o.RelID,
		Target:        o.Target,
		ProgID:        o.ProgID,
		OLEType:       o.OLEType,
		ObjectKind:    o.ObjectKind,
		Description:   o.Description,
		Width:         o.Width,
		Height:        o.Height,
		ContentType:   o.ContentType,
		Size:          o.Size,
		PreviewRelID:  o.PreviewRelID,
		PreviewTarget: o.PreviewTarget,
		PreviewFormat: o.PreviewFormat,
		SourceContext: o.SourceContext,
		PreviewRef:    o.PreviewRef,
	})
}

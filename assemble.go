package docstruct

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/docstruct/diag"
	"github.com/tsawler/docstruct/diagram"
	"github.com/tsawler/docstruct/docx"
	"github.com/tsawler/docstruct/internal/textclean"
	"github.com/tsawler/docstruct/lists"
	"github.com/tsawler/docstruct/media"
	"github.com/tsawler/docstruct/model"
	"github.com/tsawler/docstruct/sections"
	"github.com/tsawler/docstruct/tables"
)

// assembler holds the state of one parse: the open-section stack, list
// counters, table-of-contents state and the diagnostics collected so far.
// Nothing in it outlives the call to run.
type assembler struct {
	pkg  *docx.Package
	opts Options
	sink media.Sink

	diags     *diag.Collector
	styles    *docx.StyleResolver
	numbering *docx.NumberingResolver
	lists     *lists.Tracker
	sections  *sections.Builder
	toc       sections.TOCFilter
	locator   *media.Locator

	doc    *model.Document
	tables int
}

func newAssembler(pkg *docx.Package, opts Options, sink media.Sink) *assembler {
	diags := diag.New()
	cfg := sections.Config{
		TextPattern: opts.TextPatternHeadings,
		MaxLevel:    opts.MaxHeadingLevel,
	}
	return &assembler{
		pkg:      pkg,
		opts:     opts,
		sink:     sink,
		diags:    diags,
		lists:    lists.NewTracker(),
		sections: sections.NewBuilder(cfg, diags),
		doc:      model.NewDocument(),
	}
}

// run builds the document. Only failures to read the main document are
// returned; everything else becomes a diagnostic.
func (a *assembler) run() (*model.Document, error) {
	a.readMetadata()

	var err error
	if a.styles, err = a.pkg.StyleResolver(); err != nil {
		a.diags.Addf("styles", "%v; using defaults", err)
	}
	if a.numbering, err = a.pkg.NumberingResolver(); err != nil {
		a.diags.Addf("numbering", "%v; list formats unknown", err)
	}

	main := a.pkg.MainPart()
	rels, err := a.pkg.Relationships(main)
	if err != nil {
		a.diags.Addf("relationships", "%s: %v", main, err)
	}
	a.locator = media.NewLocator(a.pkg, rels, a.diags)
	a.locator.DecodeDimensions = a.opts.ImageDimensions

	if err := a.readBody(main); err != nil {
		return nil, err
	}

	if a.opts.HeaderFooterImages {
		a.readHeadersAndFooters()
	}
	if a.sink != nil {
		a.storeMedia()
	}

	a.doc.Root = a.sections.Root()
	a.doc.Diagnostics = a.diags.Items()
	return a.doc, nil
}

func (a *assembler) readMetadata() {
	m := &a.doc.Metadata
	m.ByteSize = a.pkg.Size()

	core, err := a.pkg.CoreProperties()
	if err != nil {
		a.diags.Addf("properties", "%v", err)
	}
	m.Title = core.Title
	m.Author = core.Creator
	m.Subject = core.Subject
	m.Keywords = core.Keywords
	m.Category = core.Category
	m.Description = core.Description
	m.LastModifiedBy = core.LastModifiedBy
	m.Revision = core.Revision
	m.Created = core.Created
	m.Modified = core.Modified

	app, err := a.pkg.AppProperties()
	if err != nil {
		a.diags.Addf("properties", "%v", err)
	}
	m.Application = app.Application
	m.Company = app.Company
}

func (a *assembler) readBody(main string) error {
	rc, err := a.pkg.OpenPart(main)
	if err != nil {
		return err
	}
	defer rc.Close()

	stream := docx.NewBlockStream(rc, a.diags)
	for {
		block, ok := stream.Next()
		if !ok {
			break
		}
		a.doc.Stats.Blocks++
		switch block.Kind {
		case docx.BlockParagraph:
			a.paragraph(block.Paragraph, block.Index)
		case docx.BlockTable:
			a.table(block.Table)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s: %w", main, err)
	}
	return nil
}

// paragraph classifies one body paragraph as a heading, list item or plain
// paragraph, and appends it together with any content found in its runs.
func (a *assembler) paragraph(p *docx.Paragraph, index int) {
	style := a.styles.ResolveParagraph(p)
	text := textclean.Clean(p.Text())
	heading := a.sections.Classify(sections.StyleSignal{
		Name:         style.Name,
		OutlineLevel: style.OutlineLevel,
	}, text)

	if a.opts.SkipTableOfContents && a.toc.Skip(style.Name, text, heading.Level > 0) {
		return
	}

	context := fmt.Sprintf("paragraph %d", index+1)
	found := a.locate(p, context)

	switch numID, level, isList := p.Numbering(); {
	case heading.Level > 0:
		a.sections.Open(heading)
	case isList:
		a.sections.Append(a.listItem(p, style, text, numID, level))
	case text != "":
		bold, italic := a.emphasis(p)
		a.sections.Append(&model.Paragraph{Text: text, Bold: bold, Italic: italic, Style: style.Name})
	}

	for _, n := range a.contentNodes(found) {
		a.sections.Append(n)
	}
}

func (a *assembler) listItem(p *docx.Paragraph, style docx.ResolvedStyle, text, numID string, level int) *model.ListItem {
	f := a.numbering.ResolveLevel(numID, level)
	bullet := f.Bullet
	if !f.Known {
		bullet = strings.Contains(strings.ToLower(style.Name), "bullet")
	}
	item := a.lists.Next(level, bullet, f.Glyph)
	return &model.ListItem{
		Text:     text,
		Level:    item.Level,
		Prefix:   item.Prefix,
		IsBullet: item.Bullet,
		ListID:   numID,
	}
}

// emphasis reports whether any run with visible text is bold or italic.
func (a *assembler) emphasis(p *docx.Paragraph) (bold, italic bool) {
	styleID := p.StyleID()
	for i := range p.Runs {
		r := a.styles.ResolveRun(styleID, &p.Runs[i])
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		bold = bold || r.Bold
		italic = italic || r.Italic
	}
	return bold, italic
}

// locate scans every run that carries drawings or objects.
func (a *assembler) locate(p *docx.Paragraph, context string) media.Found {
	var all media.Found
	for i := range p.Runs {
		r := &p.Runs[i]
		if !r.HasEmbeddedContent() {
			continue
		}
		f := a.locator.Locate(r.Inner, context)
		all.Images = append(all.Images, f.Images...)
		all.Objects = append(all.Objects, f.Objects...)
		all.Diagrams = append(all.Diagrams, f.Diagrams...)
	}
	return all
}

// contentNodes turns located references into sibling content nodes:
// images, then objects, then diagrams.
func (a *assembler) contentNodes(found media.Found) []model.Node {
	if found.Empty() {
		return nil
	}
	nodes := make([]model.Node, 0, len(found.Images)+len(found.Objects)+len(found.Diagrams))
	for _, img := range found.Images {
		a.doc.Stats.Images++
		nodes = append(nodes, img)
	}
	for _, obj := range found.Objects {
		a.doc.Stats.Objects++
		nodes = append(nodes, obj)
	}
	for _, ref := range found.Diagrams {
		a.doc.Stats.Diagrams++
		nodes = append(nodes, a.diagram(ref))
	}
	return nodes
}

// diagram reads and reconstructs a SmartArt diagram. A diagram whose data
// cannot be read is still emitted, without items.
func (a *assembler) diagram(ref media.DiagramRef) *model.Diagram {
	d := &model.Diagram{
		ID:            ref.ID,
		Layout:        diagram.LayoutUnknown,
		Items:         make([]model.DiagramItem, 0),
		SourceContext: ref.SourceContext,
	}

	if ref.LayoutPart != "" {
		if data, err := a.pkg.Part(ref.LayoutPart); err == nil {
			d.Layout = diagram.ClassifyLayout(data)
		} else {
			a.diags.Addf("diagram", "%s: %v", ref.ID, err)
		}
	}

	data, err := a.pkg.Part(ref.DataPart)
	if err != nil {
		a.diags.Addf("diagram", "%s: %v", ref.ID, err)
		return d
	}
	points, cxns, err := diagram.ParseDataModel(data)
	if err != nil {
		a.diags.Addf("diagram", "%s: %v", ref.ID, err)
		return d
	}

	res := diagram.Reconstruct(points, cxns)
	for _, msg := range res.Diagnostics {
		a.diags.Addf("diagram", "%s: %s", ref.ID, msg)
	}
	d.Items = res.Items
	return d
}

// table materialises a table with merged cells resolved. Objects and
// diagrams found in cells follow the table as siblings, since cells hold
// only paragraphs and images.
func (a *assembler) table(t *docx.Table) {
	tbl := &model.Table{Index: a.tables}
	a.tables++
	a.doc.Stats.Tables++

	res, err := tables.Resolve(t.MergeGrid())
	if errors.Is(err, tables.ErrMalformedGrid) {
		a.diags.Addf("tables", "table %d: %v; merges ignored", tbl.Index+1, err)
	}
	for _, pos := range res.OutOfGrid() {
		a.diags.Addf("tables", "table %d: cell at row %d column %d lies outside the %d-column grid", tbl.Index+1, pos.Row, pos.Col, res.Columns())
	}
	tbl.Columns = res.Columns()

	var trailing []model.Node
	tbl.Rows = make([][]*model.TableCell, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]*model.TableCell, 0, len(row.Cells))
		for i, c := range row.Cells {
			col := res.Origin(r, i)
			if res.Absorbed(r, col) {
				continue
			}
			span := res.Span(r, col)
			cell := &model.TableCell{
				Row:     r,
				Col:     col,
				RowSpan: span.Rows,
				ColSpan: span.Cols,
				Content: make([]model.Node, 0, len(c.Paragraphs)),
			}
			if c.Nested > 0 {
				a.diags.Addf("tables", "table %d cell (%d,%d): %d nested table(s) flattened", tbl.Index+1, r, col, c.Nested)
			}

			context := fmt.Sprintf("table %d cell (%d,%d)", tbl.Index+1, r, col)
			for pi := range c.Paragraphs {
				p := &c.Paragraphs[pi]
				if text := textclean.Clean(p.Text()); text != "" {
					bold, italic := a.emphasis(p)
					style := a.styles.ResolveParagraph(p)
					cell.Content = append(cell.Content, &model.Paragraph{Text: text, Bold: bold, Italic: italic, Style: style.Name})
				}
				found := a.locate(p, context)
				for _, img := range found.Images {
					a.doc.Stats.Images++
					cell.Content = append(cell.Content, img)
				}
				trailing = append(trailing, a.contentNodes(media.Found{Objects: found.Objects, Diagrams: found.Diagrams})...)
			}
			cells = append(cells, cell)
		}
		tbl.Rows[r] = cells
	}

	a.sections.Append(tbl)
	for _, n := range trailing {
		a.sections.Append(n)
	}
}

// readHeadersAndFooters collects the images of every header and footer
// part. Each part has its own relationship table.
func (a *assembler) readHeadersAndFooters() {
	for _, part := range a.pkg.HeaderFooterParts() {
		rels, err := a.pkg.Relationships(part)
		if err != nil {
			a.diags.Addf("headers", "%s: %v", part, err)
		}
		loc := media.NewLocator(a.pkg, rels, a.diags)
		loc.DecodeDimensions = a.opts.ImageDimensions

		rc, err := a.pkg.OpenPart(part)
		if err != nil {
			a.diags.Addf("headers", "%s: %v", part, err)
			continue
		}

		context := "header/footer " + part
		scan := func(p *docx.Paragraph) {
			for i := range p.Runs {
				if r := &p.Runs[i]; r.HasEmbeddedContent() {
					a.doc.HeaderFooterImages = append(a.doc.HeaderFooterImages, loc.Locate(r.Inner, context).Images...)
				}
			}
		}

		stream := docx.NewStoryStream(rc, a.diags)
		for {
			block, ok := stream.Next()
			if !ok {
				break
			}
			switch block.Kind {
			case docx.BlockParagraph:
				scan(block.Paragraph)
			case docx.BlockTable:
				for _, row := range block.Table.Rows {
					for _, c := range row.Cells {
						for pi := range c.Paragraphs {
							scan(&c.Paragraphs[pi])
						}
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			a.diags.Addf("headers", "%s: %v", part, err)
		}
		rc.Close()
	}
}

// storeMedia hands every internal image and object preview to the sink and
// attaches the returned handles.
func (a *assembler) storeMedia() {
	refs := make(map[string]string)
	store := func(id, part, format string) {
		if part == "" {
			return
		}
		data, err := a.pkg.Part(part)
		if err != nil {
			a.diags.Addf("media", "%s: %v", id, err)
			return
		}
		ref, err := a.sink.Put(id, format, data)
		if err != nil {
			a.diags.Addf("media", "%s: %v", id, err)
			return
		}
		refs[id] = ref
	}

	for _, img := range a.doc.HeaderFooterImages {
		if !img.External {
			store(img.ID, img.Target, img.Format)
		}
	}
	a.doc.Root = a.sections.Root()
	a.doc.Walk(func(n model.Node) bool {
		switch v := n.(type) {
		case *model.ImageRef:
			if !v.External {
				store(v.ID, v.Target, v.Format)
			}
		case *model.EmbeddedObjectRef:
			store(v.ID, v.PreviewTarget, v.PreviewFormat)
		}
		return true
	})

	a.doc.AttachPreviews(refs)
}

// Package model provides the structured representation produced by parsing a
// word-processing package.
//
// All parsing operations ultimately produce these types, making them the
// primary API for consuming extracted content.
//
// # Document Structure
//
// The [Document] type holds metadata, a single [Section] tree rooted at
// [Document.Root], images found in headers and footers, processing statistics
// and the diagnostics recorded while parsing:
//
//	doc, err := docstruct.Parse("report.docx")
//	if err != nil {
//		return err
//	}
//	for _, n := range doc.Root.Content {
//		switch n := n.(type) {
//		case *model.Section:
//			fmt.Println(n.Level, n.Title)
//		case *model.Paragraph:
//			fmt.Println(n.Text)
//		}
//	}
//
// # Nodes
//
// Section content is a list of [Node] values. Node is sealed: the concrete
// types are
//
//   - [Section] - a heading and everything beneath it
//   - [Paragraph] - normalised paragraph text with bold/italic flags
//   - [ListItem] - a numbered or bulleted list entry with its rendered prefix
//   - [Table] - a table whose cells carry row and column spans
//   - [Diagram] - a SmartArt diagram flattened to an ordered item list
//   - [ImageRef] - metadata describing an embedded image
//   - [EmbeddedObjectRef] - metadata describing an embedded OLE object
//
// Every node reports its [Kind]. Consumers are expected to use an exhaustive
// type switch.
//
// # Tables
//
// [Table] rows contain only the cells that physically exist after merge
// resolution. A cell spanning several grid positions appears once, at its
// origin, with RowSpan and ColSpan describing the rectangle it covers. Cell
// content is restricted to [Paragraph] and [ImageRef] nodes.
//
// # JSON
//
// Every node marshals to a JSON object carrying a "type" discriminator, so a
// [Document] can be written with json.MarshalIndent directly.
package model

package export

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tsawler/docstruct/model"
)

// Text renders the document as plain text. Section titles are marked with
// one '#' per level, list items keep their prefixes, table rows are
// tab-separated and diagram items are indented two spaces per level.
// Images and objects become bracketed placeholders.
func Text(doc *model.Document) string {
	if doc == nil || doc.Root == nil {
		return ""
	}
	var sb strings.Builder
	writeTextNodes(&sb, doc.Root.Content)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeTextNodes(sb *strings.Builder, nodes []model.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *model.Section:
			sb.WriteString(strings.Repeat("#", max(v.Level, 1)))
			sb.WriteByte(' ')
			sb.WriteString(sectionTitle(v))
			sb.WriteString("\n\n")
			writeTextNodes(sb, v.Content)
		case *model.Paragraph:
			sb.WriteString(v.Text)
			sb.WriteString("\n\n")
		case *model.ListItem:
			sb.WriteString(v.Prefix)
			sb.WriteString(v.Text)
			sb.WriteByte('\n')
		case *model.Table:
			for _, row := range v.Rows {
				cells := make([]string, len(row))
				for i, c := range row {
					cells[i] = cellText(c)
				}
				sb.WriteString(strings.Join(cells, "\t"))
				sb.WriteByte('\n')
			}
			sb.WriteByte('\n')
		case *model.Diagram:
			fmt.Fprintf(sb, "[diagram: %s]\n", v.Layout)
			for _, it := range v.Items {
				sb.WriteString(strings.Repeat("  ", max(it.Level, 0)))
				sb.WriteString(it.Text)
				sb.WriteByte('\n')
			}
			sb.WriteByte('\n')
		case *model.ImageRef:
			sb.WriteString(imagePlaceholder(v))
			sb.WriteString("\n\n")
		case *model.EmbeddedObjectRef:
			sb.WriteString(objectPlaceholder(v))
			sb.WriteString("\n\n")
		}
	}
}

func sectionTitle(s *model.Section) string {
	if s.Number == "" {
		return s.Title
	}
	return s.Number + " " + s.Title
}

// cellText joins the paragraphs of a cell with spaces and replaces images
// with placeholders, keeping the cell on one line.
func cellText(c *model.TableCell) string {
	parts := make([]string, 0, len(c.Content))
	for _, n := range c.Content {
		switch v := n.(type) {
		case *model.Paragraph:
			parts = append(parts, v.Text)
		case *model.ImageRef:
			parts = append(parts, imagePlaceholder(v))
		}
	}
	return strings.Join(parts, " ")
}

func imagePlaceholder(img *model.ImageRef) string {
	var details []string
	details = append(details, img.Format)
	if w, h := img.DeclaredWidth, img.DeclaredHeight; w > 0 && h > 0 {
		details = append(details, fmt.Sprintf("%dx%d", w, h))
	}
	if img.Size > 0 {
		details = append(details, humanize.Bytes(uint64(img.Size)))
	}
	label := img.AltText
	if label == "" {
		label = img.Name
	}
	if label == "" {
		label = img.ID
	}
	return fmt.Sprintf("[image: %s (%s)]", label, strings.Join(details, ", "))
}

func objectPlaceholder(o *model.EmbeddedObjectRef) string {
	details := o.ProgID
	if o.Size > 0 {
		details += ", " + humanize.Bytes(uint64(o.Size))
	}
	return fmt.Sprintf("[object: %s (%s)]", o.Description, details)
}

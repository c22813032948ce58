package model

import "strings"

// Table represents a table after merged-cell resolution.
type Table struct {
	Index   int
	Columns int
	Rows    [][]*TableCell
}

func (*Table) Kind() Kind { return KindTable }
func (*Table) isNode()    {}

// TableCell is a physical cell at its grid origin. Content holds only
// *Paragraph and *ImageRef nodes.
type TableCell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
	Content []Node
}

// Text returns the cell's paragraph text joined by newlines.
func (c *TableCell) Text() string {
	var parts []string
	for _, n := range c.Content {
		if p, ok := n.(*Paragraph); ok && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Cell returns the cell whose origin is at (row, col), or nil when that grid
// position is absorbed by a merge or out of range.
func (t *Table) Cell(row, col int) *TableCell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	for _, c := range t.Rows[row] {
		if c.Col == col {
			return c
		}
	}
	return nil
}

// CellCount returns the number of materialised cells.
func (t *Table) CellCount() int {
	n := 0
	for _, row := range t.Rows {
		n += len(row)
	}
	return n
}

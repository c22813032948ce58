package tables

import (
	"errors"
	"sort"
)

// ErrMalformedGrid is returned when a table declares no grid columns.
var ErrMalformedGrid = errors.New("table grid declares no columns")

// VMerge is a cell's vertical-merge marker.
type VMerge int

const (
	None VMerge = iota
	Start
	Continue
)

func (v VMerge) String() string {
	switch v {
	case Start:
		return "start"
	case Continue:
		return "continue"
	default:
		return "none"
	}
}

// Cell is one physical cell of a row.
type Cell struct {
	Span   int // grid columns covered; values below 1 count as 1
	VMerge VMerge
}

// Row is one table row. Before is the number of grid columns skipped before
// the first cell.
type Row struct {
	Before int
	Cells  []Cell
}

// Grid describes a table's layout.
type Grid struct {
	Columns int
	Rows    []Row
}

// Position is a grid coordinate.
type Position struct {
	Row int
	Col int
}

// Span is the size of the rectangle a cell covers.
type Span struct {
	Rows int
	Cols int
}

// Result is the outcome of merge resolution.
type Result struct {
	columns   int
	origins   [][]int
	absorbed  map[Position]bool
	spans     map[Position]Span
	outOfGrid []Position
}

// Resolve computes the set of absorbed grid positions. When the grid
// declares no columns it returns a result with an empty absorbed set,
// together with ErrMalformedGrid; origins and spans are still available so
// the caller can emit every physical cell.
func Resolve(g Grid) (*Result, error) {
	res := &Result{
		columns:  g.Columns,
		origins:  make([][]int, len(g.Rows)),
		absorbed: make(map[Position]bool),
		spans:    make(map[Position]Span),
	}

	widest := 0
	for r, row := range g.Rows {
		col := max(row.Before, 0)
		res.origins[r] = make([]int, len(row.Cells))
		for i, c := range row.Cells {
			res.origins[r][i] = col
			col += span(c)
		}
		widest = max(widest, col)
	}

	if g.Columns <= 0 {
		res.columns = widest
		for r, row := range g.Rows {
			for i, c := range row.Cells {
				res.spans[Position{r, res.origins[r][i]}] = Span{Rows: 1, Cols: span(c)}
			}
		}
		return res, ErrMalformedGrid
	}

	for r, row := range g.Rows {
		for i, c := range row.Cells {
			origin := Position{r, res.origins[r][i]}
			if origin.Col >= g.Columns {
				res.outOfGrid = append(res.outOfGrid, origin)
			}

			s := span(c)
			if c.VMerge == Continue && res.absorbed[origin] {
				// Covered by a merge that starts above.
				continue
			}

			h := 1
			if c.VMerge == Start {
				h += continuationDepth(g, res, r, origin.Col)
			}

			cols := min(s, max(g.Columns-origin.Col, 1))
			res.spans[origin] = Span{Rows: h, Cols: cols}
			if s == 1 && h == 1 {
				continue
			}
			for rr := r; rr < r+h && rr < len(g.Rows); rr++ {
				for cc := origin.Col; cc < origin.Col+s && cc < g.Columns; cc++ {
					if rr == r && cc == origin.Col {
						continue
					}
					res.absorbed[Position{rr, cc}] = true
				}
			}
		}
	}

	return res, nil
}

// continuationDepth counts the rows immediately below row r whose cell at
// grid column col continues a vertical merge.
func continuationDepth(g Grid, res *Result, r, col int) int {
	n := 0
	for rr := r + 1; rr < len(g.Rows); rr++ {
		i := cellAt(res.origins[rr], col)
		if i < 0 || g.Rows[rr].Cells[i].VMerge != Continue {
			break
		}
		n++
	}
	return n
}

// cellAt returns the index of the cell whose origin is col, or -1.
func cellAt(origins []int, col int) int {
	for i, o := range origins {
		if o == col {
			return i
		}
		if o > col {
			break
		}
	}
	return -1
}

func span(c Cell) int {
	if c.Span < 1 {
		return 1
	}
	return c.Span
}

// Columns returns the declared column count, or the widest row when the grid
// declared none.
func (r *Result) Columns() int {
	return r.columns
}

// Absorbed reports whether the grid position is covered by a merge whose
// origin lies elsewhere.
func (r *Result) Absorbed(row, col int) bool {
	return r.absorbed[Position{row, col}]
}

// Len returns the number of absorbed positions.
func (r *Result) Len() int {
	return len(r.absorbed)
}

// Positions returns the absorbed positions in row-major order.
func (r *Result) Positions() []Position {
	out := make([]Position, 0, len(r.absorbed))
	for p := range r.absorbed {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Origin returns the grid column of the i-th physical cell of a row.
func (r *Result) Origin(row, i int) int {
	return r.origins[row][i]
}

// Span returns the rectangle covered by the cell whose origin is (row, col).
// Positions that are not cell origins report a 1x1 span.
func (r *Result) Span(row, col int) Span {
	if s, ok := r.spans[Position{row, col}]; ok {
		return s
	}
	return Span{Rows: 1, Cols: 1}
}

// OutOfGrid returns the origins of cells that start beyond the declared
// columns.
func (r *Result) OutOfGrid() []Position {
	return r.outOfGrid
}

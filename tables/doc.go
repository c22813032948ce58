// Package tables resolves merged cells in word-processing tables.
//
// A table is described to [Resolve] as a [Grid]: the number of declared grid
// columns and, for every row, the physical cells it contains with their
// horizontal span and vertical-merge marker. Each cell's grid column is the
// running sum of the spans before it in its row (plus any columns the row
// skips up front).
//
// A cell that spans several columns, or that starts a vertical merge, covers
// a rectangle of grid positions. The height of a vertical merge is one plus
// the number of immediately following rows whose cell at the same grid
// column continues the merge. Every position of a rectangle except its
// origin is absorbed:
//
//	res, err := tables.Resolve(grid)
//	if errors.Is(err, tables.ErrMalformedGrid) {
//		// no columns declared; nothing is absorbed
//	}
//	if res.Absorbed(2, 0) {
//		// position (2, 0) belongs to a merge that starts above it
//	}
//
// The result is a pure function of the grid.
package tables

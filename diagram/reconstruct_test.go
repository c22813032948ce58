package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docstruct/model"
)

func texts(items []model.DiagramItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func levels(items []model.DiagramItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Level
	}
	return out
}

func parOf(id, src, dest string, srcOrd int) Connection {
	return Connection{ID: id, Type: ConnectionParent, SrcID: src, DestID: dest, SrcOrd: srcOrd}
}

func TestReconstructTree(t *testing.T) {
	points := []Point{
		{ID: "0", Type: PointDocument},
		{ID: "1", Type: PointNode, Text: "Plan"},
		{ID: "2", Type: PointNode, Text: "Build"},
		{ID: "3", Type: PointNode, Text: "Design"},
		{ID: "4", Type: PointNode, Text: "Research"},
		{ID: "5", Type: "pres"},
	}
	cxns := []Connection{
		parOf("c1", "0", "2", 1),
		parOf("c2", "0", "1", 0),
		parOf("c3", "1", "3", 1),
		parOf("c4", "1", "4", 0),
		{ID: "c5", Type: ConnectionPresentation, SrcID: "1", DestID: "5"},
		{ID: "c6", Type: ConnectionPresentationOf, SrcID: "5", DestID: "2"},
	}

	res := Reconstruct(points, cxns)

	assert.Equal(t, "0", res.Root)
	assert.Equal(t, []string{"Plan", "Research", "Design", "Build"}, texts(res.Items))
	assert.Equal(t, []int{1, 2, 2, 1}, levels(res.Items))
	assert.Equal(t, "4", res.Items[1].NodeID)
	assert.Empty(t, res.Diagnostics)
}

func TestReconstructDestOrdFirst(t *testing.T) {
	points := []Point{{ID: "r", Type: PointDocument}, {ID: "a", Text: "A"}, {ID: "b", Text: "B"}}
	cxns := []Connection{
		{ID: "1", Type: ConnectionParent, SrcID: "r", DestID: "a", SrcOrd: 0, DestOrd: 1},
		{ID: "2", Type: ConnectionParent, SrcID: "r", DestID: "b", SrcOrd: 1, DestOrd: 0},
	}
	res := Reconstruct(points, cxns)
	assert.Equal(t, []string{"B", "A"}, texts(res.Items))
}

func TestReconstructIdempotent(t *testing.T) {
	points := []Point{
		{ID: "10", Type: PointDocument},
		{ID: "11", Text: "x"},
		{ID: "12", Text: "y"},
		{ID: "13", Text: "z"},
	}
	cxns := []Connection{parOf("a", "10", "11", 0), parOf("b", "10", "12", 0), parOf("c", "12", "13", 0)}

	first := Reconstruct(points, cxns)
	second := Reconstruct(points, cxns)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, []string{"x", "y", "z"}, texts(first.Items), "equal ordinals keep input order")
}

func TestReconstructCycle(t *testing.T) {
	points := []Point{{ID: "A", Type: PointDocument, Text: "A"}, {ID: "B", Text: "B"}}
	cxns := []Connection{parOf("1", "A", "B", 0), parOf("2", "B", "A", 0)}

	res := Reconstruct(points, cxns)

	assert.Equal(t, []string{"A", "B"}, texts(res.Items))
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "cycle")
}

func TestReconstructSharedChild(t *testing.T) {
	points := []Point{
		{ID: "0", Type: PointDocument},
		{ID: "1", Text: "Left"},
		{ID: "2", Text: "Right"},
		{ID: "3", Text: "Shared"},
	}
	cxns := []Connection{
		parOf("a", "0", "1", 0),
		parOf("b", "0", "2", 1),
		parOf("c", "1", "3", 0),
		parOf("d", "2", "3", 0),
	}

	res := Reconstruct(points, cxns)

	assert.Equal(t, []string{"Left", "Shared", "Right"}, texts(res.Items))
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "second parent")
	assert.NotContains(t, res.Diagnostics[0], "cycle")
}

func TestReconstructRootSelection(t *testing.T) {
	t.Run("in-degree zero", func(t *testing.T) {
		points := []Point{{ID: "b", Text: "child"}, {ID: "a", Text: "top"}}
		res := Reconstruct(points, []Connection{parOf("1", "a", "b", 0)})
		assert.Equal(t, "a", res.Root)
		assert.Equal(t, []string{"top", "child"}, texts(res.Items))
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("numeric tie-break", func(t *testing.T) {
		points := []Point{{ID: "10", Text: "ten"}, {ID: "9", Text: "nine"}}
		res := Reconstruct(points, nil)
		assert.Equal(t, "9", res.Root)
		assert.Equal(t, []string{"nine"}, texts(res.Items))
		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0], "candidate roots")
	})

	t.Run("pure cycle", func(t *testing.T) {
		points := []Point{{ID: "2", Text: "B"}, {ID: "1", Text: "A"}}
		res := Reconstruct(points, []Connection{parOf("x", "1", "2", 0), parOf("y", "2", "1", 0)})
		assert.Equal(t, "1", res.Root)
		assert.Equal(t, []string{"A", "B"}, texts(res.Items))
		assert.Len(t, res.Diagnostics, 2)
	})

	t.Run("several document points", func(t *testing.T) {
		points := []Point{{ID: "b", Type: PointDocument}, {ID: "a", Type: PointDocument}}
		res := Reconstruct(points, nil)
		assert.Equal(t, "a", res.Root)
		assert.Len(t, res.Diagnostics, 1)
	})
}

func TestReconstructEmpty(t *testing.T) {
	res := Reconstruct(nil, nil)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Diagnostics)

	res = Reconstruct([]Point{{ID: "0", Type: PointDocument}}, nil)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Diagnostics, "a diagram without text is not a problem")
}

func TestReconstructDangling(t *testing.T) {
	points := []Point{{ID: "0", Type: PointDocument}, {ID: "1", Text: "one"}}
	cxns := []Connection{parOf("a", "0", "1", 0), parOf("b", "0", "ghost", 1)}

	res := Reconstruct(points, cxns)
	assert.Equal(t, []string{"one"}, texts(res.Items))
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "unknown point")
}

func TestReconstructFlatFallback(t *testing.T) {
	points := []Point{
		{ID: "0", Type: PointDocument},
		{ID: "1", Text: "alpha"},
		{ID: "2", Text: "beta"},
		{ID: "3", Text: "alpha"},
	}

	res := Reconstruct(points, nil)
	assert.Equal(t, []string{"alpha", "beta"}, texts(res.Items))
	assert.Equal(t, []int{0, 0}, levels(res.Items))
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "flat")
}

func TestConnectionStructural(t *testing.T) {
	assert.True(t, Connection{Type: ConnectionParent}.Structural())
	assert.True(t, Connection{Type: "parTrans"}.Structural())
	assert.False(t, Connection{Type: ConnectionPresentation}.Structural())
	assert.False(t, Connection{Type: ConnectionPresentationOf}.Structural())
}

// Package diagram turns the data model of a SmartArt diagram into an ordered
// text outline.
//
// A diagram's data model is a flat graph: points carry text and connections
// link a parent point to its children. [Reconstruct] drops connections that
// only describe presentation, picks a root, and walks the remaining graph
// depth first, emitting one item per point that has text:
//
//	points, cxns, err := diagram.ParseDataModel(data)
//	if err != nil {
//		return err
//	}
//	res := diagram.Reconstruct(points, cxns)
//	for _, item := range res.Items {
//		fmt.Println(strings.Repeat("  ", item.Level) + item.Text)
//	}
//
// Reconstruction never fails. Problems such as cycles or connections to
// unknown points are reported in Result.Diagnostics.
package diagram

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/tsawler/docstruct/model"
)

// Point types and connection types used by reconstruction.
const (
	PointDocument = "doc"
	PointNode     = "node"

	ConnectionParent         = "parOf"
	ConnectionPresentation   = "presOf"
	ConnectionPresentationOf = "presParOf"
)

// Point is one point of the data model.
type Point struct {
	ID   string
	Type string
	Text string
}

// Connection links SrcID to DestID. SrcOrd orders the children of a source;
// DestOrd orders the parents of a destination.
type Connection struct {
	ID      string
	Type    string
	SrcID   string
	DestID  string
	SrcOrd  int
	DestOrd int
}

// Structural reports whether the connection describes the logical tree
// rather than how points are laid out.
func (c Connection) Structural() bool {
	return c.Type != ConnectionPresentation && c.Type != ConnectionPresentationOf
}

// Result is the outcome of reconstruction.
type Result struct {
	Root        string
	Items       []model.DiagramItem
	Diagnostics []string
}

type frame struct {
	id    string
	level int
	leave bool // set on the marker popped once id's subtree is done
}

// Reconstruct converts points and connections into a depth-first sequence
// of text items. Running it twice on the same input yields the same result.
func Reconstruct(points []Point, cxns []Connection) Result {
	res := Result{Items: make([]model.DiagramItem, 0)}
	if len(points) == 0 {
		return res
	}

	byID := make(map[string]Point, len(points))
	order := make([]string, 0, len(points))
	for _, p := range points {
		if _, dup := byID[p.ID]; dup {
			res.addf("duplicate point id %q ignored", p.ID)
			continue
		}
		byID[p.ID] = p
		order = append(order, p.ID)
	}

	children := make(map[string][]Connection)
	inDegree := make(map[string]int)
	for _, c := range cxns {
		if !c.Structural() {
			continue
		}
		_, srcOK := byID[c.SrcID]
		_, destOK := byID[c.DestID]
		if !srcOK || !destOK {
			res.addf("connection %q from %q to %q references an unknown point; skipped", c.ID, c.SrcID, c.DestID)
			continue
		}
		children[c.SrcID] = append(children[c.SrcID], c)
		inDegree[c.DestID]++
	}
	for id := range children {
		group := children[id]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].DestOrd != group[j].DestOrd {
				return group[i].DestOrd < group[j].DestOrd
			}
			return group[i].SrcOrd < group[j].SrcOrd
		})
	}

	res.Root = res.selectRoot(order, byID, inDegree)

	visited := make(map[string]bool, len(order))
	onPath := make(map[string]bool)
	stack := []frame{{id: res.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.leave {
			delete(onPath, f.id)
			continue
		}
		if visited[f.id] {
			if onPath[f.id] {
				res.addf("cycle: point %q reached again at level %d from its own descendant; branch truncated", f.id, f.level)
			} else {
				res.addf("point %q reached again at level %d from a second parent; not repeated", f.id, f.level)
			}
			continue
		}
		visited[f.id] = true
		onPath[f.id] = true

		if p := byID[f.id]; p.Text != "" {
			res.Items = append(res.Items, model.DiagramItem{Text: p.Text, Level: f.level, NodeID: p.ID})
		}

		stack = append(stack, frame{id: f.id, leave: true})
		kids := children[f.id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i].DestID, level: f.level + 1})
		}
	}

	if len(res.Items) == 0 {
		res.flatten(order, byID)
	}
	return res
}

// selectRoot picks the document point, else a point nobody points to, else
// the smallest id.
func (r *Result) selectRoot(order []string, byID map[string]Point, inDegree map[string]int) string {
	var docs, free []string
	for _, id := range order {
		if byID[id].Type == PointDocument {
			docs = append(docs, id)
		}
		if inDegree[id] == 0 {
			free = append(free, id)
		}
	}

	switch {
	case len(docs) == 1:
		return docs[0]
	case len(docs) > 1:
		root := smallest(docs)
		r.addf("%d document points; using %q", len(docs), root)
		return root
	case len(free) == 1:
		return free[0]
	case len(free) > 1:
		root := smallest(free)
		r.addf("no document point and %d candidate roots; using %q", len(free), root)
		return root
	default:
		root := smallest(order)
		r.addf("no document point and no point without parents; using %q", root)
		return root
	}
}

// flatten replaces an empty traversal with every distinct text in point
// order.
func (r *Result) flatten(order []string, byID map[string]Point) {
	seen := make(map[string]bool)
	for _, id := range order {
		p := byID[id]
		if p.Text == "" || seen[p.Text] {
			continue
		}
		seen[p.Text] = true
		r.Items = append(r.Items, model.DiagramItem{Text: p.Text, NodeID: p.ID})
	}
	if len(r.Items) > 0 {
		r.addf("traversal from %q found no text; listed %d points flat", r.Root, len(r.Items))
	}
}

func (r *Result) addf(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// smallest returns the least id, comparing numerically when both ids are
// integers.
func smallest(ids []string) string {
	best := ids[0]
	for _, id := range ids[1:] {
		if lessID(id, best) {
			best = id
		}
	}
	return best
}

func lessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

package docx

import (
	"path"
	"strings"
)

// Relationship is one entry of a part's relationship table. Part holds the
// target resolved to a package part name; it is empty for external targets.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	Part     string
	External bool
}

// Relationships is the relationship table of a single source part.
type Relationships struct {
	source string
	byID   map[string]Relationship
	order  []string
}

func newRelationships(source string) *Relationships {
	return &Relationships{
		source: source,
		byID:   make(map[string]Relationship),
	}
}

func (r *Relationships) add(x relationshipXML) {
	rel := Relationship{
		ID:       x.ID,
		Type:     x.Type,
		Target:   x.Target,
		External: strings.EqualFold(x.TargetMode, "External"),
	}
	if !rel.External {
		rel.Part = resolveTarget(r.source, x.Target)
	}
	if _, dup := r.byID[rel.ID]; !dup {
		r.order = append(r.order, rel.ID)
	}
	r.byID[rel.ID] = rel
}

// resolveTarget resolves a relationship target against the directory of its
// source part. Absolute targets are relative to the package root.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Clean(path.Join(path.Dir(source), target)), "/")
}

// Source returns the name of the part that owns the table.
func (r *Relationships) Source() string {
	return r.source
}

// Lookup returns the relationship with the given id.
func (r *Relationships) Lookup(id string) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	rel, ok := r.byID[id]
	return rel, ok
}

// Len returns the number of relationships.
func (r *Relationships) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// All returns the relationships in declaration order.
func (r *Relationships) All() []Relationship {
	if r == nil {
		return nil
	}
	out := make([]Relationship, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// FirstOfType returns the first relationship whose type URI ends with
// suffix, such as "/styles".
func (r *Relationships) FirstOfType(suffix string) (Relationship, bool) {
	for _, rel := range r.All() {
		if strings.HasSuffix(rel.Type, suffix) {
			return rel, true
		}
	}
	return Relationship{}, false
}

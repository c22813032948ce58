// Package diag collects non-fatal problems found while parsing a document.
//
// Library packages never log. Anything worth reporting that does not stop
// the parse is recorded on a [Collector] and surfaces as
// model.Document.Diagnostics.
package diag

import (
	"fmt"

	"github.com/tsawler/docstruct/model"
)

// Collector accumulates diagnostics in the order they are reported. A nil
// *Collector discards everything.
type Collector struct {
	items []model.Diagnostic
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{items: make([]model.Diagnostic, 0)}
}

// Add records a diagnostic for component.
func (c *Collector) Add(component, message string) {
	if c == nil {
		return
	}
	c.items = append(c.items, model.Diagnostic{Component: component, Message: message})
}

// Addf records a formatted diagnostic for component.
func (c *Collector) Addf(component, format string, args ...any) {
	if c == nil {
		return
	}
	c.Add(component, fmt.Sprintf(format, args...))
}

// Len returns the number of diagnostics recorded so far.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns a copy of the recorded diagnostics. The result is never nil.
func (c *Collector) Items() []model.Diagnostic {
	if c == nil {
		return []model.Diagnostic{}
	}
	out := make([]model.Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

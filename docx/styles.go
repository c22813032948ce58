package docx

// ResolvedStyle contains the properties of a style after inheritance.
type ResolvedStyle struct {
	ID   string
	Name string
	Type string // paragraph, character, table

	// OutlineLevel is the 0-based outline level, or -1 for body text.
	OutlineLevel int

	Bold   bool
	Italic bool
}

// StyleResolver resolves styles with inheritance support.
type StyleResolver struct {
	styles   map[string]*styleDefXML
	defaults runPropsXML
	resolved map[string]*ResolvedStyle
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:   make(map[string]*styleDefXML),
		resolved: make(map[string]*ResolvedStyle),
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		sr.styles[style.StyleID] = style
	}
	sr.defaults = styles.DocDefaults.RPrDefault.RPr

	return sr
}

// Len returns the number of style definitions.
func (sr *StyleResolver) Len() int {
	return len(sr.styles)
}

// Resolve returns the fully resolved style for the given style ID. A style
// that is not defined resolves to one whose name is the id itself, so
// built-in ids such as "Heading2" still read as headings.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	resolved := sr.defaultStyle()
	resolved.ID = styleID
	resolved.Name = styleID

	if def, ok := sr.styles[styleID]; ok {
		resolved.Type = def.Type
		if def.Name.Val != "" {
			resolved.Name = def.Name.Val
		}
		for _, sid := range sr.buildInheritanceChain(styleID) {
			if d, ok := sr.styles[sid]; ok {
				applyStyleDef(resolved, d)
			}
		}
	}

	sr.resolved[styleID] = resolved
	return resolved
}

// defaultStyle returns a style carrying the document defaults.
func (sr *StyleResolver) defaultStyle() *ResolvedStyle {
	s := &ResolvedStyle{OutlineLevel: -1}
	if sr.defaults.Bold.set() {
		s.Bold = sr.defaults.Bold.value()
	}
	if sr.defaults.Italic.set() {
		s.Italic = sr.defaults.Italic.value()
	}
	return s
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		chain = append([]string{current}, chain...)

		def, ok := sr.styles[current]
		if !ok {
			break
		}
		current = def.BasedOn.Val
	}

	return chain
}

// applyStyleDef applies a style definition's properties to a resolved style.
func applyStyleDef(resolved *ResolvedStyle, def *styleDefXML) {
	if level := parseOutlineLevel(def.PPr.OutlineLvl.Val); level >= 0 {
		resolved.OutlineLevel = level
	}
	if def.RPr.Bold.set() {
		resolved.Bold = def.RPr.Bold.value()
	}
	if def.RPr.Italic.set() {
		resolved.Italic = def.RPr.Italic.value()
	}
}

// ResolvedRun contains resolved formatting for a text run.
type ResolvedRun struct {
	Text   string
	Bold   bool
	Italic bool
}

// ResolveRun combines the paragraph style with the run's direct formatting.
func (sr *StyleResolver) ResolveRun(paragraphStyle string, run *Run) ResolvedRun {
	base := sr.Resolve(paragraphStyle)
	resolved := ResolvedRun{
		Text:   run.Text(),
		Bold:   base.Bold,
		Italic: base.Italic,
	}
	if run.props.Bold.set() {
		resolved.Bold = run.props.Bold.value()
	}
	if run.props.Italic.set() {
		resolved.Italic = run.props.Italic.value()
	}
	return resolved
}

// ResolveParagraph returns the paragraph's resolved style, with a direct
// outline level taking precedence over the style's.
func (sr *StyleResolver) ResolveParagraph(p *Paragraph) ResolvedStyle {
	style := *sr.Resolve(p.StyleID())
	if lvl := p.OutlineLevel(); lvl >= 0 {
		style.OutlineLevel = lvl
	}
	return style
}

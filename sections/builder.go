// Package sections builds the nested section tree of a document from a
// sequence of classified paragraphs.
package sections

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docstruct/diag"
	"github.com/tsawler/docstruct/internal/textclean"
	"github.com/tsawler/docstruct/model"
)

// Source records which signal produced a heading level.
type Source int

const (
	SourceNone Source = iota
	SourceStyle
	SourceOutline
	SourceText
)

func (s Source) String() string {
	switch s {
	case SourceStyle:
		return "style"
	case SourceOutline:
		return "outline"
	case SourceText:
		return "text"
	default:
		return "none"
	}
}

const (
	// MaxStyleLevel bounds levels taken from style names and outline levels.
	MaxStyleLevel = 9
	// MaxTextLevel bounds levels taken from numbered text.
	MaxTextLevel = 6
)

var (
	digits       = regexp.MustCompile(`\d+`)
	numberedText = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.*)$`)
)

// StyleSignal is what the paragraph's style says about heading level.
// OutlineLevel is 0-based, or -1 when absent.
type StyleSignal struct {
	Name         string
	OutlineLevel int
}

// Heading is the classification of one paragraph. Level 0 means the
// paragraph is not a heading.
type Heading struct {
	Level  int
	Number string
	Title  string
	Source Source
}

// Config controls heading detection.
type Config struct {
	// TextPattern enables headings detected from a leading "1.2 " number
	// when the style carries no level.
	TextPattern bool
	// MaxLevel caps every detected level. Zero means no extra cap.
	MaxLevel int
}

// DefaultConfig returns the detection settings used by the assembler.
func DefaultConfig() Config {
	return Config{TextPattern: true}
}

// StyleLevel returns the heading level named by a style: a style whose name
// contains "heading" or "标题" takes the first number in its name (1 when
// there is none); otherwise a style outline level counts from 1.
func StyleLevel(sig StyleSignal) (int, Source) {
	name := strings.ToLower(sig.Name)
	if strings.Contains(name, "heading") || strings.Contains(name, "标题") {
		level := 1
		if m := digits.FindString(name); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				level = n
			}
		}
		return min(max(level, 1), MaxStyleLevel), SourceStyle
	}
	if sig.OutlineLevel >= 0 && sig.OutlineLevel < MaxStyleLevel {
		return sig.OutlineLevel + 1, SourceOutline
	}
	return 0, SourceNone
}

// TextLevel splits a leading "N(.N)* " number from text. The level is the
// number of components, capped at MaxTextLevel.
func TextLevel(text string) (level int, number, title string) {
	m := numberedText.FindStringSubmatch(text)
	if m == nil {
		return 0, "", text
	}
	level = min(strings.Count(m[1], ".")+1, MaxTextLevel)
	return level, m[1], m[2]
}

// Builder maintains the stack of open sections.
type Builder struct {
	cfg   Config
	diags *diag.Collector
	root  *model.Section
	stack []*model.Section
}

// NewBuilder returns a builder whose stack holds only the root section.
func NewBuilder(cfg Config, diags *diag.Collector) *Builder {
	root := model.NewSection(model.RootTitle, "", 0)
	return &Builder{
		cfg:   cfg,
		diags: diags,
		root:  root,
		stack: []*model.Section{root},
	}
}

// Classify determines whether a paragraph is a heading. A style-derived
// level always wins; the text pattern is only a fallback when the style
// carries no level. When both are present and disagree a diagnostic is
// recorded. Paragraphs without text are never headings.
func (b *Builder) Classify(sig StyleSignal, text string) Heading {
	if strings.TrimSpace(text) == "" {
		return Heading{Title: text}
	}

	textLevel, number, rest := 0, "", text
	if b.cfg.TextPattern {
		textLevel, number, rest = TextLevel(text)
	}

	h := Heading{Title: text}
	if level, src := StyleLevel(sig); level > 0 {
		h.Level, h.Source = level, src
		if textLevel > 0 && textLevel != level {
			b.diags.Addf("sections", "heading-level ambiguity for %q: %s gives %d, numbering %q gives %d; using %s",
				textclean.Truncate(text, 40), src, level, number, textLevel, src)
		}
		if textLevel == level {
			h.Number, h.Title = number, rest
		}
	} else if textLevel > 0 {
		h.Level, h.Source = textLevel, SourceText
		h.Number, h.Title = number, rest
	}

	if h.Level > 0 && b.cfg.MaxLevel > 0 && h.Level > b.cfg.MaxLevel {
		h.Level = b.cfg.MaxLevel
	}
	return h
}

// Open starts a new section for a heading: sections at the same or a deeper
// level are closed, the new section is appended to the remaining top and
// becomes the top. The root is never closed.
func (b *Builder) Open(h Heading) *model.Section {
	level := max(h.Level, 1)
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].Level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	s := model.NewSection(h.Title, h.Number, level)
	b.Current().Append(s)
	b.stack = append(b.stack, s)
	return s
}

// Append adds a node to the innermost open section.
func (b *Builder) Append(n model.Node) {
	b.Current().Append(n)
}

// Current returns the innermost open section.
func (b *Builder) Current() *model.Section {
	return b.stack[len(b.stack)-1]
}

// Depth returns the number of open sections, including the root.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Root returns the root section.
func (b *Builder) Root() *model.Section {
	return b.root
}

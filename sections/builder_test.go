package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docstruct/diag"
	"github.com/tsawler/docstruct/model"
)

func noStyle() StyleSignal { return StyleSignal{OutlineLevel: -1} }

func TestStyleLevel(t *testing.T) {
	tests := []struct {
		name  string
		sig   StyleSignal
		level int
		src   Source
	}{
		{"heading 1", StyleSignal{Name: "heading 1", OutlineLevel: -1}, 1, SourceStyle},
		{"Heading 3", StyleSignal{Name: "Heading 3", OutlineLevel: -1}, 3, SourceStyle},
		{"no number", StyleSignal{Name: "Heading", OutlineLevel: -1}, 1, SourceStyle},
		{"chinese", StyleSignal{Name: "标题 2", OutlineLevel: -1}, 2, SourceStyle},
		{"clamped", StyleSignal{Name: "heading 12", OutlineLevel: -1}, 9, SourceStyle},
		{"outline", StyleSignal{Name: "Custom", OutlineLevel: 1}, 2, SourceOutline},
		{"name wins over outline", StyleSignal{Name: "Heading 4", OutlineLevel: 0}, 4, SourceStyle},
		{"body", StyleSignal{Name: "Normal", OutlineLevel: -1}, 0, SourceNone},
		{"body outline", StyleSignal{Name: "Normal", OutlineLevel: 9}, 0, SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, src := StyleLevel(tt.sig)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.src, src)
		})
	}
}

func TestTextLevel(t *testing.T) {
	tests := []struct {
		text   string
		level  int
		number string
		title  string
	}{
		{"1 Intro", 1, "1", "Intro"},
		{"1.1 Scope", 2, "1.1", "Scope"},
		{"2.3.4 Deep", 3, "2.3.4", "Deep"},
		{"1.2.3.4.5.6.7 Very deep", 6, "1.2.3.4.5.6.7", "Very deep"},
		{"Intro", 0, "", "Intro"},
		{"1.Intro", 0, "", "1.Intro"},
		{"1. Intro", 0, "", "1. Intro"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			level, number, title := TextLevel(tt.text)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestClassify(t *testing.T) {
	d := diag.New()
	b := NewBuilder(DefaultConfig(), d)

	h := b.Classify(noStyle(), "1 Intro")
	assert.Equal(t, Heading{Level: 1, Number: "1", Title: "Intro", Source: SourceText}, h)

	h = b.Classify(StyleSignal{Name: "heading 2", OutlineLevel: -1}, "Scope")
	assert.Equal(t, Heading{Level: 2, Title: "Scope", Source: SourceStyle}, h)

	h = b.Classify(StyleSignal{Name: "heading 2", OutlineLevel: -1}, "1.1 Scope")
	assert.Equal(t, Heading{Level: 2, Number: "1.1", Title: "Scope", Source: SourceStyle}, h)

	h = b.Classify(noStyle(), "Plain text")
	assert.Equal(t, 0, h.Level)

	h = b.Classify(StyleSignal{Name: "heading 1", OutlineLevel: -1}, "   ")
	assert.Equal(t, 0, h.Level, "empty headings are not headings")

	assert.Equal(t, 0, d.Len())
}

func TestClassifyAmbiguity(t *testing.T) {
	d := diag.New()
	b := NewBuilder(DefaultConfig(), d)

	h := b.Classify(StyleSignal{Name: "heading 1", OutlineLevel: -1}, "2.1 Mixed")
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, SourceStyle, h.Source)
	assert.Equal(t, "2.1 Mixed", h.Title, "number kept when it disagrees with the style")

	require.Equal(t, 1, d.Len())
	item := d.Items()[0]
	assert.Equal(t, "sections", item.Component)
	assert.Contains(t, item.Message, "heading-level ambiguity")
}

func TestClassifyAmbiguityLongTitle(t *testing.T) {
	d := diag.New()
	b := NewBuilder(DefaultConfig(), d)

	title := "2.1 " + strings.Repeat("word ", 20)
	b.Classify(StyleSignal{Name: "heading 1", OutlineLevel: -1}, title)

	require.Equal(t, 1, d.Len())
	msg := d.Items()[0].Message
	assert.Contains(t, msg, title[:40]+"...")
	assert.NotContains(t, msg, title)
}

func TestClassifyConfig(t *testing.T) {
	b := NewBuilder(Config{}, nil)
	assert.Equal(t, 0, b.Classify(noStyle(), "1 Intro").Level, "text pattern disabled")

	b = NewBuilder(Config{TextPattern: true, MaxLevel: 2}, nil)
	assert.Equal(t, 2, b.Classify(noStyle(), "1.2.3 Deep").Level)
	assert.Equal(t, 2, b.Classify(StyleSignal{Name: "heading 5", OutlineLevel: -1}, "Deep").Level)
}

// titles renders a section tree as "title(children)" for compact comparison.
func titles(s *model.Section) string {
	var parts []string
	for _, n := range s.Content {
		if c, ok := n.(*model.Section); ok {
			if len(c.Content) > 0 {
				parts = append(parts, c.Title+"("+titles(c)+")")
			} else {
				parts = append(parts, c.Title)
			}
		}
	}
	return strings.Join(parts, ",")
}

func TestBuilderNesting(t *testing.T) {
	b := NewBuilder(DefaultConfig(), nil)
	for i, level := range []int{1, 2, 1, 3, 2} {
		b.Open(Heading{Level: level, Title: string(rune('A' + i))})
	}

	// A(B), C(D, E): level 3 opens under C since no level 2 is open, and the
	// final level 2 closes D and nests under C.
	assert.Equal(t, "A(B),C(D,E)", titles(b.Root()))
	assert.Equal(t, model.RootTitle, b.Root().Title)
	assert.Equal(t, 0, b.Root().Level)
	assert.Equal(t, 3, b.Depth())
}

func TestBuilderLevelsIncrease(t *testing.T) {
	b := NewBuilder(DefaultConfig(), nil)
	for _, level := range []int{2, 1, 3, 3, 1, 4, 2} {
		b.Open(Heading{Level: level, Title: "x"})
	}

	var check func(parent *model.Section)
	check = func(parent *model.Section) {
		for _, n := range parent.Content {
			if c, ok := n.(*model.Section); ok {
				assert.Greater(t, c.Level, parent.Level)
				check(c)
			}
		}
	}
	check(b.Root())
}

func TestBuilderScenario(t *testing.T) {
	b := NewBuilder(DefaultConfig(), nil)

	for _, text := range []string{"1 Intro", "Hello", "1.1 Scope", "World"} {
		h := b.Classify(noStyle(), text)
		if h.Level > 0 {
			b.Open(h)
			continue
		}
		b.Append(&model.Paragraph{Text: text})
	}

	root := b.Root()
	require.Len(t, root.Content, 1)
	intro := root.Content[0].(*model.Section)
	assert.Equal(t, "Intro", intro.Title)
	assert.Equal(t, "1", intro.Number)
	assert.Equal(t, 1, intro.Level)
	require.Len(t, intro.Content, 2)
	assert.Equal(t, "Hello", intro.Content[0].(*model.Paragraph).Text)

	scope := intro.Content[1].(*model.Section)
	assert.Equal(t, "Scope", scope.Title)
	assert.Equal(t, 2, scope.Level)
	require.Len(t, scope.Content, 1)
	assert.Equal(t, "World", scope.Content[0].(*model.Paragraph).Text)
	assert.Same(t, scope, b.Current())
}

func TestBuilderContentBeforeFirstHeading(t *testing.T) {
	b := NewBuilder(DefaultConfig(), nil)
	b.Append(&model.Paragraph{Text: "preamble"})
	b.Open(Heading{Level: 1, Title: "One"})

	require.Len(t, b.Root().Content, 2)
	assert.Equal(t, model.KindParagraph, b.Root().Content[0].Kind())
	assert.Equal(t, model.KindSection, b.Root().Content[1].Kind())
}

package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// tocEntryLimit is the text length above which a paragraph is taken to be
// body text rather than a table-of-contents entry.
const tocEntryLimit = 50

var (
	tocTitle = regexp.MustCompile(`(?i)^(目\s*录|contents?)$`)
	tocEntry = regexp.MustCompile(`(?i)^toc\s*\d+$`)
)

// TOCFilter drops table-of-contents paragraphs. A TOC starts at a paragraph
// whose text is "Contents" (or 目录) or whose style is "TOC Heading", and
// ends at the first heading or at a paragraph longer than 50 characters.
// The paragraph that ends it is kept. Paragraphs styled "toc N" are always
// dropped.
type TOCFilter struct {
	active bool
}

// Skip reports whether the paragraph belongs to a table of contents.
func (f *TOCFilter) Skip(style, text string, heading bool) bool {
	style = strings.TrimSpace(style)
	if tocEntry.MatchString(style) {
		return true
	}

	text = strings.TrimSpace(text)
	if !f.active {
		if tocTitle.MatchString(text) || strings.EqualFold(style, "toc heading") {
			f.active = true
			return true
		}
		return false
	}

	if heading || utf8.RuneCountInString(text) > tocEntryLimit {
		f.active = false
		return false
	}
	return true
}

// Active reports whether the filter is inside a table of contents.
func (f *TOCFilter) Active() bool {
	return f.active
}

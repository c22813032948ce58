package docstruct

// Options holds configuration for structure extraction.
type Options struct {
	// SkipTableOfContents drops table-of-contents paragraphs.
	SkipTableOfContents bool
	// TextPatternHeadings detects "1.2 Title" paragraphs as headings when
	// their style carries no heading level.
	TextPatternHeadings bool
	// HeaderFooterImages collects images from header and footer parts.
	HeaderFooterImages bool
	// ImageDimensions reads pixel sizes from image headers.
	ImageDimensions bool
	// MaxHeadingLevel caps heading levels; 0 means no cap.
	MaxHeadingLevel int
}

// DefaultOptions returns the options used by Open and FromBytes.
func DefaultOptions() Options {
	return Options{
		SkipTableOfContents: true,
		TextPatternHeadings: true,
		HeaderFooterImages:  true,
		ImageDimensions:     true,
		MaxHeadingLevel:     0,
	}
}

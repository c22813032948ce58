package export

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"

	"github.com/tsawler/docstruct/model"
)

// Markdown renders the document as HTML and converts it to GitHub-flavoured
// Markdown, so tables become pipe tables.
func Markdown(doc *model.Document) (string, error) {
	var page bytes.Buffer
	if err := html.Render(&page, bodyNode(doc)); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converted, err := converter.ConvertString(page.String())
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(converted) + "\n", nil
}

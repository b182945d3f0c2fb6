package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Markdown converts the page content (main, or body when there is none) to
// Markdown. baseURL resolves relative links and may be empty.
func Markdown(screen *Screen, baseURL string) (string, error) {
	doc := screen.Document()

	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("body").First()
	}
	if content.Length() == 0 {
		return "", nil
	}

	// Drop non-rendered elements before conversion
	content = content.Clone()
	content.Find("script, style, noscript, template").Remove()

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("failed to serialize page content: %w", err)
	}

	converter := md.NewConverter(baseURL, true, nil)
	converted, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert page to markdown: %w", err)
	}

	return strings.TrimSpace(converted) + "\n", nil
}

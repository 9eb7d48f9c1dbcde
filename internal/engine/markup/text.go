package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VisibleLines returns the document's text with script and style content
// removed, split on newlines, trimmed, empty lines dropped. The document
// itself is left untouched.
func VisibleLines(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}
	sel := doc.Clone()
	sel.Find("script, style").Remove()

	var lines []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

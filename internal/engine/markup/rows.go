// internal/engine/markup/rows.go
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/iemrank/pkg/models"
	"golang.org/x/net/html"
)

var (
	rowMatcher  = mustParseGroup("tr")
	cellMatcher = mustParseGroup("td, th")
)

func mustParseGroup(sel string) cascadia.SelectorGroup {
	group, err := cascadia.ParseGroup(sel)
	if err != nil {
		panic("markup: invalid selector " + sel + ": " + err.Error())
	}
	return group
}

// TableRows extracts every table row of the document in document order.
// Cells are td and th elements, nested ones included. A row without cells,
// or whose cells are all empty, is dropped.
func TableRows(doc *goquery.Document) models.Dataset {
	var rows models.Dataset
	if doc == nil {
		return rows
	}
	for _, root := range doc.Nodes {
		for _, tr := range cascadia.QueryAll(root, rowMatcher) {
			cells := cascadia.QueryAll(tr, cellMatcher)
			if len(cells) == 0 {
				continue
			}
			row := make(models.Row, 0, len(cells))
			filled := false
			for _, cell := range cells {
				text := CellText(cell)
				if text != "" {
					filled = true
				}
				row = append(row, text)
			}
			if filled {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// ParseRows parses markup and returns its table rows
func ParseRows(markup string) (models.Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return TableRows(doc), nil
}

// CellText joins the trimmed, non-empty text nodes under n with single
// spaces and collapses any whitespace left inside them.
func CellText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

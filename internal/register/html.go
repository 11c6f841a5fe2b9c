package register

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML reduces an HTML page to a Document of candidate tables. Header
// cells come from <th> elements when present; otherwise the table's rows are
// kept as-is and the resolver decides whether the first row is a header.
func ParseHTML(html string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var out Document
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		t := Table{Caption: CleanText(table.Find("caption").First().Text())}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			ths := row.Find("th")
			if ths.Length() > 0 && len(t.Headers) == 0 && len(t.Rows) == 0 {
				ths.Each(func(_ int, cell *goquery.Selection) {
					t.Headers = append(t.Headers, CleanText(cell.Text()))
				})
				return
			}
			var cells []string
			row.Find("td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, CleanText(cell.Text()))
			})
			if len(cells) > 0 {
				t.Rows = append(t.Rows, cells)
			}
		})

		if len(t.Headers) > 0 || len(t.Rows) > 0 {
			out.Tables = append(out.Tables, t)
		}
	})

	return out, nil
}

// ExportKind tells the caller how to parse a discovered export payload.
type ExportKind string

const (
	ExportCSV  ExportKind = "csv"
	ExportXLSX ExportKind = "xlsx"
)

// ExportLink is a downloadable register export discovered on the page.
type ExportLink struct {
	URL  string
	Kind ExportKind
}

// FindExportLink scans anchor tags for a register export download. CSV wins
// over XLSX because it is the cheaper parse; the legacy export.aspx form is
// the last resort. Returns false when the page offers no export, which the
// caller treats as "use the page's own tables".
func FindExportLink(html, baseURL string) (ExportLink, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ExportLink{}, false
	}

	var csvLink, xlsxLink, aspxLink string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lowerHref := strings.ToLower(href)
		label := strings.ToLower(CleanText(a.Text()))

		switch {
		case strings.Contains(lowerHref, ".csv") || strings.Contains(label, "csv"):
			if csvLink == "" {
				csvLink = href
			}
		case strings.Contains(lowerHref, ".xlsx") || strings.Contains(label, "excel"):
			if xlsxLink == "" {
				xlsxLink = href
			}
		case strings.Contains(label, "download"):
			if csvLink == "" {
				csvLink = href
			}
		case strings.Contains(lowerHref, "export.aspx") && strings.Contains(lowerHref, "format=csv"):
			if aspxLink == "" {
				aspxLink = href
			}
		}
	})

	switch {
	case csvLink != "":
		return ExportLink{URL: absoluteURL(csvLink, baseURL), Kind: ExportCSV}, true
	case aspxLink != "":
		return ExportLink{URL: absoluteURL(aspxLink, baseURL), Kind: ExportCSV}, true
	case xlsxLink != "":
		return ExportLink{URL: absoluteURL(xlsxLink, baseURL), Kind: ExportXLSX}, true
	}
	return ExportLink{}, false
}

// absoluteURL resolves href against the page URL it was found on.
func absoluteURL(href, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

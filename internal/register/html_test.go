package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registerPage = `
<html><body>
<nav><table><tr><td>Home</td><td>Registers</td></tr></table></nav>
<h1>Netto shortposities actueel</h1>
<table>
  <caption>Register netto shortposities</caption>
  <tr><th>Naam van de emittent</th><th>Positie houder</th><th>Netto Shortpositie</th><th>Positiedatum</th></tr>
  <tr><td>Acme&nbsp;NV</td><td>Fund X</td><td>1,23</td><td>15-01-2025</td></tr>
  <tr><td>Beta BV</td><td>Fund Y</td><td>0,80</td><td>14-01-2025</td></tr>
</table>
</body></html>`

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTML(registerPage)

	require.NoError(t, err)
	require.Len(t, doc.Tables, 2)

	table := doc.Tables[1]
	assert.Equal(t, "Register netto shortposities", table.Caption)
	assert.Equal(t, []string{"Naam van de emittent", "Positie houder", "Netto Shortpositie", "Positiedatum"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Acme NV", table.Rows[0][0])
}

func TestParseHTMLEndToEnd(t *testing.T) {
	doc, err := ParseHTML(registerPage)
	require.NoError(t, err)

	table, err := Locate(doc, NetShortPositions())
	require.NoError(t, err)

	filings, stats := Extract(table, NetShortPositions(), sourceURL, nil)

	assert.Equal(t, 2, stats.Kept)
	require.Len(t, filings, 2)
	assert.Equal(t, "2025-01-15", filings[0].DateISO)
}

func TestParseHTMLNoTables(t *testing.T) {
	doc, err := ParseHTML("<html><body><p>Geen register</p></body></html>")

	require.NoError(t, err)
	assert.Empty(t, doc.Tables)
}

func TestFindExportLink(t *testing.T) {
	base := "https://www.afm.nl/nl-nl/sector/registers/shortpos"

	tests := []struct {
		name     string
		html     string
		wantURL  string
		wantKind ExportKind
		found    bool
	}{
		{
			name:     "relative csv href",
			html:     `<a href="/files/shortpos.csv">Exporteer</a>`,
			wantURL:  "https://www.afm.nl/files/shortpos.csv",
			wantKind: ExportCSV,
			found:    true,
		},
		{
			name:     "csv label",
			html:     `<a href="/export?id=7">Download als CSV</a>`,
			wantURL:  "https://www.afm.nl/export?id=7",
			wantKind: ExportCSV,
			found:    true,
		},
		{
			name:     "legacy export endpoint",
			html:     `<a href="/common/export.aspx?type=shortpos&format=csv">Register</a>`,
			wantURL:  "https://www.afm.nl/common/export.aspx?type=shortpos&format=csv",
			wantKind: ExportCSV,
			found:    true,
		},
		{
			name:     "xlsx when no csv offered",
			html:     `<a href="/files/register.xlsx">Spreadsheet</a>`,
			wantURL:  "https://www.afm.nl/files/register.xlsx",
			wantKind: ExportXLSX,
			found:    true,
		},
		{
			name:     "csv beats xlsx",
			html:     `<a href="/files/register.xlsx">Excel</a><a href="/files/register.csv">CSV</a>`,
			wantURL:  "https://www.afm.nl/files/register.csv",
			wantKind: ExportCSV,
			found:    true,
		},
		{
			name:  "no export at all",
			html:  `<a href="/over-ons">Over ons</a>`,
			found: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, found := FindExportLink("<html><body>"+tt.html+"</body></html>", base)

			require.Equal(t, tt.found, found)
			if found {
				assert.Equal(t, tt.wantURL, link.URL)
				assert.Equal(t, tt.wantKind, link.Kind)
			}
		})
	}
}

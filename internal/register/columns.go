package register

import (
	"strings"
)

// Columns maps semantic roles to column indexes in the located table.
// -1 means the role could not be resolved; the extractor then falls back to
// per-row shape scanning for percent and date.
type Columns struct {
	Issuer  int
	ISIN    int
	Filer   int
	Percent int
	Date    int
}

func unresolvedColumns() Columns {
	return Columns{Issuer: -1, ISIN: -1, Filer: -1, Percent: -1, Date: -1}
}

// claimed reports which column indexes are already assigned to a role.
func (c Columns) claimed() map[int]bool {
	m := make(map[int]bool, 5)
	for _, idx := range []int{c.Issuer, c.ISIN, c.Filer, c.Percent, c.Date} {
		if idx >= 0 {
			m[idx] = true
		}
	}
	return m
}

// ResolveColumns maps the table's columns to roles using two cascading
// strategies: header keyword matching first, then value-shape heuristics on
// the first data row for whatever is still unresolved. The second return
// value reports that the table had no explicit header row but its first data
// row matched header keywords, in which case the extractor must skip it.
//
// Resolution is a pure function of the table and spec: applying it twice
// yields the same map.
func ResolveColumns(t Table, spec Spec) (Columns, bool) {
	cols := unresolvedColumns()

	headers := t.Headers
	implicitHeader := false
	if len(headers) == 0 && len(t.Rows) > 0 {
		headers = t.Rows[0]
		implicitHeader = true
	}

	matched := resolveByHeaders(&cols, headers, spec)
	skipFirstRow := implicitHeader && matched > 0

	firstRow := firstDataRow(t, skipFirstRow)
	if firstRow != nil {
		resolveByShape(&cols, firstRow)
	}
	return cols, skipFirstRow
}

// resolveByHeaders is Strategy A: per-role keyword lists tested against
// lowercased header cells in fixed priority order. A column is assigned to
// at most one role; the first keyword hit wins the column for that role.
func resolveByHeaders(cols *Columns, headers []string, spec Spec) int {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(h)
	}

	roles := []struct {
		target   *int
		keywords []string
	}{
		{&cols.Issuer, spec.IssuerKeywords},
		{&cols.ISIN, spec.ISINKeywords},
		{&cols.Filer, spec.FilerKeywords},
		{&cols.Percent, spec.PercentKeywords},
		{&cols.Date, spec.DateKeywords},
	}

	matched := 0
	for _, role := range roles {
		for i, header := range lowered {
			if *role.target >= 0 {
				break
			}
			if cols.claimed()[i] || header == "" {
				continue
			}
			for _, kw := range role.keywords {
				if strings.Contains(header, kw) {
					*role.target = i
					matched++
					break
				}
			}
		}
	}
	return matched
}

// resolveByShape is Strategy B: when headers were absent or ambiguous,
// inspect the first data row's cell values. Percent, date and ISIN are
// claimed by shape; issuer defaults to the leftmost free column; filer is
// picked from what remains by name-likelihood score.
func resolveByShape(cols *Columns, row []string) {
	if cols.Percent < 0 {
		for i, cell := range row {
			if !cols.claimed()[i] && cell != "" && looksLikePercent(cell) {
				cols.Percent = i
				break
			}
		}
	}
	if cols.Date < 0 {
		for i, cell := range row {
			if !cols.claimed()[i] && looksLikeDate(cell) {
				cols.Date = i
				break
			}
		}
	}
	if cols.ISIN < 0 {
		for i, cell := range row {
			if !cols.claimed()[i] && IsISIN(cell) {
				cols.ISIN = i
				break
			}
		}
	}
	if cols.Issuer < 0 {
		for i := range row {
			if !cols.claimed()[i] {
				cols.Issuer = i
				break
			}
		}
	}
	if cols.Filer < 0 {
		cols.Filer = pickFilerColumn(cols, row)
	}
}

// pickFilerColumn chooses the most name-looking unclaimed column: highest
// nameScore wins, ties keep the original column order. When no cell scores
// above zero the longest remaining value wins instead.
func pickFilerColumn(cols *Columns, row []string) int {
	claimed := cols.claimed()
	best, bestScore := -1, 0.0
	longest, longestLen := -1, 0

	for i, cell := range row {
		if claimed[i] || cell == "" {
			continue
		}
		if s := nameScore(cell); s > bestScore {
			best, bestScore = i, s
		}
		if len(cell) > longestLen {
			longest, longestLen = i, len(cell)
		}
	}
	if best >= 0 {
		return best
	}
	return longest
}

// firstDataRow returns the row Strategy B should inspect, honoring a
// consumed implicit header.
func firstDataRow(t Table, skipFirst bool) []string {
	rows := t.Rows
	if skipFirst {
		if len(rows) < 2 {
			return nil
		}
		return rows[1]
	}
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

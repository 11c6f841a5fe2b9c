package register

import (
	"log/slog"

	"afmwatch/pkg/contracts/domain"
)

// ApproveFunc is the optional allow/deny predicate consulted per row after
// field extraction and before a Filing is constructed. It is injected by the
// caller; extraction itself carries no filter state.
type ApproveFunc func(issuer, isin string) bool

// Stats counts what extraction saw and what survived. Rejected rows are
// dropped silently but always counted.
type Stats struct {
	Seen     int
	Kept     int
	Filtered int
}

// Extract walks the located table's data rows and emits canonical Filings.
// Rows missing issuer, filer or a percentage after all fallbacks are
// discarded; field-level parse failures degrade instead of failing the row.
func Extract(t Table, spec Spec, sourceURL string, approve ApproveFunc) ([]domain.Filing, Stats) {
	cols, skipFirst := ResolveColumns(t, spec)

	var stats Stats
	var out []domain.Filing

	rows := t.Rows
	if skipFirst && len(rows) > 0 {
		rows = rows[1:]
	}

	for _, row := range rows {
		stats.Seen++

		issuer := CleanText(cellAt(row, cols.Issuer))
		filer := CleanText(cellAt(row, cols.Filer))
		percentRaw := CleanText(cellAt(row, cols.Percent))
		dateRaw := cellAt(row, cols.Date)
		isin := CleanText(cellAt(row, cols.ISIN))

		// Last-resort fallbacks: the resolved index can miss on ragged
		// rows, so re-scan the row itself by shape.
		if percentRaw == "" {
			percentRaw = firstMatch(row, looksLikePercent)
		}
		if CleanText(dateRaw) == "" {
			dateRaw = firstMatch(row, looksLikeDate)
		}
		if isin == "" {
			isin = firstMatch(row, IsISIN)
		}

		if issuer == "" || filer == "" || percentRaw == "" {
			slog.Debug("Dropping incomplete row",
				slog.String("register", spec.Slug),
				slog.String("issuer", issuer),
				slog.String("filer", filer))
			continue
		}

		if approve != nil && !approve(issuer, isin) {
			stats.Filtered++
			continue
		}

		raw, iso := ParseDate(dateRaw)
		out = append(out, domain.Filing{
			Issuer:       issuer,
			IssuerISIN:   isin,
			Filer:        filer,
			PercentRaw:   percentRaw,
			PercentValue: PercentToFloat(percentRaw),
			DateRaw:      raw,
			DateISO:      iso,
			SourceURL:    sourceURL,
			UniqueID:     UniqueID(issuer, filer, iso, percentRaw),
		})
		stats.Kept++
	}

	slog.Info("Extracted register rows",
		slog.String("register", spec.Slug),
		slog.Int("seen", stats.Seen),
		slog.Int("kept", stats.Kept),
		slog.Int("filtered", stats.Filtered))
	return out, stats
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func firstMatch(row []string, match func(string) bool) string {
	for _, cell := range row {
		c := CleanText(cell)
		if c != "" && match(c) {
			return c
		}
	}
	return ""
}

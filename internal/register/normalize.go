package register

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// \x{00A0}: HTML sources pad cells with non-breaking spaces.
	whitespaceRE = regexp.MustCompile(`[\s\x{00A0}]+`)
	numberRE     = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	percentRE    = regexp.MustCompile(`\d[\d.,]*\s*%`)
	isinRE       = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}\d$`)
	// Matches dd-mm-yyyy / dd/mm/yy style dates or yyyy-mm-dd / yyyy/mm/dd.
	dateRE = regexp.MustCompile(`(\d{2})[-/](\d{2})[-/](\d{2,4})|(\d{4})[-/](\d{2})[-/](\d{2})`)
)

// dateLayouts are tried in order by ParseDate. Register exports mix Dutch
// day-first forms with ISO, sometimes with a time suffix.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

// CleanText collapses all whitespace runs to single spaces and trims.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// PercentToFloat parses a locale-tolerant percentage string. It strips the
// percent sign, accepts comma or point decimals, and extracts the first
// numeric token. Values outside [0, 100] and unparsable input return 0.0;
// it never fails.
func PercentToFloat(s string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "%", ""), ",", "."))
	m := numberRE.FindString(cleaned)
	if m == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0.0
	}
	if v < 0 || v > 100 {
		return 0.0
	}
	return v
}

// ParseDate normalizes a date string to (raw, ISO yyyy-mm-dd). Known layouts
// are tried in order; failing those, a digit-pattern fallback reassembles the
// ISO form. On total failure both return values are the cleaned input, which
// is degraded but not an error.
func ParseDate(s string) (raw, iso string) {
	raw = CleanText(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return raw, t.Format("2006-01-02")
		}
	}
	if m := dateRE.FindStringSubmatch(raw); m != nil {
		if m[1] != "" {
			// day-month-year
			return raw, fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
		}
		// year-month-day
		return raw, fmt.Sprintf("%s-%s-%s", m[4], m[5], m[6])
	}
	return raw, raw
}

// UniqueID computes the deterministic fingerprint of a filing: SHA-256 of
// the pipe-joined identity fields, hex encoded, truncated to 16 characters.
// Stable across runs and platforms; used for idempotent dedupe and as the
// publish-time marker.
func UniqueID(issuer, filer, isoDate, percentRaw string) string {
	sum := sha256.Sum256([]byte(issuer + "|" + filer + "|" + isoDate + "|" + percentRaw))
	return hex.EncodeToString(sum[:])[:16]
}

// IsISIN reports whether s has the 12-character ISIN shape: two-letter
// country prefix, nine alphanumerics, one trailing check digit.
func IsISIN(s string) bool {
	return isinRE.MatchString(s)
}

// looksLikePercent reports whether a cell value is percentage-shaped: an
// explicit % suffix, or a bare number in (0, 50] which is the plausible
// range for disclosed positions. Date-shaped values are never percentages,
// even though their day component falls in that range.
func looksLikePercent(s string) bool {
	if percentRE.MatchString(s) {
		return true
	}
	if looksLikeDate(s) {
		return false
	}
	m := numberRE.FindString(s)
	if m == "" {
		return false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return false
	}
	return v > 0 && v <= 50
}

// looksLikeDate reports whether a cell value contains a recognizable
// day/month/year or year/month/day digit pattern.
func looksLikeDate(s string) bool {
	return dateRE.MatchString(s)
}

// nameScore is the name-likelihood heuristic used when picking the filer
// column among unassigned candidates: letters and spaces score up, digits
// score down hard so codes and numbers lose to names.
func nameScore(s string) float64 {
	t := CleanText(s)
	if t == "" {
		return 0
	}
	var letters, digits, spaces int
	for _, r := range t {
		switch {
		case r == ' ':
			spaces++
		case r >= '0' && r <= '9':
			digits++
		case isLetter(r):
			letters++
		}
	}
	return float64(letters) + 0.5*float64(spaces) - 1.5*float64(digits)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

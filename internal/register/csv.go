package register

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DecodeBytes turns a raw export payload into a string, trying encodings in
// order: UTF-16 when a byte-order mark is present, then UTF-8, then the
// regional fallbacks Windows-1252 and Latin-1, and finally a lossy UTF-8
// pass. It never fails; a garbled cell beats an aborted run.
func DecodeBytes(b []byte) string {
	if len(b) >= 2 {
		var dec *encoding.Decoder
		switch {
		case b[0] == 0xFF && b[1] == 0xFE:
			dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		case b[0] == 0xFE && b[1] == 0xFF:
			dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		}
		if dec != nil {
			if decoded, err := dec.Bytes(b); err == nil {
				return string(decoded)
			}
		}
	}

	if utf8.Valid(b) {
		// Strip a UTF-8 BOM if the exporter added one for Excel.
		return string(bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF}))
	}

	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(b); err == nil {
		return string(decoded)
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(b), "")
}

// sniffDelimiter guesses the CSV delimiter from the first 4KiB by counting
// candidate occurrences, preferring semicolon on ties since that is what the
// register exports actually use.
func sniffDelimiter(text string) rune {
	sample := text
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if i := strings.IndexByte(sample, '\n'); i > 0 {
		sample = sample[:i]
	}

	best, bestCount := ';', strings.Count(sample, ";")
	for _, cand := range []rune{',', '\t'} {
		if c := strings.Count(sample, string(cand)); c > bestCount {
			best, bestCount = cand, c
		}
	}
	return best
}

// ParseCSV parses a decoded delimited-text payload into a single-table
// Document. The first record is treated as the header row; column order and
// naming are resolved later, never assumed. An empty payload yields a
// Document with no tables.
func ParseCSV(text string) (Document, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return Document{}, nil
	}

	t := Table{}
	for _, cell := range records[0] {
		t.Headers = append(t.Headers, CleanText(cell))
	}
	for _, rec := range records[1:] {
		row := make([]string, 0, len(rec))
		for _, cell := range rec {
			row = append(row, CleanText(cell))
		}
		t.Rows = append(t.Rows, row)
	}
	return Document{Tables: []Table{t}}, nil
}

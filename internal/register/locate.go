package register

import (
	"errors"
	"strings"
)

// ErrNoTable reports that a document held no table resembling the register.
// Callers treat it as a soft failure: zero records, not an aborted run.
var ErrNoTable = errors.New("no register table found")

// Locate picks the table most likely to be the register out of a document's
// candidates by counting vocabulary hits in each table's header cells (or
// first row when there is no header). The highest score wins; ties resolve
// to the first table encountered, so unrecognized candidates (a bare CSV, a
// page in an unexpected language) still get a shot at value-shape resolution
// downstream.
func Locate(doc Document, spec Spec) (Table, error) {
	if len(doc.Tables) == 0 {
		return Table{}, ErrNoTable
	}
	bestIdx, bestScore := 0, vocabularyScore(doc.Tables[0], spec.Vocabulary)
	for i, t := range doc.Tables[1:] {
		if score := vocabularyScore(t, spec.Vocabulary); score > bestScore {
			bestIdx, bestScore = i+1, score
		}
	}
	return doc.Tables[bestIdx], nil
}

func vocabularyScore(t Table, vocabulary []string) int {
	cells := t.headerOrFirstRow()
	if len(cells) == 0 {
		return 0
	}
	joined := strings.ToLower(strings.Join(cells, " "))
	if t.Caption != "" {
		joined += " " + strings.ToLower(t.Caption)
	}

	score := 0
	for _, word := range vocabulary {
		if strings.Contains(joined, word) {
			score++
		}
	}
	return score
}

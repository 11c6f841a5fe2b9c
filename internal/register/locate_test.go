package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatePicksHighestVocabularyScore(t *testing.T) {
	doc := Document{Tables: []Table{
		{
			Headers: []string{"Pagina", "Link"},
			Rows:    [][]string{{"Home", "/"}},
		},
		{
			Headers: []string{"Naam van de emittent", "Positie houder", "Netto Shortpositie", "Positiedatum"},
			Rows:    [][]string{{"Acme NV", "Fund X", "1,23", "2025-01-15"}},
		},
		{
			Headers: []string{"Datum", "Nieuws"},
			Rows:    [][]string{{"2025-01-01", "Jaarverslag"}},
		},
	}}

	table, err := Locate(doc, NetShortPositions())

	require.NoError(t, err)
	assert.Equal(t, "Naam van de emittent", table.Headers[0])
}

func TestLocateTieResolvesToFirstTable(t *testing.T) {
	same := Table{
		Headers: []string{"Emittent", "Houder"},
		Rows:    [][]string{{"Acme NV", "Fund X"}},
	}
	other := Table{
		Headers: []string{"Emittent", "Houder"},
		Rows:    [][]string{{"Beta BV", "Fund Y"}},
	}

	table, err := Locate(Document{Tables: []Table{same, other}}, NetShortPositions())

	require.NoError(t, err)
	assert.Equal(t, "Acme NV", table.Rows[0][0])
}

func TestLocateNoTables(t *testing.T) {
	_, err := Locate(Document{}, NetShortPositions())
	assert.ErrorIs(t, err, ErrNoTable)
}

// A lone candidate with unrecognized headers still gets a chance at
// value-shape resolution downstream.
func TestLocateSingleUnrecognizedTable(t *testing.T) {
	doc := Document{Tables: []Table{{
		Headers: []string{"A", "B", "C", "D"},
		Rows:    [][]string{{"Acme NV", "Fund X", "1,23", "2025-01-15"}},
	}}}

	table, err := Locate(doc, NetShortPositions())

	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

// Even when every candidate scores zero, the first table is still selected;
// ErrNoTable is reserved for documents with no tables at all.
func TestLocateAllUnrecognizedPicksFirst(t *testing.T) {
	doc := Document{Tables: []Table{
		{
			Headers: []string{"A", "B"},
			Rows:    [][]string{{"Acme NV", "Fund X"}},
		},
		{
			Headers: []string{"C", "D"},
			Rows:    [][]string{{"Beta BV", "Fund Y"}},
		},
	}}

	table, err := Locate(doc, NetShortPositions())

	require.NoError(t, err)
	assert.Equal(t, "Acme NV", table.Rows[0][0])
}

func TestLocateScoresFirstRowWhenNoHeaders(t *testing.T) {
	doc := Document{Tables: []Table{
		{Rows: [][]string{{"Menu", "Over ons"}}},
		{Rows: [][]string{{"Naam van de emittent", "Positie houder", "Netto Shortpositie", "Positiedatum"}, {"Acme NV", "Fund X", "1,23", "2025-01-15"}}},
	}}

	table, err := Locate(doc, NetShortPositions())

	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

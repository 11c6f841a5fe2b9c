package register

// Table is the common shape every source format (HTML table, CSV payload,
// XLSX sheet) reduces to before location and column resolution.
type Table struct {
	// Caption is a label for the table when the source provides one
	// (HTML caption, sheet name). Empty otherwise.
	Caption string
	// Headers holds the header row cells, already whitespace-cleaned.
	// May be empty when the source has no explicit header row.
	Headers []string
	// Rows holds the data rows, cleaned cell by cell.
	Rows [][]string
}

// Document is a parsed source: zero or more candidate tables.
type Document struct {
	Tables []Table
}

// headerOrFirstRow returns the cells the locator and resolver should treat
// as headers: the explicit header row when present, else the first data row.
func (t Table) headerOrFirstRow() []string {
	if len(t.Headers) > 0 {
		return t.Headers
	}
	if len(t.Rows) > 0 {
		return t.Rows[0]
	}
	return nil
}

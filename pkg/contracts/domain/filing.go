package domain

// Filing represents one disclosed position record extracted from a register
// source. Instances are immutable value objects; one Filing is created per
// kept source row.
type Filing struct {
	Issuer       string  `json:"issuer" validate:"required"`
	IssuerISIN   string  `json:"issuer_isin,omitempty" validate:"omitempty,len=12"`
	Filer        string  `json:"filer" validate:"required"`
	PercentRaw   string  `json:"percent_raw" validate:"required"`
	PercentValue float64 `json:"percent_value" validate:"min=0,max=100"`
	DateRaw      string  `json:"date_raw"`
	DateISO      string  `json:"date_iso"`
	SourceURL    string  `json:"source_url"`
	UniqueID     string  `json:"unique_id" validate:"required,len=16"`
}

// Direction indicates how the latest filing compares to the previous one
// for the same (issuer, filer) pair.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	// DirectionNone is the zero value: no previous filing, or equal values.
	DirectionNone Direction = ""
)

// HistoryPoint is one prior filing projected to the fields that matter for
// trend presentation.
type HistoryPoint struct {
	DateISO      string  `json:"date_iso"`
	PercentValue float64 `json:"percent_value"`
	PercentRaw   string  `json:"percent_raw"`
}

// ReconciledFiling is the latest Filing of an (issuer, filer) group together
// with the previous state and a bounded history of prior filings. It is the
// only record type handed to the renderer and publisher.
type ReconciledFiling struct {
	Filing

	PreviousPercentValue *float64       `json:"previous_percent_value,omitempty"`
	PreviousPercentRaw   string         `json:"previous_percent_raw,omitempty"`
	PreviousDateISO      string         `json:"previous_date_iso,omitempty"`
	Direction            Direction      `json:"direction,omitempty"`
	History              []HistoryPoint `json:"history,omitempty"`
}

// HasPrevious reports whether a prior filing existed in the group.
func (r ReconciledFiling) HasPrevious() bool {
	return r.PreviousPercentValue != nil
}

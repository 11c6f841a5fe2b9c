// Package reconcile folds the filings of one scrape run into a single
// latest-plus-trend view per (issuer, filer) pair.
package reconcile

import (
	"log/slog"
	"sort"

	"afmwatch/pkg/contracts/domain"
)

// HistoryCap bounds the number of prior filings attached to a reconciled
// record.
const HistoryCap = 10

// Reconcile groups filings by exact (issuer, filer) identity, selects the
// most recent filing of each group and attaches direction and bounded
// history. Output holds at most one record per pair, ordered by issuer then
// filer for deterministic downstream processing.
//
// "Most recent" is decided by the compound key (date_iso, percent_value):
// date first, percentage as the tie-break for same-day filings.
func Reconcile(filings []domain.Filing) []domain.ReconciledFiling {
	groups := make(map[string][]domain.Filing)
	var order []string
	for _, f := range filings {
		key := f.Issuer + "\x00" + f.Filer
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}
	sort.Strings(order)

	out := make([]domain.ReconciledFiling, 0, len(groups))
	for _, key := range order {
		out = append(out, reconcileGroup(groups[key]))
	}

	slog.Info("Reconciled filings",
		slog.Int("input", len(filings)),
		slog.Int("groups", len(out)))
	return out
}

func reconcileGroup(group []domain.Filing) domain.ReconciledFiling {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].DateISO != group[j].DateISO {
			return group[i].DateISO < group[j].DateISO
		}
		return group[i].PercentValue < group[j].PercentValue
	})

	latest := group[len(group)-1]
	rec := domain.ReconciledFiling{Filing: latest}

	priors := group[:len(group)-1]
	if len(priors) == 0 {
		return rec
	}

	previous := priors[len(priors)-1]
	pv := previous.PercentValue
	rec.PreviousPercentValue = &pv
	rec.PreviousPercentRaw = previous.PercentRaw
	rec.PreviousDateISO = previous.DateISO

	switch {
	case latest.PercentValue > previous.PercentValue:
		rec.Direction = domain.DirectionUp
	case latest.PercentValue < previous.PercentValue:
		rec.Direction = domain.DirectionDown
	}

	// Most-recent-first history of prior filings, excluding the latest.
	for i := len(priors) - 1; i >= 0 && len(rec.History) < HistoryCap; i-- {
		rec.History = append(rec.History, domain.HistoryPoint{
			DateISO:      priors[i].DateISO,
			PercentValue: priors[i].PercentValue,
			PercentRaw:   priors[i].PercentRaw,
		})
	}
	return rec
}

package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afmwatch/pkg/contracts/domain"
)

func filing(issuer, filer, dateISO string, pct float64) domain.Filing {
	return domain.Filing{
		Issuer:       issuer,
		Filer:        filer,
		PercentRaw:   fmt.Sprintf("%.2f", pct),
		PercentValue: pct,
		DateRaw:      dateISO,
		DateISO:      dateISO,
		UniqueID:     fmt.Sprintf("%s|%s|%s|%.2f", issuer, filer, dateISO, pct)[:16],
	}
}

func TestReconcileSingleFiling(t *testing.T) {
	out := Reconcile([]domain.Filing{filing("Acme NV", "Fund X", "2025-01-15", 1.23)})

	require.Len(t, out, 1)
	rec := out[0]
	assert.False(t, rec.HasPrevious())
	assert.Equal(t, domain.DirectionNone, rec.Direction)
	assert.Empty(t, rec.History)
}

// Two filings for the same pair collapse to one record carrying trend and
// history.
func TestReconcileTrendUp(t *testing.T) {
	out := Reconcile([]domain.Filing{
		filing("Acme NV", "Fund X", "2025-01-01", 1.0),
		filing("Acme NV", "Fund X", "2025-02-01", 2.0),
	})

	require.Len(t, out, 1)
	rec := out[0]
	assert.InDelta(t, 2.0, rec.PercentValue, 1e-9)
	require.True(t, rec.HasPrevious())
	assert.InDelta(t, 1.0, *rec.PreviousPercentValue, 1e-9)
	assert.Equal(t, "2025-01-01", rec.PreviousDateISO)
	assert.Equal(t, domain.DirectionUp, rec.Direction)

	require.Len(t, rec.History, 1)
	assert.Equal(t, "2025-01-01", rec.History[0].DateISO)
	assert.InDelta(t, 1.0, rec.History[0].PercentValue, 1e-9)
}

func TestReconcileTrendDown(t *testing.T) {
	out := Reconcile([]domain.Filing{
		filing("Acme NV", "Fund X", "2025-02-01", 0.8),
		filing("Acme NV", "Fund X", "2025-01-01", 1.2),
	})

	require.Len(t, out, 1)
	assert.Equal(t, domain.DirectionDown, out[0].Direction)
	assert.InDelta(t, 0.8, out[0].PercentValue, 1e-9)
}

func TestReconcileUnchanged(t *testing.T) {
	out := Reconcile([]domain.Filing{
		filing("Acme NV", "Fund X", "2025-01-01", 1.0),
		filing("Acme NV", "Fund X", "2025-02-01", 1.0),
	})

	require.Len(t, out, 1)
	assert.Equal(t, domain.DirectionNone, out[0].Direction)
	assert.True(t, out[0].HasPrevious())
}

// Same-day filings tie-break on percent: the larger value is the latest.
func TestReconcileSameDateTieBreak(t *testing.T) {
	out := Reconcile([]domain.Filing{
		filing("Acme NV", "Fund X", "2025-01-15", 2.1),
		filing("Acme NV", "Fund X", "2025-01-15", 0.7),
	})

	require.Len(t, out, 1)
	assert.InDelta(t, 2.1, out[0].PercentValue, 1e-9)
	assert.InDelta(t, 0.7, *out[0].PreviousPercentValue, 1e-9)
	assert.Equal(t, domain.DirectionUp, out[0].Direction)
}

// Groups are keyed on exact (issuer, filer) identity.
func TestReconcileSeparatesPairs(t *testing.T) {
	out := Reconcile([]domain.Filing{
		filing("Acme NV", "Fund X", "2025-01-15", 1.0),
		filing("Acme NV", "Fund Y", "2025-01-15", 2.0),
		filing("Beta BV", "Fund X", "2025-01-15", 3.0),
	})

	assert.Len(t, out, 3)
	for _, rec := range out {
		assert.False(t, rec.HasPrevious())
	}
}

// For N filings of one pair the history holds min(N-1, 10) entries,
// most-recent-first, excluding the latest itself.
func TestReconcileHistoryBounded(t *testing.T) {
	var filings []domain.Filing
	for i := 1; i <= 14; i++ {
		filings = append(filings, filing("Acme NV", "Fund X", fmt.Sprintf("2025-01-%02d", i), float64(i)*0.1))
	}

	out := Reconcile(filings)

	require.Len(t, out, 1)
	rec := out[0]
	assert.Equal(t, "2025-01-14", rec.DateISO)
	require.Len(t, rec.History, HistoryCap)
	assert.Equal(t, "2025-01-13", rec.History[0].DateISO)
	assert.Equal(t, "2025-01-04", rec.History[len(rec.History)-1].DateISO)
	for i := 1; i < len(rec.History); i++ {
		assert.Less(t, rec.History[i].DateISO, rec.History[i-1].DateISO)
	}
}

func TestReconcileEmptyInput(t *testing.T) {
	assert.Empty(t, Reconcile(nil))
}

func TestReconcileDeterministicOrder(t *testing.T) {
	in := []domain.Filing{
		filing("Zeta NV", "Fund Z", "2025-01-15", 1.0),
		filing("Acme NV", "Fund A", "2025-01-15", 1.0),
	}

	out := Reconcile(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Acme NV", out[0].Issuer)
	assert.Equal(t, "Zeta NV", out[1].Issuer)
}

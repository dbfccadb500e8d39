package contract

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// LEGACY PROJECTION - Contracts signed before baseline capture existed
// =============================================================================

// LegacyMode says why the legacy table is being read.
type LegacyMode int

const (
	// LegacyPrimary seeds the monthly fold when a contract has no baseline.
	LegacyPrimary LegacyMode = iota
	// LegacyFallback replaces a monthly result that came out empty.
	LegacyFallback
)

func (m LegacyMode) String() string {
	if m == LegacyFallback {
		return "fallback"
	}
	return "primary"
}

// ProjectLegacy converts the legacy rows overlapping month into snapshots,
// keeping their native billing fields. Fallback results come back sorted;
// primary results are seeds and keep input order.
func ProjectLegacy(rows []LegacyEngineer, month generic.YearMonth, mode LegacyMode) []MonthlyEngineerSnapshot {
	window := month.Period()
	out := make([]MonthlyEngineerSnapshot, 0, len(rows))
	for _, row := range rows {
		if !window.Overlaps(row.StartDate, row.EndDate) {
			continue
		}
		out = append(out, legacySnapshot(row))
	}
	if mode == LegacyFallback {
		sortSnapshots(out)
	}
	return out
}

func legacySnapshot(row LegacyEngineer) MonthlyEngineerSnapshot {
	billingType := row.BillingType
	if billingType == "" {
		billingType = BillingMonthly
	}
	return MonthlyEngineerSnapshot{
		EngineerID:    row.ID,
		EngineerLevel: row.EngineerLevel,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate,
		BillingType:   billingType,
		Rating:        generic.OrDefault(row.Rating, DefaultRating),
		Salary:        generic.OrDefault(row.Salary, decimal.Zero),
		HourlyRate:    row.HourlyRate,
		Hours:         row.Hours,
		Subtotal:      row.Subtotal,
	}
}

// sortSnapshots orders by level, then start date, then engineer id.
func sortSnapshots(s []MonthlyEngineerSnapshot) {
	slices.SortStableFunc(s, func(a, b MonthlyEngineerSnapshot) int {
		if c := cmp.Compare(a.EngineerLevel, b.EngineerLevel); c != 0 {
			return c
		}
		if c := compareDatePtr(a.StartDate, b.StartDate); c != 0 {
			return c
		}
		return cmp.Compare(a.EngineerID, b.EngineerID)
	})
}

// compareDatePtr puts nil last.
func compareDatePtr(a, b *generic.TimePoint) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

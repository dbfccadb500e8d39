package generic

// =============================================================================
// PERIOD - Closed day range used for month windows
// =============================================================================

// Period is the closed range [Start, End].
//
// Examples:
//   - Billing month March 2024: Mar 1 - Mar 31
//   - Contract term: signing date - planned end date
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Overlaps reports whether [start, end] intersects the period.
// A nil start never overlaps. A nil end is open ended.
func (p Period) Overlaps(start, end *TimePoint) bool {
	if start == nil || start.IsZero() {
		return false
	}
	if start.After(p.End) {
		return false
	}
	return end == nil || end.IsZero() || end.AfterOrEqual(p.Start)
}

// Days returns the number of days in the period, inclusive.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// ActiveOn reports whether an engagement running from start to end
// (nil end = open ended) covers the given day.
func ActiveOn(start TimePoint, end *TimePoint, day TimePoint) bool {
	if start.IsZero() || start.After(day) {
		return false
	}
	return end == nil || end.IsZero() || end.AfterOrEqual(day)
}

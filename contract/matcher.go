package contract

import "github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"

// =============================================================================
// LINE ITEM MATCHER - Best-effort link from an event to its billing line
// =============================================================================

// MatchTolerance is how many days apart an event and a line item may start
// and still be considered the same engagement.
const MatchTolerance = 1

// MatchLineItem finds the line item of the event's change request that most
// plausibly describes the same engineer. Events carry no foreign key to line
// items, so the match is heuristic:
//
//  1. First item with the same engineer level (event level, else role) whose
//     start date is within MatchTolerance days of the event's start (the
//     event's new start date, else its effective start). Two missing start
//     dates also match.
//  2. Otherwise the first item of the change request.
//  3. Otherwise nil.
//
// items must belong to the event's change request.
func MatchLineItem(ev ResourceEvent, items []EngineerLineItem) *EngineerLineItem {
	if len(items) == 0 || ev.Change == nil {
		return nil
	}

	label := ev.Change.Position().Label()
	start := ev.newTerms().StartDate
	if start == nil && !ev.EffectiveStart.IsZero() {
		start = &ev.EffectiveStart
	}

	for i := range items {
		item := &items[i]
		if label == "" || item.EngineerLevel != label {
			continue
		}
		switch {
		case start != nil && item.StartDate != nil:
			if abs(generic.DaysBetween(*start, *item.StartDate)) <= MatchTolerance {
				return item
			}
		case start == nil && item.StartDate == nil:
			return item
		}
	}
	return &items[0]
}

// applyBilling copies the billing shape of a matched line item onto a snapshot.
// Hourly items charge their subtotal as the monthly salary.
func applyBilling(s *MonthlyEngineerSnapshot, item *EngineerLineItem) {
	s.BillingType = item.BillingType
	if s.BillingType == "" {
		s.BillingType = BillingMonthly
	}
	s.HourlyRate = item.HourlyRate
	s.Hours = item.Hours
	s.Subtotal = item.Subtotal
	if IsHourly(item.BillingType) && item.Subtotal.Valid {
		s.Salary = item.Subtotal.Decimal
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

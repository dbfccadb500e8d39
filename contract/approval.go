package contract

import (
	"cmp"
	"context"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// APPROVAL FILTER - Only events of approved change requests are visible
// =============================================================================

// approvedRequests returns the ids of requests whose status is APPROVED or ACTIVE.
func approvedRequests(crs []ChangeRequest) map[ChangeRequestID]bool {
	approved := make(map[ChangeRequestID]bool, len(crs))
	for _, cr := range crs {
		if cr.IsApproved() {
			approved[cr.ID] = true
		}
	}
	return approved
}

// FilterApproved keeps the events of approved requests and returns them in
// chronological order.
func FilterApproved(events []ResourceEvent, crs []ChangeRequest) []ResourceEvent {
	approved := approvedRequests(crs)
	out := make([]ResourceEvent, 0, len(events))
	for _, ev := range events {
		if approved[ev.ChangeRequestID] {
			out = append(out, ev)
		}
	}
	SortChronological(out)
	return out
}

// FilterApprovedBilling keeps the billing events of approved requests that
// fall in month.
func FilterApprovedBilling(events []BillingEvent, crs []ChangeRequest, month generic.YearMonth) []BillingEvent {
	approved := approvedRequests(crs)
	var out []BillingEvent
	for _, ev := range events {
		if approved[ev.ChangeRequestID] && ev.BillingMonth == month {
			out = append(out, ev)
		}
	}
	return out
}

// compareChronological orders by effective start, then creation time, then id.
func compareChronological(a, b ResourceEvent) int {
	if c := a.EffectiveStart.Compare(b.EffectiveStart); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ChronologicallyAfter reports whether a sorts after b.
func ChronologicallyAfter(a, b ResourceEvent) bool {
	return compareChronological(a, b) > 0
}

// SortChronological sorts oldest first.
func SortChronological(events []ResourceEvent) {
	slices.SortFunc(events, compareChronological)
}

// SortNewestFirst sorts newest first, the exact reverse of SortChronological.
func SortNewestFirst(events []ResourceEvent) {
	slices.SortFunc(events, func(a, b ResourceEvent) int { return compareChronological(b, a) })
}

// ApprovedResourceEvents returns the approved resource events of a contract,
// oldest first.
func (e *Engine) ApprovedResourceEvents(ctx context.Context, contractID ContractID) ([]ResourceEvent, error) {
	all, err := e.store.ResourceEvents(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load resource events for contract %d", contractID)
	}
	crs, err := e.store.ChangeRequests(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load change requests for contract %d", contractID)
	}

	approved := FilterApproved(all, crs)
	e.logger.Debug("resource events loaded",
		zap.Int64("contract_id", int64(contractID)),
		zap.Int("total", len(all)),
		zap.Int("approved", len(approved)),
	)
	return approved, nil
}

// ApprovedBillingEvents returns the approved billing deltas of a contract for month.
func (e *Engine) ApprovedBillingEvents(ctx context.Context, contractID ContractID, month generic.YearMonth) ([]BillingEvent, error) {
	all, err := e.store.BillingEvents(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load billing events for contract %d", contractID)
	}
	crs, err := e.store.ChangeRequests(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load change requests for contract %d", contractID)
	}
	return FilterApprovedBilling(all, crs, month), nil
}

package contract

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// TIMELINE - Snapshot and billing for every month of a range
// =============================================================================

// Timeline reconstructs each month in [from, to]. Inputs are loaded once and
// the months are folded in parallel, bounded by the engine's concurrency.
// Results are in month order.
func (e *Engine) Timeline(ctx context.Context, contractID ContractID, from, to generic.YearMonth) ([]MonthSummary, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}
	n := from.MonthsUntil(to)
	if n == 0 || n > MaxTimelineMonths {
		return nil, &generic.ValidationError{
			Field: "range",
			Value: from.String() + ".." + to.String() + " (" + strconv.Itoa(n) + " months)",
			Err:   generic.ErrInvalidRange,
		}
	}

	in, err := e.loadMonthlyInputs(ctx, contractID)
	if err != nil {
		return nil, err
	}
	baseline, err := e.store.BaselineBilling(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load baseline billing for contract %d", contractID)
	}
	allDeltas, err := e.store.BillingEvents(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load billing events for contract %d", contractID)
	}
	crs, err := e.store.ChangeRequests(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load change requests for contract %d", contractID)
	}

	out := make([]MonthSummary, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	month := from
	for i := 0; i < n; i++ {
		i, m := i, month
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = MonthSummary{
				Month:     m,
				Engineers: e.foldMonth(in, m),
				Billing:   BillingFor(baseline, FilterApprovedBilling(allDeltas, crs, m), m),
			}
			return nil
		})
		month = month.Next()
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "timeline")
	}
	return out, nil
}

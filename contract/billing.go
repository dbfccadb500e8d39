package contract

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// BILLING ACCUMULATOR - Baseline amount + approved deltas for a month
// =============================================================================

// CurrentBilling returns the billing amount in effect for month.
func (e *Engine) CurrentBilling(ctx context.Context, contractID ContractID, month generic.YearMonth) (decimal.Decimal, error) {
	if err := validateContractID(contractID); err != nil {
		return decimal.Zero, err
	}
	baseline, err := e.store.BaselineBilling(ctx, contractID)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "load baseline billing for contract %d", contractID)
	}
	deltas, err := e.ApprovedBillingEvents(ctx, contractID, month)
	if err != nil {
		return decimal.Zero, err
	}

	total := BillingFor(baseline, deltas, month)
	e.logger.Debug("current billing",
		zap.Int64("contract_id", int64(contractID)),
		zap.Stringer("month", month),
		zap.Int("deltas", len(deltas)),
		zap.String("amount", total.String()),
	)
	return total, nil
}

// BillingFor adds the month's baseline amount (zero when there is none) and
// every delta billed to that month. deltas must already be approval-filtered.
func BillingFor(baseline []BaselineBilling, deltas []BillingEvent, month generic.YearMonth) decimal.Decimal {
	total := decimal.Zero
	for _, b := range baseline {
		if b.BillingMonth == month {
			total = b.Amount
			break
		}
	}
	for _, d := range deltas {
		if d.BillingMonth == month {
			total = total.Add(d.DeltaAmount)
		}
	}
	return total
}

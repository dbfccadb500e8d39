package contract

import (
	"context"

	"github.com/rotisserie/eris"
)

// =============================================================================
// BASELINE LISTING - The roster and billing frozen at signing
// =============================================================================

// BaselineResources lists the baseline roster ordered by start date.
func (e *Engine) BaselineResources(ctx context.Context, contractID ContractID) ([]BaselineEngineer, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}
	rows, err := e.store.BaselineEngineers(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load baseline for contract %d", contractID)
	}
	return rows, nil
}

// BaselineBilling lists the baseline billing schedule, newest month first.
func (e *Engine) BaselineBilling(ctx context.Context, contractID ContractID) ([]BaselineBilling, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}
	rows, err := e.store.BaselineBilling(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load baseline billing for contract %d", contractID)
	}
	return rows, nil
}

/*
recorder.go - The append path: baseline capture and event recording

PURPOSE:
  The reconstruction engine only reads. Recorder is the one place that
  writes, and it checks the invariants the folds rely on before anything
  reaches the store:

  - a baseline is captured once per contract
  - events are only recorded against approved change requests
  - REMOVE and MODIFY always name an engineer
  - an event's own dates are not reversed

ATOMICITY:
  All events of one call are handed to Writer.AppendEvents together, and
  the store writes them in a single transaction.
*/
package contract

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// Recorder validates and appends baseline and event rows.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

// NewRecorder creates a recorder writing to store. A nil logger is a no-op.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// CaptureBaseline freezes a contract's roster and billing schedule.
func (r *Recorder) CaptureBaseline(ctx context.Context, contractID ContractID, engineers []BaselineEngineer, billing []BaselineBilling) error {
	if err := validateContractID(contractID); err != nil {
		return err
	}

	seenMonth := make(map[generic.YearMonth]bool, len(billing))
	for i := range billing {
		b := &billing[i]
		b.ContractID = contractID
		if b.BillingMonth.Year == 0 {
			return eris.Wrapf(generic.ErrInvalidYearMonth, "baseline billing row %d has no month", i)
		}
		if seenMonth[b.BillingMonth] {
			return eris.Wrapf(generic.ErrInvalidYearMonth, "baseline billing month %s listed twice", b.BillingMonth)
		}
		seenMonth[b.BillingMonth] = true
	}
	for i := range engineers {
		eng := &engineers[i]
		eng.ContractID = contractID
		if eng.StartDate.IsZero() {
			return &generic.ValidationError{Field: fmt.Sprintf("engineers[%d].start_date", i), Err: generic.ErrInvalidDate}
		}
		if eng.EndDate != nil && eng.EndDate.Before(eng.StartDate) {
			return &generic.ValidationError{Field: fmt.Sprintf("engineers[%d].end_date", i), Value: eng.EndDate.String(), Err: generic.ErrInvalidDate}
		}
	}

	if err := r.store.CaptureBaseline(ctx, contractID, engineers, billing); err != nil {
		return eris.Wrapf(err, "capture baseline for contract %d", contractID)
	}
	r.logger.Info("baseline captured",
		zap.Int64("contract_id", int64(contractID)),
		zap.Int("engineers", len(engineers)),
		zap.Int("billing_months", len(billing)),
	)
	return nil
}

// RecordEvents appends the events of an approved change request. Events are
// stamped with the request id; ids and creation times come from the store.
func (r *Recorder) RecordEvents(ctx context.Context, crID ChangeRequestID, resource []ResourceEvent, billing []BillingEvent) ([]ResourceEvent, []BillingEvent, error) {
	cr, err := r.store.ChangeRequest(ctx, crID)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "record events for change request %d", crID)
	}
	if !cr.IsApproved() {
		return nil, nil, eris.Wrapf(generic.ErrChangeRequestNotApproved, "change request %d is %q", crID, cr.Status)
	}

	for i := range resource {
		resource[i].ChangeRequestID = crID
		if err := resource[i].Validate(); err != nil {
			return nil, nil, err
		}
	}
	for i := range billing {
		billing[i].ChangeRequestID = crID
		if billing[i].BillingMonth.Year == 0 {
			return nil, nil, eris.Wrapf(generic.ErrInvalidEvent, "billing event %d has no month", i)
		}
		if billing[i].Type == "" {
			billing[i].Type = BillingAdjustment
		}
	}

	storedResource, storedBilling, err := r.store.AppendEvents(ctx, resource, billing)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "append events for change request %d", crID)
	}
	r.logger.Info("change request events recorded",
		zap.Int64("change_request_id", int64(crID)),
		zap.Int64("contract_id", int64(cr.ContractID)),
		zap.Int("resource_events", len(storedResource)),
		zap.Int("billing_events", len(storedBilling)),
	)
	return storedResource, storedBilling, nil
}

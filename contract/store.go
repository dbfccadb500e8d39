/*
store.go - Collaborator interfaces consumed by the engine

PURPOSE:
  The engine never talks to a database directly. It reads through these
  interfaces, and the Recorder writes through Writer. Implementations live
  in store/memory, store/sqlite and store/postgres.

APPEND-ONLY CONTRACT:
  Baseline rows are written once per contract. Event rows are written once,
  when a change request is approved. No interface here updates or deletes
  either of them.

UNKNOWN CONTRACTS:
  Every read returns an empty slice (never an error) for a contract the
  store has not seen. "No baseline yet" is a valid state.
*/
package contract

import "context"

// BaselineStore reads the roster and billing frozen at signing.
type BaselineStore interface {
	// BaselineEngineers returns the roster ordered by start date.
	BaselineEngineers(ctx context.Context, contractID ContractID) ([]BaselineEngineer, error)

	// BaselineBilling returns the billing schedule, newest month first.
	BaselineBilling(ctx context.Context, contractID ContractID) ([]BaselineBilling, error)
}

// EventLog reads events of every change request of a contract, whatever the
// request's status. The approval filter runs in the engine.
type EventLog interface {
	ResourceEvents(ctx context.Context, contractID ContractID) ([]ResourceEvent, error)
	BillingEvents(ctx context.Context, contractID ContractID) ([]BillingEvent, error)
}

// ChangeRequestStore exposes change request status.
type ChangeRequestStore interface {
	ChangeRequests(ctx context.Context, contractID ContractID) ([]ChangeRequest, error)

	// ChangeRequest returns generic.ErrChangeRequestNotFound for an unknown id.
	ChangeRequest(ctx context.Context, id ChangeRequestID) (ChangeRequest, error)
}

// LegacyEngineerStore reads the pre-baseline engineer table.
type LegacyEngineerStore interface {
	LegacyEngineers(ctx context.Context, contractID ContractID) ([]LegacyEngineer, error)
}

// LineItemStore reads the engineer line items of a change request, in id order.
type LineItemStore interface {
	LineItems(ctx context.Context, changeRequestID ChangeRequestID) ([]EngineerLineItem, error)
}

// Reader is everything the engine reads.
type Reader interface {
	BaselineStore
	EventLog
	ChangeRequestStore
	LegacyEngineerStore
	LineItemStore
}

// Writer is the append path used by the Recorder and fixture loaders.
type Writer interface {
	// CaptureBaseline stores the baseline of a contract. A second capture for
	// the same contract fails with generic.ErrBaselineExists.
	CaptureBaseline(ctx context.Context, contractID ContractID, engineers []BaselineEngineer, billing []BaselineBilling) error

	SaveChangeRequest(ctx context.Context, cr ChangeRequest) error
	SaveLegacyEngineers(ctx context.Context, engineers []LegacyEngineer) error
	SaveLineItems(ctx context.Context, items []EngineerLineItem) error

	// AppendEvents writes all events atomically, assigning ids and creation
	// times. The stored events are returned in input order.
	AppendEvents(ctx context.Context, resource []ResourceEvent, billing []BillingEvent) ([]ResourceEvent, []BillingEvent, error)
}

// Store is a full read-write backend.
type Store interface {
	Reader
	Writer
}

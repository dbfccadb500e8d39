package contract

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// RESOURCE EVENTS - One roster change of an approved change request
// =============================================================================

// Action tags the kind of roster change.
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionRemove Action = "REMOVE"
	ActionModify Action = "MODIFY"
)

// ResourceEvent is an immutable roster change. Change holds exactly one of
// AddEngineer, RemoveEngineer or ModifyEngineer.
type ResourceEvent struct {
	ID              EventID
	ChangeRequestID ChangeRequestID
	EffectiveStart  generic.TimePoint
	CreatedAt       time.Time
	Change          ResourceChange
}

// ResourceChange is implemented by the three action variants.
type ResourceChange interface {
	Action() Action
	Target() EngineerID
	Position() Position
}

// Position names the seat an event is about.
type Position struct {
	Role  string
	Level string
}

// Label prefers the level and falls back to the role.
func (p Position) Label() string {
	if p.Level != "" {
		return p.Level
	}
	return p.Role
}

// EngineerTerms are the mutable attributes of an engagement. Unset fields are
// left untouched when applied.
type EngineerTerms struct {
	Rating    decimal.NullDecimal
	UnitRate  decimal.NullDecimal
	StartDate *generic.TimePoint
	EndDate   *generic.TimePoint
}

// AddEngineer introduces a new engagement. EngineerID may be zero.
type AddEngineer struct {
	EngineerID EngineerID
	Seat       Position
	Terms      EngineerTerms
}

// RemoveEngineer ends an existing engagement on EndDate.
type RemoveEngineer struct {
	EngineerID EngineerID
	Seat       Position
	EndDate    *generic.TimePoint
}

// ModifyEngineer changes the supplied terms of an existing engagement.
type ModifyEngineer struct {
	EngineerID EngineerID
	Seat       Position
	Old        EngineerTerms
	New        EngineerTerms
}

func (a AddEngineer) Action() Action        { return ActionAdd }
func (a AddEngineer) Target() EngineerID    { return a.EngineerID }
func (a AddEngineer) Position() Position    { return a.Seat }
func (r RemoveEngineer) Action() Action     { return ActionRemove }
func (r RemoveEngineer) Target() EngineerID { return r.EngineerID }
func (r RemoveEngineer) Position() Position { return r.Seat }
func (m ModifyEngineer) Action() Action     { return ActionModify }
func (m ModifyEngineer) Target() EngineerID { return m.EngineerID }
func (m ModifyEngineer) Position() Position { return m.Seat }

// Action returns the variant's tag, or "" for an empty event.
func (e ResourceEvent) Action() Action {
	if e.Change == nil {
		return ""
	}
	return e.Change.Action()
}

// newTerms are the terms the event establishes. REMOVE only sets an end date.
func (e ResourceEvent) newTerms() EngineerTerms {
	switch c := e.Change.(type) {
	case AddEngineer:
		return c.Terms
	case ModifyEngineer:
		return c.New
	case RemoveEngineer:
		return EngineerTerms{EndDate: c.EndDate}
	}
	return EngineerTerms{}
}

// Validate checks the per-action invariants.
func (e ResourceEvent) Validate() error {
	if e.EffectiveStart.IsZero() {
		return eris.Wrapf(generic.ErrInvalidEvent, "event %d: effective start is required", e.ID)
	}
	switch c := e.Change.(type) {
	case AddEngineer:
		if c.Seat.Label() == "" {
			return eris.Wrapf(generic.ErrInvalidEvent, "event %d: ADD needs a role or level", e.ID)
		}
		return validateTerms(e.ID, c.Terms)
	case RemoveEngineer:
		if c.EngineerID == 0 {
			return eris.Wrapf(generic.ErrInvalidEvent, "event %d: REMOVE needs an engineer id", e.ID)
		}
		return nil
	case ModifyEngineer:
		if c.EngineerID == 0 {
			return eris.Wrapf(generic.ErrInvalidEvent, "event %d: MODIFY needs an engineer id", e.ID)
		}
		return validateTerms(e.ID, c.New)
	case nil:
		return eris.Wrapf(generic.ErrInvalidEvent, "event %d: missing action", e.ID)
	}
	return eris.Wrapf(generic.ErrInvalidEvent, "event %d: unknown action", e.ID)
}

func validateTerms(id EventID, t EngineerTerms) error {
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return eris.Wrapf(generic.ErrInvalidEvent, "event %d: end date %s before start date %s", id, t.EndDate, t.StartDate)
	}
	return nil
}

// =============================================================================
// ROW FORM - Flat shape used by the stores and the API
// =============================================================================

// ResourceEventRow is the persisted shape of a ResourceEvent. Fields that the
// action does not use are ignored when converting back.
type ResourceEventRow struct {
	ID              EventID
	ChangeRequestID ChangeRequestID
	Action          Action
	EngineerID      EngineerID
	Role            string
	Level           string
	RatingOld       decimal.NullDecimal
	RatingNew       decimal.NullDecimal
	UnitRateOld     decimal.NullDecimal
	UnitRateNew     decimal.NullDecimal
	StartDateOld    *generic.TimePoint
	StartDateNew    *generic.TimePoint
	EndDateOld      *generic.TimePoint
	EndDateNew      *generic.TimePoint
	EffectiveStart  generic.TimePoint
	CreatedAt       time.Time
}

// Row flattens the event.
func (e ResourceEvent) Row() ResourceEventRow {
	row := ResourceEventRow{
		ID:              e.ID,
		ChangeRequestID: e.ChangeRequestID,
		EffectiveStart:  e.EffectiveStart,
		CreatedAt:       e.CreatedAt,
	}
	if e.Change == nil {
		return row
	}
	row.Action = e.Change.Action()
	row.EngineerID = e.Change.Target()
	row.Role = e.Change.Position().Role
	row.Level = e.Change.Position().Level

	switch c := e.Change.(type) {
	case AddEngineer:
		row.setNew(c.Terms)
	case RemoveEngineer:
		row.EndDateNew = c.EndDate
	case ModifyEngineer:
		row.setNew(c.New)
		row.RatingOld = c.Old.Rating
		row.UnitRateOld = c.Old.UnitRate
		row.StartDateOld = c.Old.StartDate
		row.EndDateOld = c.Old.EndDate
	}
	return row
}

func (r *ResourceEventRow) setNew(t EngineerTerms) {
	r.RatingNew = t.Rating
	r.UnitRateNew = t.UnitRate
	r.StartDateNew = t.StartDate
	r.EndDateNew = t.EndDate
}

// Event rebuilds the typed event from its row.
func (r ResourceEventRow) Event() (ResourceEvent, error) {
	e := ResourceEvent{
		ID:              r.ID,
		ChangeRequestID: r.ChangeRequestID,
		EffectiveStart:  r.EffectiveStart,
		CreatedAt:       r.CreatedAt,
	}
	seat := Position{Role: r.Role, Level: r.Level}
	newTerms := EngineerTerms{
		Rating:    r.RatingNew,
		UnitRate:  r.UnitRateNew,
		StartDate: r.StartDateNew,
		EndDate:   r.EndDateNew,
	}

	switch r.Action {
	case ActionAdd:
		e.Change = AddEngineer{EngineerID: r.EngineerID, Seat: seat, Terms: newTerms}
	case ActionRemove:
		e.Change = RemoveEngineer{EngineerID: r.EngineerID, Seat: seat, EndDate: r.EndDateNew}
	case ActionModify:
		e.Change = ModifyEngineer{
			EngineerID: r.EngineerID,
			Seat:       seat,
			Old: EngineerTerms{
				Rating:    r.RatingOld,
				UnitRate:  r.UnitRateOld,
				StartDate: r.StartDateOld,
				EndDate:   r.EndDateOld,
			},
			New: newTerms,
		}
	default:
		return e, eris.Wrapf(generic.ErrInvalidEvent, "event %d: unknown action %q", r.ID, r.Action)
	}
	return e, nil
}

// =============================================================================
// BILLING EVENTS
// =============================================================================

// BillingEventType classifies a billing delta.
type BillingEventType string

const (
	BillingAdjustment BillingEventType = "ADJUSTMENT"
	BillingAddition   BillingEventType = "ADDITION"
	BillingReduction  BillingEventType = "REDUCTION"
)

// BillingEvent is a signed delta to one month's billing.
type BillingEvent struct {
	ID              EventID
	ChangeRequestID ChangeRequestID
	BillingMonth    generic.YearMonth
	DeltaAmount     decimal.Decimal
	Description     string
	Type            BillingEventType
	CreatedAt       time.Time
}

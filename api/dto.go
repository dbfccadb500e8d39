/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the contract package's model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response items returned to clients
  - *Request: Request body types from clients
  - *Response: Response envelopes

JSON FORMATS:
  - Dates:   "YYYY-MM-DD"
  - Months:  "YYYY-MM"
  - Money, ratings, hours: decimal strings ("5000.5"), null when unset
  - engineer_id: null for engineers introduced by an ADD without one

SEE ALSO:
  - handlers.go: Uses these types
  - contract/event.go: ResourceEventRow, the flat event shape
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// ROSTER
// =============================================================================

// CurrentEngineerDTO is one engineer engaged on a day.
type CurrentEngineerDTO struct {
	EngineerID *int64              `json:"engineer_id"`
	Role       string              `json:"role"`
	Level      string              `json:"level"`
	Rating     decimal.NullDecimal `json:"rating"`
	UnitRate   decimal.NullDecimal `json:"unit_rate"`
	StartDate  generic.TimePoint   `json:"start_date"`
	EndDate    *generic.TimePoint  `json:"end_date"`
}

type ResourcesResponse struct {
	ContractID int64                `json:"contract_id"`
	AsOf       generic.TimePoint    `json:"as_of"`
	Engineers  []CurrentEngineerDTO `json:"engineers"`
}

// SnapshotEngineerDTO is one engineer engaged during a month, with billing shape.
type SnapshotEngineerDTO struct {
	EngineerID    *int64              `json:"engineer_id"`
	EngineerLevel string              `json:"engineer_level"`
	StartDate     *generic.TimePoint  `json:"start_date"`
	EndDate       *generic.TimePoint  `json:"end_date"`
	BillingType   string              `json:"billing_type"`
	Rating        decimal.Decimal     `json:"rating"`
	Salary        decimal.Decimal     `json:"salary"`
	HourlyRate    decimal.NullDecimal `json:"hourly_rate"`
	Hours         decimal.NullDecimal `json:"hours"`
	Subtotal      decimal.NullDecimal `json:"subtotal"`
}

type SnapshotResponse struct {
	ContractID int64                 `json:"contract_id"`
	Month      generic.YearMonth     `json:"month"`
	Engineers  []SnapshotEngineerDTO `json:"engineers"`
}

// =============================================================================
// BILLING
// =============================================================================

type BillingResponse struct {
	ContractID int64             `json:"contract_id"`
	Month      generic.YearMonth `json:"month"`
	Amount     decimal.Decimal   `json:"amount"`
}

type MonthSummaryDTO struct {
	Month     generic.YearMonth     `json:"month"`
	Engineers []SnapshotEngineerDTO `json:"engineers"`
	Billing   decimal.Decimal       `json:"billing"`
}

type TimelineResponse struct {
	ContractID int64             `json:"contract_id"`
	From       generic.YearMonth `json:"from"`
	To         generic.YearMonth `json:"to"`
	Months     []MonthSummaryDTO `json:"months"`
}

// =============================================================================
// BASELINE
// =============================================================================

type BaselineEngineerDTO struct {
	ID        int64               `json:"id"`
	Role      string              `json:"role"`
	Level     string              `json:"level"`
	Rating    decimal.NullDecimal `json:"rating"`
	UnitRate  decimal.NullDecimal `json:"unit_rate"`
	StartDate generic.TimePoint   `json:"start_date"`
	EndDate   *generic.TimePoint  `json:"end_date"`
}

type BaselineBillingDTO struct {
	Month  generic.YearMonth `json:"month"`
	Amount decimal.Decimal   `json:"amount"`
}

type BaselineResponse struct {
	ContractID int64                 `json:"contract_id"`
	Engineers  []BaselineEngineerDTO `json:"engineers"`
	Billing    []BaselineBillingDTO  `json:"billing"`
}

// =============================================================================
// EVENTS
// =============================================================================

// ResourceEventDTO is the flat form of a resource event, used both ways.
type ResourceEventDTO struct {
	ID              int64               `json:"id,omitempty"`
	ChangeRequestID int64               `json:"change_request_id,omitempty"`
	Action          string              `json:"action"`
	EngineerID      *int64              `json:"engineer_id"`
	Role            string              `json:"role,omitempty"`
	Level           string              `json:"level,omitempty"`
	RatingOld       decimal.NullDecimal `json:"rating_old"`
	RatingNew       decimal.NullDecimal `json:"rating_new"`
	UnitRateOld     decimal.NullDecimal `json:"unit_rate_old"`
	UnitRateNew     decimal.NullDecimal `json:"unit_rate_new"`
	StartDateOld    *generic.TimePoint  `json:"start_date_old"`
	StartDateNew    *generic.TimePoint  `json:"start_date_new"`
	EndDateOld      *generic.TimePoint  `json:"end_date_old"`
	EndDateNew      *generic.TimePoint  `json:"end_date_new"`
	EffectiveStart  generic.TimePoint   `json:"effective_start"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
}

type BillingEventDTO struct {
	ID              int64             `json:"id,omitempty"`
	ChangeRequestID int64             `json:"change_request_id,omitempty"`
	BillingMonth    generic.YearMonth `json:"billing_month"`
	DeltaAmount     decimal.Decimal   `json:"delta_amount"`
	Description     string            `json:"description,omitempty"`
	Type            string            `json:"type,omitempty"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
}

// RecordEventsRequest is the body of POST /api/change-requests/{id}/events.
type RecordEventsRequest struct {
	ResourceEvents []ResourceEventDTO `json:"resource_events"`
	BillingEvents  []BillingEventDTO  `json:"billing_events"`
}

type RecordEventsResponse struct {
	ChangeRequestID int64              `json:"change_request_id"`
	ResourceEvents  []ResourceEventDTO `json:"resource_events"`
	BillingEvents   []BillingEventDTO  `json:"billing_events"`
}

type EventsResponse struct {
	ContractID     int64              `json:"contract_id"`
	ResourceEvents []ResourceEventDTO `json:"resource_events"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ContractID  int64  `json:"contract_id"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func idPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toCurrentDTOs(states []contract.CurrentEngineerState) []CurrentEngineerDTO {
	out := make([]CurrentEngineerDTO, len(states))
	for i, s := range states {
		out[i] = CurrentEngineerDTO{
			EngineerID: idPtr(int64(s.EngineerID)),
			Role:       s.Role,
			Level:      s.Level,
			Rating:     s.Rating,
			UnitRate:   s.UnitRate,
			StartDate:  s.StartDate,
			EndDate:    s.EndDate,
		}
	}
	return out
}

func toSnapshotDTOs(snaps []contract.MonthlyEngineerSnapshot) []SnapshotEngineerDTO {
	out := make([]SnapshotEngineerDTO, len(snaps))
	for i, s := range snaps {
		out[i] = SnapshotEngineerDTO{
			EngineerID:    idPtr(int64(s.EngineerID)),
			EngineerLevel: s.EngineerLevel,
			StartDate:     s.StartDate,
			EndDate:       s.EndDate,
			BillingType:   s.BillingType,
			Rating:        s.Rating,
			Salary:        s.Salary,
			HourlyRate:    s.HourlyRate,
			Hours:         s.Hours,
			Subtotal:      s.Subtotal,
		}
	}
	return out
}

func toResourceEventDTO(ev contract.ResourceEvent) ResourceEventDTO {
	r := ev.Row()
	return ResourceEventDTO{
		ID:              int64(r.ID),
		ChangeRequestID: int64(r.ChangeRequestID),
		Action:          string(r.Action),
		EngineerID:      idPtr(int64(r.EngineerID)),
		Role:            r.Role,
		Level:           r.Level,
		RatingOld:       r.RatingOld,
		RatingNew:       r.RatingNew,
		UnitRateOld:     r.UnitRateOld,
		UnitRateNew:     r.UnitRateNew,
		StartDateOld:    r.StartDateOld,
		StartDateNew:    r.StartDateNew,
		EndDateOld:      r.EndDateOld,
		EndDateNew:      r.EndDateNew,
		EffectiveStart:  r.EffectiveStart,
		CreatedAt:       timePtr(r.CreatedAt),
	}
}

// toResourceEvent rebuilds a typed event. Unknown actions fail with
// generic.ErrInvalidEvent.
func (d ResourceEventDTO) toResourceEvent() (contract.ResourceEvent, error) {
	var engineerID int64
	if d.EngineerID != nil {
		engineerID = *d.EngineerID
	}
	row := contract.ResourceEventRow{
		Action:         contract.Action(d.Action),
		EngineerID:     contract.EngineerID(engineerID),
		Role:           d.Role,
		Level:          d.Level,
		RatingOld:      d.RatingOld,
		RatingNew:      d.RatingNew,
		UnitRateOld:    d.UnitRateOld,
		UnitRateNew:    d.UnitRateNew,
		StartDateOld:   d.StartDateOld,
		StartDateNew:   d.StartDateNew,
		EndDateOld:     d.EndDateOld,
		EndDateNew:     d.EndDateNew,
		EffectiveStart: d.EffectiveStart,
	}
	return row.Event()
}

func toBillingEventDTO(ev contract.BillingEvent) BillingEventDTO {
	return BillingEventDTO{
		ID:              int64(ev.ID),
		ChangeRequestID: int64(ev.ChangeRequestID),
		BillingMonth:    ev.BillingMonth,
		DeltaAmount:     ev.DeltaAmount,
		Description:     ev.Description,
		Type:            string(ev.Type),
		CreatedAt:       timePtr(ev.CreatedAt),
	}
}

func (d BillingEventDTO) toBillingEvent() contract.BillingEvent {
	return contract.BillingEvent{
		BillingMonth: d.BillingMonth,
		DeltaAmount:  d.DeltaAmount,
		Description:  d.Description,
		Type:         contract.BillingEventType(d.Type),
	}
}

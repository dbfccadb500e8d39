/*
Package contract reconstructs a contract's engineer roster and billing from
its signed baseline plus the events of its approved change requests.

PURPOSE:
  Answers "which engineers, and what billing amounts, are in effect for a
  contract as of a date or calendar month?". Nothing derived is persisted:
  every answer is folded from immutable inputs on each call.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: int64-backed, zero means "none"
  - Baseline rows: roster and billing frozen at signing
  - ChangeRequest: only its status matters here
  - Legacy rows and line items: sources of billing-shape fields
  - CurrentEngineerState / MonthlyEngineerSnapshot: derived outputs

SEE ALSO:
  - event.go: ResourceEvent sum type and BillingEvent
  - engine.go: Query entry points
  - store.go: Collaborator interfaces
*/
package contract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	ContractID      int64
	EngineerID      int64
	ChangeRequestID int64
	EventID         int64
	LineItemID      int64
)

// =============================================================================
// BILLING SHAPE
// =============================================================================

const (
	BillingMonthly = "Monthly"
	BillingHourly  = "Hourly"
)

// DefaultRating applies when neither baseline nor event supplies a rating.
var DefaultRating = decimal.NewFromInt(100)

// IsHourly compares case-insensitively.
func IsHourly(billingType string) bool {
	return strings.EqualFold(billingType, BillingHourly)
}

// =============================================================================
// BASELINE - Frozen at contract signing
// =============================================================================

// BaselineEngineer is one roster row captured at signing.
type BaselineEngineer struct {
	ID         EngineerID
	ContractID ContractID
	Role       string
	Level      string
	Rating     decimal.NullDecimal
	UnitRate   decimal.NullDecimal
	StartDate  generic.TimePoint
	EndDate    *generic.TimePoint
}

// LevelOrRole is the label used to match line items and sort snapshots.
func (b BaselineEngineer) LevelOrRole() string {
	if b.Level != "" {
		return b.Level
	}
	return b.Role
}

// ActiveOn reports whether the row covers the day.
func (b BaselineEngineer) ActiveOn(day generic.TimePoint) bool {
	return generic.ActiveOn(b.StartDate, b.EndDate, day)
}

// BaselineBilling is the planned amount for one month, captured at signing.
type BaselineBilling struct {
	ContractID   ContractID
	BillingMonth generic.YearMonth
	Amount       decimal.Decimal
}

// =============================================================================
// CHANGE REQUEST - Only the approval signal is consumed
// =============================================================================

const (
	StatusDraft            = "Draft"
	StatusUnderReview      = "Under Review"
	StatusRequestForChange = "Request for Change"
	StatusApproved         = "Approved"
	StatusActive           = "Active"
	StatusTerminated       = "Terminated"
)

// ChangeRequest is an amendment to a contract.
type ChangeRequest struct {
	ID         ChangeRequestID
	ContractID ContractID
	Title      string
	Status     string
	CreatedAt  time.Time
}

// IsApproved reports whether the request's events are visible to reconstruction.
func (cr ChangeRequest) IsApproved() bool {
	return IsApprovedStatus(cr.Status)
}

// IsApprovedStatus matches APPROVED and ACTIVE, ignoring case.
func IsApprovedStatus(status string) bool {
	switch strings.ToUpper(status) {
	case "APPROVED", "ACTIVE":
		return true
	}
	return false
}

// =============================================================================
// BILLING-SHAPE SOURCES
// =============================================================================

// LegacyEngineer is a row of the pre-baseline engineer table. Older contracts
// only have these.
type LegacyEngineer struct {
	ID            EngineerID
	ContractID    ContractID
	EngineerLevel string
	StartDate     *generic.TimePoint
	EndDate       *generic.TimePoint
	BillingType   string
	Rating        decimal.NullDecimal
	Salary        decimal.NullDecimal
	HourlyRate    decimal.NullDecimal
	Hours         decimal.NullDecimal
	Subtotal      decimal.NullDecimal
}

// EngineerLineItem is the per-engineer billing line of a change request.
type EngineerLineItem struct {
	ID              LineItemID
	ChangeRequestID ChangeRequestID
	EngineerLevel   string
	StartDate       *generic.TimePoint
	EndDate         *generic.TimePoint
	BillingType     string
	Rating          decimal.NullDecimal
	Salary          decimal.NullDecimal
	HourlyRate      decimal.NullDecimal
	Hours           decimal.NullDecimal
	Subtotal        decimal.NullDecimal
}

// =============================================================================
// DERIVED OUTPUTS
// =============================================================================

// CurrentEngineerState is a roster entry as of a single day.
// EngineerID is zero for engineers introduced by an ADD event.
type CurrentEngineerState struct {
	EngineerID EngineerID
	Role       string
	Level      string
	Rating     decimal.NullDecimal
	UnitRate   decimal.NullDecimal
	StartDate  generic.TimePoint
	EndDate    *generic.TimePoint
}

// MonthlyEngineerSnapshot is a roster entry for a calendar month, with the
// billing shape resolved. Salary is the effective monthly charge, which for
// hourly engineers is the line item subtotal.
type MonthlyEngineerSnapshot struct {
	EngineerID    EngineerID
	EngineerLevel string
	StartDate     *generic.TimePoint
	EndDate       *generic.TimePoint
	BillingType   string
	Rating        decimal.Decimal
	Salary        decimal.Decimal
	HourlyRate    decimal.NullDecimal
	Hours         decimal.NullDecimal
	Subtotal      decimal.NullDecimal
}

// MonthSummary pairs a month's roster with its billing total.
type MonthSummary struct {
	Month     generic.YearMonth
	Engineers []MonthlyEngineerSnapshot
	Billing   decimal.Decimal
}

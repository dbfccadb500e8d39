/*
Package factory provides YAML to Go contract fixture conversion.

PURPOSE:
  Converts YAML contract definitions into the baseline, legacy rows,
  change requests, line items and events the engine folds over. Demo
  scenarios, the seed command and tests all describe contracts this way
  instead of building structs by hand.

YAML SCHEMA:
  id: e1-rating-change
  name: Rating change
  description: MODIFY lowers a rating from March
  contract_id: 1
  baseline:
    engineers:
      - {id: 1, role: Backend, level: Senior, rating: "100", start_date: "2024-01-01"}
    billing:
      - {month: "2024-01", amount: "10000"}
  legacy:
    - {id: 9, level: Junior, billing_type: Monthly, salary: "3000"}
  change_requests:
    - id: 1
      status: Approved
      line_items:
        - {level: Senior, start_date: "2024-03-01", billing_type: Monthly, salary: "5200"}
      events:
        - {action: MODIFY, engineer_id: 1, effective_start: "2024-03-01", new: {rating: "90"}}
      billing:
        - {month: "2024-03", delta: "-500", type: REDUCTION}

KEY FEATURES:
  - Unknown keys are rejected
  - Dates, months and amounts are validated with field paths in the error
  - Events are written straight to the log, so fixtures can hold events of
    unapproved change requests

USAGE:
  fx, err := factory.ParseFixture(data)
  if err != nil {
      return err
  }
  if err := factory.Load(ctx, store, fx); err != nil {
      return err
  }

SEE ALSO:
  - scenarios.go: Embedded demo fixtures
  - contract/store.go: Writer interface
*/
package factory

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// YAML STRUCTURES
// =============================================================================

// Fixture is a complete contract definition.
type Fixture struct {
	ID             string              `yaml:"id"`
	Name           string              `yaml:"name"`
	Description    string              `yaml:"description"`
	ContractID     int64               `yaml:"contract_id"`
	Baseline       BaselineYAML        `yaml:"baseline"`
	Legacy         []BillingRowYAML    `yaml:"legacy"`
	ChangeRequests []ChangeRequestYAML `yaml:"change_requests"`
}

// BaselineYAML is the roster and billing frozen at signing.
type BaselineYAML struct {
	Engineers []EngineerYAML `yaml:"engineers"`
	Billing   []AmountYAML   `yaml:"billing"`
}

type EngineerYAML struct {
	ID        int64  `yaml:"id"`
	Role      string `yaml:"role"`
	Level     string `yaml:"level"`
	Rating    string `yaml:"rating"`
	UnitRate  string `yaml:"unit_rate"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

type AmountYAML struct {
	Month  string `yaml:"month"`
	Amount string `yaml:"amount"`
}

// BillingRowYAML describes a legacy roster row or a change request line item.
type BillingRowYAML struct {
	ID          int64  `yaml:"id"`
	Level       string `yaml:"level"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	BillingType string `yaml:"billing_type"`
	Rating      string `yaml:"rating"`
	Salary      string `yaml:"salary"`
	HourlyRate  string `yaml:"hourly_rate"`
	Hours       string `yaml:"hours"`
	Subtotal    string `yaml:"subtotal"`
}

type ChangeRequestYAML struct {
	ID        int64              `yaml:"id"`
	Title     string             `yaml:"title"`
	Status    string             `yaml:"status"`
	CreatedAt string             `yaml:"created_at"`
	LineItems []BillingRowYAML   `yaml:"line_items"`
	Events    []EventYAML        `yaml:"events"`
	Billing   []BillingEventYAML `yaml:"billing"`
}

type EventYAML struct {
	Action         string    `yaml:"action"`
	EngineerID     int64     `yaml:"engineer_id"`
	Role           string    `yaml:"role"`
	Level          string    `yaml:"level"`
	EffectiveStart string    `yaml:"effective_start"`
	CreatedAt      string    `yaml:"created_at"`
	Old            TermsYAML `yaml:"old"`
	New            TermsYAML `yaml:"new"`
}

type TermsYAML struct {
	Rating    string `yaml:"rating"`
	UnitRate  string `yaml:"unit_rate"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

type BillingEventYAML struct {
	Month       string `yaml:"month"`
	Delta       string `yaml:"delta"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseFixture decodes a YAML fixture, rejecting unknown keys.
func ParseFixture(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, eris.Wrap(err, "factory: decode fixture")
	}
	if fx.ContractID <= 0 {
		return nil, &generic.ValidationError{Field: "contract_id", Value: fmt.Sprint(fx.ContractID), Err: generic.ErrInvalidID}
	}
	return &fx, nil
}

// Dataset is a fixture converted to domain values.
type Dataset struct {
	ContractID        contract.ContractID
	BaselineEngineers []contract.BaselineEngineer
	BaselineBilling   []contract.BaselineBilling
	Legacy            []contract.LegacyEngineer
	ChangeRequests    []contract.ChangeRequest
	LineItems         []contract.EngineerLineItem
	ResourceEvents    []contract.ResourceEvent
	BillingEvents     []contract.BillingEvent
}

// Build converts the fixture, validating every field.
func (fx *Fixture) Build() (*Dataset, error) {
	p := &parser{}
	ds := &Dataset{ContractID: contract.ContractID(fx.ContractID)}

	for i, e := range fx.Baseline.Engineers {
		path := fmt.Sprintf("baseline.engineers[%d]", i)
		ds.BaselineEngineers = append(ds.BaselineEngineers, contract.BaselineEngineer{
			ID:         contract.EngineerID(e.ID),
			ContractID: ds.ContractID,
			Role:       e.Role,
			Level:      e.Level,
			Rating:     p.nullDecimal(path+".rating", e.Rating),
			UnitRate:   p.nullDecimal(path+".unit_rate", e.UnitRate),
			StartDate:  p.date(path+".start_date", e.StartDate),
			EndDate:    p.datePtr(path+".end_date", e.EndDate),
		})
	}
	for i, b := range fx.Baseline.Billing {
		path := fmt.Sprintf("baseline.billing[%d]", i)
		ds.BaselineBilling = append(ds.BaselineBilling, contract.BaselineBilling{
			ContractID:   ds.ContractID,
			BillingMonth: p.month(path+".month", b.Month),
			Amount:       p.decimal(path+".amount", b.Amount),
		})
	}
	for i, row := range fx.Legacy {
		br := p.billingRow(fmt.Sprintf("legacy[%d]", i), row)
		ds.Legacy = append(ds.Legacy, contract.LegacyEngineer{
			ID: contract.EngineerID(row.ID), ContractID: ds.ContractID, EngineerLevel: row.Level,
			StartDate: br.start, EndDate: br.end, BillingType: row.BillingType,
			Rating: br.rating, Salary: br.salary, HourlyRate: br.hourlyRate, Hours: br.hours, Subtotal: br.subtotal,
		})
	}

	for i, cr := range fx.ChangeRequests {
		crPath := fmt.Sprintf("change_requests[%d]", i)
		crID := contract.ChangeRequestID(cr.ID)
		if cr.ID <= 0 {
			p.fail(&generic.ValidationError{Field: crPath + ".id", Value: fmt.Sprint(cr.ID), Err: generic.ErrInvalidID})
		}
		ds.ChangeRequests = append(ds.ChangeRequests, contract.ChangeRequest{
			ID:         crID,
			ContractID: ds.ContractID,
			Title:      cr.Title,
			Status:     cr.Status,
			CreatedAt:  p.timestamp(crPath+".created_at", cr.CreatedAt),
		})

		for j, row := range cr.LineItems {
			br := p.billingRow(fmt.Sprintf("%s.line_items[%d]", crPath, j), row)
			ds.LineItems = append(ds.LineItems, contract.EngineerLineItem{
				ID: contract.LineItemID(row.ID), ChangeRequestID: crID, EngineerLevel: row.Level,
				StartDate: br.start, EndDate: br.end, BillingType: row.BillingType,
				Rating: br.rating, Salary: br.salary, HourlyRate: br.hourlyRate, Hours: br.hours, Subtotal: br.subtotal,
			})
		}
		for j, ev := range cr.Events {
			if event, ok := p.event(fmt.Sprintf("%s.events[%d]", crPath, j), crID, ev); ok {
				ds.ResourceEvents = append(ds.ResourceEvents, event)
			}
		}
		for j, b := range cr.Billing {
			path := fmt.Sprintf("%s.billing[%d]", crPath, j)
			typ := contract.BillingEventType(b.Type)
			if typ == "" {
				typ = contract.BillingAdjustment
			}
			ds.BillingEvents = append(ds.BillingEvents, contract.BillingEvent{
				ChangeRequestID: crID,
				BillingMonth:    p.month(path+".month", b.Month),
				DeltaAmount:     p.decimal(path+".delta", b.Delta),
				Description:     b.Description,
				Type:            typ,
			})
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return ds, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load writes the fixture into w. Change requests go first so events can
// reference them.
func Load(ctx context.Context, w contract.Writer, fx *Fixture) error {
	ds, err := fx.Build()
	if err != nil {
		return err
	}

	for _, cr := range ds.ChangeRequests {
		if err := w.SaveChangeRequest(ctx, cr); err != nil {
			return eris.Wrapf(err, "factory: save change request %d", cr.ID)
		}
	}
	if len(ds.BaselineEngineers) > 0 || len(ds.BaselineBilling) > 0 {
		if err := w.CaptureBaseline(ctx, ds.ContractID, ds.BaselineEngineers, ds.BaselineBilling); err != nil {
			return eris.Wrapf(err, "factory: capture baseline for contract %d", ds.ContractID)
		}
	}
	if len(ds.Legacy) > 0 {
		if err := w.SaveLegacyEngineers(ctx, ds.Legacy); err != nil {
			return eris.Wrap(err, "factory: save legacy engineers")
		}
	}
	if len(ds.LineItems) > 0 {
		if err := w.SaveLineItems(ctx, ds.LineItems); err != nil {
			return eris.Wrap(err, "factory: save line items")
		}
	}
	if len(ds.ResourceEvents) > 0 || len(ds.BillingEvents) > 0 {
		if _, _, err := w.AppendEvents(ctx, ds.ResourceEvents, ds.BillingEvents); err != nil {
			return eris.Wrap(err, "factory: append events")
		}
	}
	return nil
}

// =============================================================================
// FIELD PARSER - Keeps the first error with its field path
// =============================================================================

type parser struct {
	err error
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *parser) date(field, s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		p.fail(&generic.ValidationError{Field: field, Value: s, Err: generic.ErrInvalidDate})
	}
	return tp
}

func (p *parser) datePtr(field, s string) *generic.TimePoint {
	if s == "" {
		return nil
	}
	tp := p.date(field, s)
	return &tp
}

func (p *parser) month(field, s string) generic.YearMonth {
	ym, err := generic.ParseYearMonth(s)
	if err != nil {
		p.fail(&generic.ValidationError{Field: field, Value: s, Err: generic.ErrInvalidYearMonth})
	}
	return ym
}

func (p *parser) decimal(field, s string) decimal.Decimal {
	d, err := generic.ParseDecimal(field, s)
	if err != nil {
		p.fail(err)
	}
	return d
}

func (p *parser) nullDecimal(field, s string) decimal.NullDecimal {
	nd, err := generic.NullFromString(&s)
	if err != nil {
		p.fail(&generic.ValidationError{Field: field, Value: s, Err: err})
	}
	return nd
}

func (p *parser) timestamp(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		p.fail(&generic.ValidationError{Field: field, Value: s, Err: generic.ErrInvalidDate})
	}
	return t
}

func (p *parser) terms(field string, t TermsYAML) contract.EngineerTerms {
	return contract.EngineerTerms{
		Rating:    p.nullDecimal(field+".rating", t.Rating),
		UnitRate:  p.nullDecimal(field+".unit_rate", t.UnitRate),
		StartDate: p.datePtr(field+".start_date", t.StartDate),
		EndDate:   p.datePtr(field+".end_date", t.EndDate),
	}
}

func (p *parser) event(path string, crID contract.ChangeRequestID, ev EventYAML) (contract.ResourceEvent, bool) {
	seat := contract.Position{Role: ev.Role, Level: ev.Level}
	id := contract.EngineerID(ev.EngineerID)
	out := contract.ResourceEvent{
		ChangeRequestID: crID,
		EffectiveStart:  p.date(path+".effective_start", ev.EffectiveStart),
		CreatedAt:       p.timestamp(path+".created_at", ev.CreatedAt),
	}

	switch contract.Action(ev.Action) {
	case contract.ActionAdd:
		out.Change = contract.AddEngineer{EngineerID: id, Seat: seat, Terms: p.terms(path+".new", ev.New)}
	case contract.ActionRemove:
		out.Change = contract.RemoveEngineer{EngineerID: id, Seat: seat, EndDate: p.datePtr(path+".new.end_date", ev.New.EndDate)}
	case contract.ActionModify:
		out.Change = contract.ModifyEngineer{
			EngineerID: id,
			Seat:       seat,
			Old:        p.terms(path+".old", ev.Old),
			New:        p.terms(path+".new", ev.New),
		}
	default:
		p.fail(&generic.ValidationError{Field: path + ".action", Value: ev.Action, Err: generic.ErrInvalidEvent})
		return out, false
	}

	if p.err == nil {
		if err := out.Validate(); err != nil {
			p.fail(eris.Wrapf(err, "factory: %s", path))
			return out, false
		}
	}
	return out, true
}

type billingRow struct {
	start, end                                  *generic.TimePoint
	rating, salary, hourlyRate, hours, subtotal decimal.NullDecimal
}

func (p *parser) billingRow(path string, row BillingRowYAML) billingRow {
	return billingRow{
		start:      p.datePtr(path+".start_date", row.StartDate),
		end:        p.datePtr(path+".end_date", row.EndDate),
		rating:     p.nullDecimal(path+".rating", row.Rating),
		salary:     p.nullDecimal(path+".salary", row.Salary),
		hourlyRate: p.nullDecimal(path+".hourly_rate", row.HourlyRate),
		hours:      p.nullDecimal(path+".hours", row.Hours),
		subtotal:   p.nullDecimal(path+".subtotal", row.Subtotal),
	}
}

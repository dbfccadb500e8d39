package contract

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// MONTHLY SNAPSHOT - Roster for a calendar month, newest edit wins
// =============================================================================

// MonthlyInputs is everything the monthly fold reads. Events must already be
// approval-filtered. LineItems is keyed by change request.
type MonthlyInputs struct {
	Baseline  []BaselineEngineer
	Legacy    []LegacyEngineer
	Events    []ResourceEvent
	LineItems map[ChangeRequestID][]EngineerLineItem
}

// MonthlySnapshot returns the engineers engaged during month, with billing shape.
func (e *Engine) MonthlySnapshot(ctx context.Context, contractID ContractID, month generic.YearMonth) ([]MonthlyEngineerSnapshot, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}
	in, err := e.loadMonthlyInputs(ctx, contractID)
	if err != nil {
		return nil, err
	}
	result := e.foldMonth(in, month)
	e.logger.Debug("monthly snapshot",
		zap.Int64("contract_id", int64(contractID)),
		zap.Stringer("month", month),
		zap.Int("engineers", len(result)),
	)
	return result, nil
}

// SnapshotForMonth is the pure fold behind MonthlySnapshot. today bounds
// events that carry no dates at all.
func SnapshotForMonth(in MonthlyInputs, month generic.YearMonth, today generic.TimePoint, horizonYears int) []MonthlyEngineerSnapshot {
	return newMonthlyFold(month, today, horizonYears, in.LineItems, zap.NewNop()).run(in)
}

func (e *Engine) foldMonth(in MonthlyInputs, month generic.YearMonth) []MonthlyEngineerSnapshot {
	return newMonthlyFold(month, generic.DateOf(e.now()), e.horizonYears, in.LineItems, e.logger).run(in)
}

// loadMonthlyInputs reads baseline, legacy rows, approved events and the line
// items of every change request that produced one of those events.
func (e *Engine) loadMonthlyInputs(ctx context.Context, contractID ContractID) (MonthlyInputs, error) {
	var in MonthlyInputs
	var err error

	if in.Baseline, err = e.store.BaselineEngineers(ctx, contractID); err != nil {
		return in, eris.Wrapf(err, "load baseline for contract %d", contractID)
	}
	if in.Legacy, err = e.store.LegacyEngineers(ctx, contractID); err != nil {
		return in, eris.Wrapf(err, "load legacy engineers for contract %d", contractID)
	}
	if in.Events, err = e.ApprovedResourceEvents(ctx, contractID); err != nil {
		return in, err
	}

	in.LineItems = make(map[ChangeRequestID][]EngineerLineItem)
	for _, ev := range in.Events {
		if _, ok := in.LineItems[ev.ChangeRequestID]; ok {
			continue
		}
		items, err := e.store.LineItems(ctx, ev.ChangeRequestID)
		if err != nil {
			return in, eris.Wrapf(err, "load line items for change request %d", ev.ChangeRequestID)
		}
		in.LineItems[ev.ChangeRequestID] = items
	}
	return in, nil
}

// slotFate records which kind of event first settled an engineer during the fold.
type slotFate int

const (
	fateOpen slotFate = iota
	fateAdded
	fateModified
	fateRemoved
)

// monthlyFold is the accumulator of a single MonthlySnapshot call.
//
// Candidates are visited newest first, so the newest event to decide a field
// wins: an older MODIFY only fills fields no newer MODIFY set, an older event
// never revives an engineer a newer REMOVE dropped, a REMOVE does not undo a
// newer ADD, and a MODIFY whose engineer is only introduced by an older ADD is
// held back until that ADD is visited.
type monthlyFold struct {
	month   generic.YearMonth
	window  generic.Period
	today   generic.TimePoint
	horizon int
	items   map[ChangeRequestID][]EngineerLineItem
	log     *zap.Logger

	entries  map[int64]*MonthlyEngineerSnapshot
	fate     map[int64]slotFate
	touched  map[int64]fieldMask
	deferred map[int64][]ResourceEvent
}

func newMonthlyFold(month generic.YearMonth, today generic.TimePoint, horizon int, items map[ChangeRequestID][]EngineerLineItem, log *zap.Logger) *monthlyFold {
	return &monthlyFold{
		month:    month,
		window:   month.Period(),
		today:    today,
		horizon:  horizon,
		items:    items,
		log:      log,
		entries:  make(map[int64]*MonthlyEngineerSnapshot),
		fate:     make(map[int64]slotFate),
		touched:  make(map[int64]fieldMask),
		deferred: make(map[int64][]ResourceEvent),
	}
}

func (f *monthlyFold) run(in MonthlyInputs) []MonthlyEngineerSnapshot {
	if len(in.Baseline) > 0 {
		f.seedBaseline(in.Baseline)
	} else {
		for _, s := range ProjectLegacy(in.Legacy, f.month, LegacyPrimary) {
			s := s
			f.entries[int64(s.EngineerID)] = &s
		}
	}

	candidates := f.candidates(in.Events)
	for _, ev := range candidates {
		switch c := ev.Change.(type) {
		case AddEngineer:
			f.add(ev, c)
		case RemoveEngineer:
			f.remove(ev, c)
		case ModifyEngineer:
			f.modify(ev, c)
		}
	}
	for _, pending := range f.deferred {
		for _, ev := range pending {
			logOrphan(f.log, ev)
		}
	}

	result := f.collect()
	if len(result) == 0 {
		result = ProjectLegacy(in.Legacy, f.month, LegacyFallback)
		if len(result) > 0 {
			f.log.Debug("monthly snapshot fell back to legacy engineers",
				zap.Stringer("month", f.month),
				zap.Int("engineers", len(result)),
			)
		}
	}
	return result
}

func (f *monthlyFold) seedBaseline(baseline []BaselineEngineer) {
	for _, b := range baseline {
		start := b.StartDate
		if !f.window.Overlaps(&start, b.EndDate) {
			continue
		}
		f.entries[int64(b.ID)] = &MonthlyEngineerSnapshot{
			EngineerID:    b.ID,
			EngineerLevel: b.LevelOrRole(),
			StartDate:     &start,
			EndDate:       b.EndDate,
			BillingType:   BillingMonthly,
			Rating:        generic.OrDefault(b.Rating, DefaultRating),
			Salary:        generic.OrDefault(b.UnitRate, decimal.Zero),
		}
	}
}

// candidates returns the events whose effect window overlaps the month,
// newest first. A window runs from the effective start to the event's new end
// date, else its new start date plus the horizon, else today plus the horizon.
// Removals stay in force indefinitely.
func (f *monthlyFold) candidates(events []ResourceEvent) []ResourceEvent {
	out := make([]ResourceEvent, 0, len(events))
	for _, ev := range events {
		start := ev.EffectiveStart
		if f.window.Overlaps(&start, f.windowEnd(ev)) {
			out = append(out, ev)
		}
	}
	SortNewestFirst(out)
	return out
}

func (f *monthlyFold) windowEnd(ev ResourceEvent) *generic.TimePoint {
	if ev.Action() == ActionRemove {
		return nil
	}
	terms := ev.newTerms()
	switch {
	case terms.EndDate != nil:
		return terms.EndDate
	case terms.StartDate != nil:
		return terms.StartDate.AddYears(f.horizon).Ptr()
	default:
		return f.today.AddYears(f.horizon).Ptr()
	}
}

func (f *monthlyFold) add(ev ResourceEvent, c AddEngineer) {
	key := int64(c.EngineerID)
	if c.EngineerID == 0 {
		key = -int64(ev.ID)
	} else {
		if f.fate[key] == fateRemoved {
			return
		}
		if _, exists := f.entries[key]; exists {
			return
		}
	}

	start := f.month.Start()
	if c.Terms.StartDate != nil {
		start = *c.Terms.StartDate
	}
	end := f.month.End()
	if c.Terms.EndDate != nil {
		end = *c.Terms.EndDate
	}
	s := &MonthlyEngineerSnapshot{
		EngineerID:    c.EngineerID,
		EngineerLevel: c.Seat.Label(),
		StartDate:     &start,
		EndDate:       &end,
		BillingType:   BillingMonthly,
		Rating:        generic.OrDefault(c.Terms.Rating, DefaultRating),
		Salary:        generic.OrDefault(c.Terms.UnitRate, decimal.Zero),
	}
	if item := MatchLineItem(ev, f.items[ev.ChangeRequestID]); item != nil {
		applyBilling(s, item)
	}
	f.entries[key] = s
	f.fate[key] = fateAdded

	for _, later := range f.deferred[key] {
		f.applyModify(key, s, later, later.Change.(ModifyEngineer))
	}
	delete(f.deferred, key)
}

func (f *monthlyFold) remove(ev ResourceEvent, c RemoveEngineer) {
	key := int64(c.EngineerID)
	if c.EngineerID == 0 || f.fate[key] == fateAdded || f.fate[key] == fateRemoved {
		return
	}
	if _, exists := f.entries[key]; !exists {
		logOrphan(f.log, ev)
	}
	delete(f.entries, key)
	delete(f.deferred, key)
	f.fate[key] = fateRemoved
}

func (f *monthlyFold) modify(ev ResourceEvent, c ModifyEngineer) {
	key := int64(c.EngineerID)
	if c.EngineerID == 0 {
		logOrphan(f.log, ev)
		return
	}
	if f.fate[key] == fateRemoved {
		f.log.Debug("edit of removed engineer ignored",
			zap.Int64("event_id", int64(ev.ID)),
			zap.Int64("engineer_id", key),
		)
		return
	}
	s, exists := f.entries[key]
	if !exists {
		f.deferred[key] = append(f.deferred[key], ev)
		return
	}
	f.applyModify(key, s, ev, c)
}

// applyModify overwrites the fields the event supplies, except those a newer
// event already set.
func (f *monthlyFold) applyModify(key int64, s *MonthlyEngineerSnapshot, ev ResourceEvent, c ModifyEngineer) {
	newer := f.touched[key]
	var set fieldMask

	if c.Seat.Level != "" && !newer.has(fieldLevel) {
		s.EngineerLevel = c.Seat.Level
		set |= fieldLevel
	}
	if c.New.StartDate != nil && !newer.has(fieldStart) {
		s.StartDate = c.New.StartDate
		set |= fieldStart
	}
	if c.New.EndDate != nil && !newer.has(fieldEnd) {
		s.EndDate = c.New.EndDate
		set |= fieldEnd
	}
	if c.New.Rating.Valid && !newer.has(fieldRating) {
		s.Rating = c.New.Rating.Decimal
		set |= fieldRating
	}
	if c.New.UnitRate.Valid && !newer.has(fieldSalary) {
		s.Salary = c.New.UnitRate.Decimal
		set |= fieldSalary
	}
	if item := MatchLineItem(ev, f.items[ev.ChangeRequestID]); item != nil && !newer.has(fieldBilling) {
		salary := s.Salary
		applyBilling(s, item)
		if newer.has(fieldSalary) {
			s.Salary = salary
		} else if !s.Salary.Equal(salary) {
			set |= fieldSalary
		}
		set |= fieldBilling
	}

	f.touched[key] = newer | set
	if f.fate[key] == fateOpen {
		f.fate[key] = fateModified
	}
}

// fieldMask tracks which snapshot fields a MODIFY has already decided.
type fieldMask uint8

const (
	fieldLevel fieldMask = 1 << iota
	fieldStart
	fieldEnd
	fieldRating
	fieldSalary
	fieldBilling
)

func (m fieldMask) has(f fieldMask) bool { return m&f != 0 }

// collect keeps entries overlapping the month, sorted by level then start.
func (f *monthlyFold) collect() []MonthlyEngineerSnapshot {
	keys := make([]int64, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]MonthlyEngineerSnapshot, 0, len(keys))
	for _, k := range keys {
		s := f.entries[k]
		if f.window.Overlaps(s.StartDate, s.EndDate) {
			out = append(out, *s)
		}
	}
	sortSnapshots(out)
	return out
}

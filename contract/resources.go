package contract

import (
	"context"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// POINT-IN-TIME RESOURCES - Baseline + approved events up to a day
// =============================================================================

// CurrentResources returns the engineers engaged on asOf.
func (e *Engine) CurrentResources(ctx context.Context, contractID ContractID, asOf generic.TimePoint) ([]CurrentEngineerState, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		return nil, &generic.ValidationError{Field: "as_of", Value: "", Err: generic.ErrInvalidDate}
	}

	baseline, err := e.store.BaselineEngineers(ctx, contractID)
	if err != nil {
		return nil, eris.Wrapf(err, "load baseline for contract %d", contractID)
	}
	events, err := e.ApprovedResourceEvents(ctx, contractID)
	if err != nil {
		return nil, err
	}

	result := foldCurrent(baseline, events, asOf, e.logger)
	e.logger.Debug("current resources",
		zap.Int64("contract_id", int64(contractID)),
		zap.Stringer("as_of", asOf),
		zap.Int("engineers", len(result)),
	)
	return result, nil
}

// CurrentResourcesAt is the pure fold behind CurrentResources. events must
// already be approval-filtered.
func CurrentResourcesAt(baseline []BaselineEngineer, events []ResourceEvent, asOf generic.TimePoint) []CurrentEngineerState {
	return foldCurrent(baseline, events, asOf, zap.NewNop())
}

func foldCurrent(baseline []BaselineEngineer, events []ResourceEvent, asOf generic.TimePoint, log *zap.Logger) []CurrentEngineerState {
	roster := make([]CurrentEngineerState, 0, len(baseline))
	for _, b := range baseline {
		if !b.ActiveOn(asOf) {
			continue
		}
		roster = append(roster, CurrentEngineerState{
			EngineerID: b.ID,
			Role:       b.Role,
			Level:      b.Level,
			Rating:     b.Rating,
			UnitRate:   b.UnitRate,
			StartDate:  b.StartDate,
			EndDate:    b.EndDate,
		})
	}

	ordered := slices.Clone(events)
	SortChronological(ordered)

	for _, ev := range ordered {
		if ev.EffectiveStart.After(asOf) {
			continue
		}
		switch c := ev.Change.(type) {
		case AddEngineer:
			start := ev.EffectiveStart
			if c.Terms.StartDate != nil {
				start = *c.Terms.StartDate
			}
			roster = append(roster, CurrentEngineerState{
				Role:      c.Seat.Role,
				Level:     c.Seat.Level,
				Rating:    c.Terms.Rating,
				UnitRate:  c.Terms.UnitRate,
				StartDate: start,
				EndDate:   c.Terms.EndDate,
			})

		case RemoveEngineer:
			end := c.EndDate
			if end == nil {
				// No end date: the engagement stops the day before the removal takes effect.
				end = ev.EffectiveStart.AddDays(-1).Ptr()
			}
			if !applyToEngineer(roster, c.EngineerID, func(s *CurrentEngineerState) { s.EndDate = end }) {
				logOrphan(log, ev)
			}

		case ModifyEngineer:
			terms := c.New
			if !applyToEngineer(roster, c.EngineerID, func(s *CurrentEngineerState) {
				if terms.Rating.Valid {
					s.Rating = terms.Rating
				}
				if terms.UnitRate.Valid {
					s.UnitRate = terms.UnitRate
				}
				if terms.StartDate != nil {
					s.StartDate = *terms.StartDate
				}
				if terms.EndDate != nil {
					s.EndDate = terms.EndDate
				}
			}) {
				logOrphan(log, ev)
			}
		}
	}

	active := roster[:0]
	for _, s := range roster {
		if generic.ActiveOn(s.StartDate, s.EndDate, asOf) {
			active = append(active, s)
		}
	}
	return active
}

// applyToEngineer runs fn on every entry with the id. Returns false when
// there is none.
func applyToEngineer(roster []CurrentEngineerState, id EngineerID, fn func(*CurrentEngineerState)) bool {
	if id == 0 {
		return false
	}
	found := false
	for i := range roster {
		if roster[i].EngineerID == id {
			fn(&roster[i])
			found = true
		}
	}
	return found
}

func logOrphan(log *zap.Logger, ev ResourceEvent) {
	log.Debug("event targets no roster entry",
		zap.Int64("event_id", int64(ev.ID)),
		zap.String("action", string(ev.Action())),
		zap.Int64("engineer_id", int64(ev.Change.Target())),
	)
}

func validateContractID(id ContractID) error {
	if id <= 0 {
		return &generic.ValidationError{Field: "contract_id", Value: strconv.FormatInt(int64(id), 10), Err: generic.ErrInvalidID}
	}
	return nil
}

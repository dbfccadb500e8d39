package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

func TestRecorder_CaptureBaselineOnce(t *testing.T) {
	h := newHarness(t)
	rec := contract.NewRecorder(h.store, nil)

	err := rec.CaptureBaseline(h.ctx, contractID, []contract.BaselineEngineer{
		{Level: "Mid", StartDate: date("2024-01-01")},
	}, nil)
	assert.ErrorIs(t, err, generic.ErrBaselineExists)
	assert.True(t, generic.IsConflict(err))

	engineers, err := h.engine.BaselineResources(h.ctx, contractID)
	require.NoError(t, err)
	assert.Len(t, engineers, 2, "original baseline untouched")
}

func TestRecorder_CaptureBaselineValidation(t *testing.T) {
	h := newHarness(t)
	rec := contract.NewRecorder(h.store, nil)
	march := generic.MustYearMonth("2024-03")

	tests := []struct {
		name      string
		engineers []contract.BaselineEngineer
		billing   []contract.BaselineBilling
		want      error
	}{
		{
			name:      "missing start date",
			engineers: []contract.BaselineEngineer{{Level: "Mid"}},
			want:      generic.ErrInvalidDate,
		},
		{
			name:      "end before start",
			engineers: []contract.BaselineEngineer{{Level: "Mid", StartDate: date("2024-02-01"), EndDate: datePtr("2024-01-31")}},
			want:      generic.ErrInvalidDate,
		},
		{
			name:    "duplicate month",
			billing: []contract.BaselineBilling{{BillingMonth: march, Amount: dec("1")}, {BillingMonth: march, Amount: dec("2")}},
			want:    generic.ErrInvalidYearMonth,
		},
		{
			name:    "missing month",
			billing: []contract.BaselineBilling{{Amount: dec("1")}},
			want:    generic.ErrInvalidYearMonth,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rec.CaptureBaseline(h.ctx, 9, tt.engineers, tt.billing)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Nothing was written for contract 9, so a valid capture still succeeds.
	require.NoError(t, rec.CaptureBaseline(h.ctx, 9, []contract.BaselineEngineer{{Level: "Mid", StartDate: date("2024-01-01")}}, nil))
}

func TestRecorder_RecordEvents(t *testing.T) {
	// GIVEN: An approved change request
	h := newHarness(t)
	h.changeRequest(10, "active")
	rec := contract.NewRecorder(h.store, nil)

	// WHEN: Recording an ADD and a billing delta without a type
	resource, billing, err := rec.RecordEvents(h.ctx, 10,
		[]contract.ResourceEvent{add(0, 0, seat("Frontend", "Mid"), "2024-04-01", contract.EngineerTerms{StartDate: datePtr("2024-04-01")})},
		[]contract.BillingEvent{{BillingMonth: generic.MustYearMonth("2024-04"), DeltaAmount: dec("3000")}},
	)

	// THEN: Both are stamped and stored
	require.NoError(t, err)
	require.Len(t, resource, 1)
	require.Len(t, billing, 1)
	assert.Equal(t, contract.ChangeRequestID(10), resource[0].ChangeRequestID)
	assert.NotZero(t, resource[0].ID)
	assert.Equal(t, clockNow, resource[0].CreatedAt)
	assert.Equal(t, contract.ChangeRequestID(10), billing[0].ChangeRequestID)
	assert.Equal(t, contract.BillingAdjustment, billing[0].Type)

	assert.Len(t, h.snapshot("2024-04"), 3)
	assert.True(t, h.bill("2024-04").Equal(dec("11000")))
}

func TestRecorder_RecordEventsRejected(t *testing.T) {
	h := newHarness(t)
	h.changeRequest(10, contract.StatusApproved)
	h.changeRequest(11, contract.StatusDraft)
	rec := contract.NewRecorder(h.store, nil)

	valid := add(0, 0, seat("Frontend", "Mid"), "2024-04-01", contract.EngineerTerms{})

	tests := []struct {
		name     string
		crID     contract.ChangeRequestID
		resource []contract.ResourceEvent
		billing  []contract.BillingEvent
		want     error
	}{
		{
			name:     "unknown change request",
			crID:     99,
			resource: []contract.ResourceEvent{valid},
			want:     generic.ErrChangeRequestNotFound,
		},
		{
			name:     "draft change request",
			crID:     11,
			resource: []contract.ResourceEvent{valid},
			want:     generic.ErrChangeRequestNotApproved,
		},
		{
			name:     "remove without engineer",
			crID:     10,
			resource: []contract.ResourceEvent{valid, remove(0, 0, "2024-04-01", nil)},
			want:     generic.ErrInvalidEvent,
		},
		{
			name:     "modify without engineer",
			crID:     10,
			resource: []contract.ResourceEvent{modify(0, 0, "2024-04-01", contract.EngineerTerms{Rating: some("90")})},
			want:     generic.ErrInvalidEvent,
		},
		{
			name: "add with reversed dates",
			crID: 10,
			resource: []contract.ResourceEvent{add(0, 0, seat("Dev", "Mid"), "2024-04-01", contract.EngineerTerms{
				StartDate: datePtr("2024-04-01"),
				EndDate:   datePtr("2024-03-01"),
			})},
			want: generic.ErrInvalidEvent,
		},
		{
			name:     "add without a seat",
			crID:     10,
			resource: []contract.ResourceEvent{add(0, 0, contract.Position{}, "2024-04-01", contract.EngineerTerms{})},
			want:     generic.ErrInvalidEvent,
		},
		{
			name:     "missing effective start",
			crID:     10,
			resource: []contract.ResourceEvent{{Change: contract.RemoveEngineer{EngineerID: 1}}},
			want:     generic.ErrInvalidEvent,
		},
		{
			name:    "billing without month",
			crID:    10,
			billing: []contract.BillingEvent{{DeltaAmount: dec("1")}},
			want:    generic.ErrInvalidEvent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := rec.RecordEvents(h.ctx, tt.crID, tt.resource, tt.billing)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Nothing was appended by any rejected call.
	events, err := h.store.ResourceEvents(h.ctx, contractID)
	require.NoError(t, err)
	assert.Empty(t, events)
	billing, err := h.store.BillingEvents(h.ctx, contractID)
	require.NoError(t, err)
	assert.Empty(t, billing)
}

func TestResourceEventRow_RoundTrip(t *testing.T) {
	ev := contract.ResourceEvent{
		ID:              7,
		ChangeRequestID: 3,
		EffectiveStart:  date("2024-03-01"),
		CreatedAt:       clockNow,
		Change: contract.ModifyEngineer{
			EngineerID: 1,
			Seat:       seat("Backend", "Senior"),
			Old:        contract.EngineerTerms{Rating: some("100")},
			New:        contract.EngineerTerms{Rating: some("90"), EndDate: datePtr("2024-12-31")},
		},
	}

	row := ev.Row()
	assert.Equal(t, contract.ActionModify, row.Action)
	assert.Equal(t, contract.EngineerID(1), row.EngineerID)
	assert.True(t, row.RatingOld.Decimal.Equal(dec("100")))

	back, err := row.Event()
	require.NoError(t, err)
	assert.Equal(t, ev, back)

	row.Action = "SWAP"
	_, err = row.Event()
	assert.ErrorIs(t, err, generic.ErrInvalidEvent)
}

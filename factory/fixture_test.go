package factory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/factory"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func loadScenario(t *testing.T, id string) (*contract.Engine, contract.ContractID) {
	t.Helper()
	fx, err := factory.Scenario(id)
	require.NoError(t, err)

	store := memory.NewMemory().WithClock(func() time.Time { return fixedNow })
	require.NoError(t, factory.Load(context.Background(), store, fx))
	return contract.NewEngine(store, contract.WithClock(func() time.Time { return fixedNow })), contract.ContractID(fx.ContractID)
}

func levels(snaps []contract.MonthlyEngineerSnapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.EngineerLevel
	}
	return out
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseFixture_RejectsUnknownKeys(t *testing.T) {
	_, err := factory.ParseFixture([]byte(`
contract_id: 1
baseline:
  engineers:
    - {id: 1, role: Dev, start_date: "2024-01-01", salary: "10"}
`))
	require.Error(t, err)
}

func TestParseFixture_RequiresContractID(t *testing.T) {
	_, err := factory.ParseFixture([]byte(`name: nothing`))
	assert.ErrorIs(t, err, generic.ErrInvalidID)
}

func TestBuild_ReportsFieldPath(t *testing.T) {
	fx, err := factory.ParseFixture([]byte(`
contract_id: 1
change_requests:
  - id: 3
    status: Approved
    events:
      - {action: ADD, role: Dev, effective_start: "2024-13-01"}
`))
	require.NoError(t, err)

	_, err = fx.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvalidDate)

	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "change_requests[0].events[0].effective_start", verr.Field)
}

func TestBuild_RejectsInvalidEvents(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown action",
			yaml: `{action: SWAP, engineer_id: 1, effective_start: "2024-01-01"}`,
		},
		{
			name: "remove without engineer",
			yaml: `{action: REMOVE, effective_start: "2024-01-01"}`,
		},
		{
			name: "reversed dates",
			yaml: `{action: ADD, role: Dev, effective_start: "2024-01-01", new: {start_date: "2024-05-01", end_date: "2024-04-01"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := factory.ParseFixture([]byte("contract_id: 1\nchange_requests:\n  - id: 1\n    status: Approved\n    events:\n      - " + tt.yaml + "\n"))
			require.NoError(t, err)
			_, err = fx.Build()
			assert.ErrorIs(t, err, generic.ErrInvalidEvent)
		})
	}
}

func TestBuild_DefaultsBillingType(t *testing.T) {
	fx, err := factory.ParseFixture([]byte(`
contract_id: 5
change_requests:
  - id: 1
    status: Approved
    billing:
      - {month: "2024-02", delta: "250.50"}
`))
	require.NoError(t, err)

	ds, err := fx.Build()
	require.NoError(t, err)
	require.Len(t, ds.BillingEvents, 1)
	assert.Equal(t, contract.BillingAdjustment, ds.BillingEvents[0].Type)
	assert.True(t, ds.BillingEvents[0].DeltaAmount.Equal(decimal.RequireFromString("250.5")))
	assert.Equal(t, contract.ContractID(5), ds.ChangeRequests[0].ContractID)
}

// =============================================================================
// EMBEDDED SCENARIOS
// =============================================================================

func TestScenarios_AllBuild(t *testing.T) {
	infos, err := factory.Scenarios()
	require.NoError(t, err)
	require.NotEmpty(t, infos)

	for _, info := range infos {
		t.Run(info.ID, func(t *testing.T) {
			fx, err := factory.Scenario(info.ID)
			require.NoError(t, err)
			assert.Equal(t, info.ID, fx.ID)
			_, err = fx.Build()
			assert.NoError(t, err)
		})
	}
}

func TestScenario_Unknown(t *testing.T) {
	_, err := factory.Scenario("no-such-scenario")
	assert.ErrorIs(t, err, factory.ErrUnknownScenario)

	_, err = factory.Scenario("../go")
	assert.ErrorIs(t, err, factory.ErrUnknownScenario)
}

func TestLoad_RatingChange(t *testing.T) {
	engine, contractID := loadScenario(t, "rating-change")
	ctx := context.Background()

	feb, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-02"))
	require.NoError(t, err)
	mar, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-03"))
	require.NoError(t, err)

	require.Len(t, feb, 1)
	require.Len(t, mar, 1)
	assert.True(t, feb[0].Rating.Equal(decimal.NewFromInt(100)))
	assert.True(t, mar[0].Rating.Equal(decimal.NewFromInt(90)))

	billing, err := engine.CurrentBilling(ctx, contractID, generic.MustYearMonth("2024-03"))
	require.NoError(t, err)
	assert.True(t, billing.Equal(decimal.NewFromInt(4500)))
}

func TestLoad_RosterChanges(t *testing.T) {
	engine, contractID := loadScenario(t, "roster-changes")
	ctx := context.Background()

	// Draft and sent-back requests stay invisible
	feb, err := engine.CurrentResources(ctx, contractID, generic.MustDate("2024-02-15"))
	require.NoError(t, err)
	require.Len(t, feb, 2)
	for _, s := range feb {
		assert.True(t, s.Rating.Decimal.Equal(decimal.NewFromInt(100)))
		assert.NotEqual(t, "Lead", s.Level)
	}

	mar, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-03"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Junior", "Mid", "Senior"}, levels(mar))

	may, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid", "Senior"}, levels(may))

	billFeb, err := engine.CurrentBilling(ctx, contractID, generic.MustYearMonth("2024-02"))
	require.NoError(t, err)
	assert.True(t, billFeb.Equal(decimal.NewFromInt(8000)), "draft delta excluded")

	billMar, err := engine.CurrentBilling(ctx, contractID, generic.MustYearMonth("2024-03"))
	require.NoError(t, err)
	assert.True(t, billMar.Equal(decimal.NewFromInt(12000)))
}

func TestLoad_LegacyContract(t *testing.T) {
	engine, contractID := loadScenario(t, "legacy-contract")
	ctx := context.Background()

	mar, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-03"))
	require.NoError(t, err)
	require.Equal(t, []string{"Junior", "Senior"}, levels(mar))
	assert.Equal(t, contract.BillingHourly, mar[0].BillingType)
	assert.True(t, mar[0].Subtotal.Decimal.Equal(decimal.NewFromInt(3200)))

	jul, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-07"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Senior"}, levels(jul))
}

func TestLoad_HourlyLineItems(t *testing.T) {
	engine, contractID := loadScenario(t, "hourly-line-items")
	ctx := context.Background()

	apr, err := engine.MonthlySnapshot(ctx, contractID, generic.MustYearMonth("2024-04"))
	require.NoError(t, err)
	require.Equal(t, []string{"Mid", "Senior"}, levels(apr))

	senior := apr[1]
	assert.Equal(t, contract.BillingHourly, senior.BillingType)
	assert.True(t, senior.Salary.Equal(decimal.NewFromInt(5000)), "hourly salary is the line item subtotal")
	assert.True(t, senior.Rating.Equal(decimal.NewFromInt(110)))
	assert.True(t, senior.Hours.Decimal.Equal(decimal.NewFromInt(100)))

	billing, err := engine.CurrentBilling(ctx, contractID, generic.MustYearMonth("2024-04"))
	require.NoError(t, err)
	assert.True(t, billing.Equal(decimal.NewFromInt(9000)))
}

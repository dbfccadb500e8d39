package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// newMockStore creates a Store backed by pgxmock.
func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewWithPool(mock), mock
}

func pgDate(s string) pgtype.Date {
	return pgtype.Date{Time: generic.MustDate(s).Time, Valid: true}
}

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(migrationLockID).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS change_requests").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(migrationLockID).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_SchemaError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("SELECT pg_advisory_lock").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	mock.ExpectExec("SELECT pg_advisory_unlock").WillReturnResult(pgxmock.NewResult("SELECT", 1))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptureBaseline_Inserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectExec("INSERT INTO baseline_engineers").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("SELECT setval").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("INSERT INTO baseline_billing").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.CaptureBaseline(context.Background(), 3,
		[]contract.BaselineEngineer{{ID: 8, Role: "Dev", StartDate: generic.MustDate("2024-01-01")}},
		[]contract.BaselineBilling{{BillingMonth: generic.MustYearMonth("2024-01"), Amount: decimal.NewFromInt(100)}},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptureBaseline_AlreadyCaptured(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectRollback()

	err := s.CaptureBaseline(context.Background(), 3,
		[]contract.BaselineEngineer{{Role: "Dev", StartDate: generic.MustDate("2024-01-01")}}, nil)
	assert.ErrorIs(t, err, generic.ErrBaselineExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaselineEngineers_Scan(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"id", "contract_id", "role", "level", "rating", "unit_rate", "start_date", "end_date"}).
		AddRow(int64(1), int64(3), "Dev", "Senior", pgText("100.0000"), nil, pgDate("2024-01-01"), nil).
		AddRow(int64(2), int64(3), "QA", "", nil, pgText("4500.5000"), pgDate("2024-02-01"), pgDate("2024-06-30"))
	mock.ExpectQuery("FROM baseline_engineers").WithArgs(int64(3)).WillReturnRows(rows)

	got, err := s.BaselineEngineers(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, contract.EngineerID(1), got[0].ID)
	assert.True(t, got[0].Rating.Decimal.Equal(decimal.NewFromInt(100)))
	assert.False(t, got[0].UnitRate.Valid)
	assert.Nil(t, got[0].EndDate)
	assert.Equal(t, "2024-01-01", got[0].StartDate.String())

	assert.Equal(t, "QA", got[1].LevelOrRole())
	require.NotNil(t, got[1].EndDate)
	assert.Equal(t, "2024-06-30", got[1].EndDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaselineBilling_Scan(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"contract_id", "billing_month", "amount"}).
		AddRow(int64(3), pgDate("2024-02-01"), "1250.7500")
	mock.ExpectQuery("FROM baseline_billing").WithArgs(int64(3)).WillReturnRows(rows)

	got, err := s.BaselineBilling(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02", got[0].BillingMonth.String())
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("1250.75")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequest_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM change_requests").WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)

	_, err := s.ChangeRequest(context.Background(), 99)
	assert.ErrorIs(t, err, generic.ErrChangeRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequests_Scan(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "contract_id", "title", "status", "created_at"}).
		AddRow(int64(4), int64(3), "Extend team", "Active", created)
	mock.ExpectQuery("FROM change_requests").WithArgs(int64(3)).WillReturnRows(rows)

	got, err := s.ChangeRequests(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsApproved())
	assert.Equal(t, created, got[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChangeRequest_Upsert(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("ON CONFLICT").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveChangeRequest(context.Background(), contract.ChangeRequest{ID: 4, ContractID: 3, Title: "Extend team", Status: "Approved"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceEvents_Decode(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC)

	cols := []string{
		"id", "change_request_id", "action", "engineer_id", "role", "level",
		"rating_old", "rating_new", "unit_rate_old", "unit_rate_new",
		"start_date_old", "start_date_new", "end_date_old", "end_date_new",
		"effective_start", "created_at",
	}
	rows := pgxmock.NewRows(cols).
		AddRow(int64(1), int64(4), "ADD", nil, "QA", "Junior",
			nil, pgText("95.0000"), nil, nil,
			nil, pgDate("2024-02-01"), nil, nil,
			pgDate("2024-02-01"), created).
		AddRow(int64(2), int64(4), "MODIFY", pgtype.Int8{Int64: 11, Valid: true}, "Dev", "Senior",
			pgText("100.0000"), pgText("90.0000"), nil, nil,
			nil, nil, nil, nil,
			pgDate("2024-03-01"), created)
	mock.ExpectQuery("FROM resource_events").WithArgs(int64(3)).WillReturnRows(rows)

	events, err := s.ResourceEvents(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, events, 2)

	add, ok := events[0].Change.(contract.AddEngineer)
	require.True(t, ok)
	assert.Zero(t, add.EngineerID)
	assert.Equal(t, "Junior", add.Seat.Label())
	require.NotNil(t, add.Terms.StartDate)
	assert.Equal(t, "2024-02-01", add.Terms.StartDate.String())

	mod, ok := events[1].Change.(contract.ModifyEngineer)
	require.True(t, ok)
	assert.Equal(t, contract.EngineerID(11), mod.EngineerID)
	assert.True(t, mod.New.Rating.Decimal.Equal(decimal.NewFromInt(90)))
	assert.True(t, mod.Old.Rating.Decimal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2024-03-01", events[1].EffectiveStart.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceEvents_UnknownAction(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{
		"id", "change_request_id", "action", "engineer_id", "role", "level",
		"rating_old", "rating_new", "unit_rate_old", "unit_rate_new",
		"start_date_old", "start_date_new", "end_date_old", "end_date_new",
		"effective_start", "created_at",
	}).AddRow(int64(1), int64(4), "SWAP", nil, "", "", nil, nil, nil, nil, nil, nil, nil, nil, pgDate("2024-02-01"), time.Now())
	mock.ExpectQuery("FROM resource_events").WillReturnRows(rows)

	_, err := s.ResourceEvents(context.Background(), 3)
	assert.ErrorIs(t, err, generic.ErrInvalidEvent)
}

func TestAppendEvents_Transaction(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resource_events").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(41), created))
	mock.ExpectQuery("INSERT INTO billing_events").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))
	mock.ExpectCommit()

	resource, billing, err := s.AppendEvents(context.Background(),
		[]contract.ResourceEvent{{
			ChangeRequestID: 4,
			EffectiveStart:  generic.MustDate("2024-03-01"),
			Change:          contract.RemoveEngineer{EngineerID: 11},
		}},
		[]contract.BillingEvent{{
			ChangeRequestID: 4,
			BillingMonth:    generic.MustYearMonth("2024-03"),
			DeltaAmount:     decimal.NewFromInt(-500),
			Type:            contract.BillingReduction,
		}},
	)
	require.NoError(t, err)
	require.Len(t, resource, 1)
	require.Len(t, billing, 1)
	assert.Equal(t, contract.EventID(41), resource[0].ID)
	assert.Equal(t, created, resource[0].CreatedAt)
	assert.Equal(t, contract.EventID(7), billing[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendEvents_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resource_events").WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	_, _, err := s.AppendEvents(context.Background(),
		[]contract.ResourceEvent{{
			ChangeRequestID: 99,
			EffectiveStart:  generic.MustDate("2024-03-01"),
			Change:          contract.RemoveEngineer{EngineerID: 11},
		}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert resource event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLineItems_Scan(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{
		"id", "change_request_id", "engineer_level", "start_date", "end_date", "billing_type",
		"rating", "salary", "hourly_rate", "hours", "subtotal",
	}).AddRow(int64(5), int64(4), "Senior", pgDate("2024-02-01"), nil, "Hourly",
		nil, nil, pgText("40.0000"), pgText("160.00"), pgText("6400.0000"))
	mock.ExpectQuery("FROM cr_line_items").WithArgs(int64(4)).WillReturnRows(rows)

	items, err := s.LineItems(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, contract.LineItemID(5), items[0].ID)
	assert.True(t, contract.IsHourly(items[0].BillingType))
	assert.True(t, items[0].Subtotal.Decimal.Equal(decimal.NewFromInt(6400)))
	assert.False(t, items[0].Rating.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLegacyEngineers_Transaction(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO legacy_engineers").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.SaveLegacyEngineers(context.Background(), []contract.LegacyEngineer{
		{ContractID: 3, EngineerLevel: "Senior", BillingType: contract.BillingMonthly, Salary: generic.SomeInt(3000)},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReset(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("TRUNCATE").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))

	require.NoError(t, s.Reset(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

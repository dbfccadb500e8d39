/*
handlers_test.go - HTTP tests for the contract endpoints

Each test loads a demo scenario through the API, then queries it through
the chi router the server uses.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/store/memory"
)

var testNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

type testServer struct {
	handler *Handler
	router  http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := func() time.Time { return testNow }
	store := memory.NewMemory().WithClock(clock)
	engine := contract.NewEngine(store, contract.WithClock(clock))
	h := NewHandler(store, engine, WithHandlerClock(clock))
	return &testServer{handler: h, router: NewRouter(h, nil)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) load(t *testing.T, scenario string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: scenario})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustDate(t *testing.T, s string) generic.TimePoint {
	t.Helper()
	tp, err := generic.ParseDate(s)
	require.NoError(t, err)
	return tp
}

func mustMonth(t *testing.T, s string) generic.YearMonth {
	t.Helper()
	ym, err := generic.ParseYearMonth(s)
	require.NoError(t, err)
	return ym
}

// =============================================================================
// QUERIES
// =============================================================================

func TestGetSnapshot_RatingChange(t *testing.T) {
	// GIVEN: A senior engineer whose rating drops to 90 from March
	s := setupTestServer(t)
	s.load(t, "rating-change")

	// WHEN: Querying February and March
	feb := s.do(t, http.MethodGet, "/api/contracts/1/snapshot?month=2024-02", nil)
	mar := s.do(t, http.MethodGet, "/api/contracts/1/snapshot?month=2024-03", nil)

	// THEN: The new rating only shows from March
	require.Equal(t, http.StatusOK, feb.Code)
	require.Equal(t, http.StatusOK, mar.Code)
	febResp := decode[SnapshotResponse](t, feb)
	marResp := decode[SnapshotResponse](t, mar)
	require.Len(t, febResp.Engineers, 1)
	require.Len(t, marResp.Engineers, 1)
	assert.True(t, febResp.Engineers[0].Rating.Equal(dec("100")))
	assert.True(t, marResp.Engineers[0].Rating.Equal(dec("90")))
	assert.Equal(t, "2024-03", marResp.Month.String())
}

func TestGetResources_DefaultsToToday(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "rating-change")

	rec := s.do(t, http.MethodGet, "/api/contracts/1/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ResourcesResponse](t, rec)
	assert.Equal(t, "2024-03-10", resp.AsOf.String())
	require.Len(t, resp.Engineers, 1)
	require.NotNil(t, resp.Engineers[0].EngineerID)
	assert.Equal(t, int64(1), *resp.Engineers[0].EngineerID)
	assert.True(t, resp.Engineers[0].Rating.Decimal.Equal(dec("90")))
}

func TestGetResources_BeforeChange(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "rating-change")

	rec := s.do(t, http.MethodGet, "/api/contracts/1/resources?as_of=2024-02-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ResourcesResponse](t, rec)
	require.Len(t, resp.Engineers, 1)
	assert.True(t, resp.Engineers[0].Rating.Decimal.Equal(dec("100")))
}

func TestGetBilling(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "rating-change")

	rec := s.do(t, http.MethodGet, "/api/contracts/1/billing?month=2024-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[BillingResponse](t, rec).Amount.Equal(dec("4500")))

	rec = s.do(t, http.MethodGet, "/api/contracts/1/billing?month=2024-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[BillingResponse](t, rec).Amount.Equal(dec("5000")))
}

func TestGetTimeline(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "rating-change")

	rec := s.do(t, http.MethodGet, "/api/contracts/1/timeline?from=2024-01&to=2024-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TimelineResponse](t, rec)
	require.Len(t, resp.Months, 3)
	want := []string{"5000", "5000", "4500"}
	for i, m := range resp.Months {
		assert.True(t, m.Billing.Equal(dec(want[i])), "month %s", m.Month)
		assert.Len(t, m.Engineers, 1)
	}
	assert.Equal(t, "2024-01", resp.Months[0].Month.String())
	assert.Equal(t, "2024-03", resp.Months[2].Month.String())
}

func TestGetBaseline(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "rating-change")

	rec := s.do(t, http.MethodGet, "/api/contracts/1/baseline", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BaselineResponse](t, rec)
	require.Len(t, resp.Engineers, 1)
	assert.Equal(t, "Senior", resp.Engineers[0].Level)
	require.Len(t, resp.Billing, 3)
	assert.Equal(t, "2024-03", resp.Billing[0].Month.String(), "newest month first")
}

func TestGetEvents_OnlyApproved(t *testing.T) {
	// GIVEN: Approved, active, draft and sent-back requests
	s := setupTestServer(t)
	s.load(t, "roster-changes")

	// WHEN: Listing the event log
	rec := s.do(t, http.MethodGet, "/api/contracts/2/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: Only the approved and active requests' events appear, oldest first
	resp := decode[EventsResponse](t, rec)
	require.Len(t, resp.ResourceEvents, 2)
	assert.Equal(t, "ADD", resp.ResourceEvents[0].Action)
	assert.Equal(t, "REMOVE", resp.ResourceEvents[1].Action)
	for _, ev := range resp.ResourceEvents {
		assert.Contains(t, []int64{20, 21}, ev.ChangeRequestID)
	}
}

func TestUnknownContract_IsEmpty(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/contracts/999/snapshot?month=2024-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[SnapshotResponse](t, rec).Engineers)

	rec = s.do(t, http.MethodGet, "/api/contracts/999/billing?month=2024-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[BillingResponse](t, rec).Amount.IsZero())
}

func TestQueries_RejectBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
		code string
	}{
		{"non-numeric contract", "/api/contracts/abc/resources", "contract_id"},
		{"zero contract", "/api/contracts/0/billing", "contract_id"},
		{"bad as_of", "/api/contracts/1/resources?as_of=2024-02-30", "as_of"},
		{"bad month", "/api/contracts/1/snapshot?month=2024-13", "month"},
		{"bad from", "/api/contracts/1/timeline?from=March&to=2024-03", "from"},
		{"reversed range", "/api/contracts/1/timeline?from=2024-05&to=2024-03", "range"},
		{"range too wide", "/api/contracts/1/timeline?from=2010-01&to=2024-03", "range"},
	}

	s := setupTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

// =============================================================================
// RECORDING
// =============================================================================

func TestRecordEvents_Approved(t *testing.T) {
	// GIVEN: An approved change request
	s := setupTestServer(t)
	s.load(t, "rating-change")

	// WHEN: Recording an ADD from April and a billing delta
	body := RecordEventsRequest{
		ResourceEvents: []ResourceEventDTO{{
			Action:         "ADD",
			Role:           "Frontend",
			Level:          "Mid",
			RatingNew:      decimal.NewNullDecimal(dec("100")),
			EffectiveStart: mustDate(t, "2024-04-01"),
		}},
		BillingEvents: []BillingEventDTO{{
			BillingMonth: mustMonth(t, "2024-04"),
			DeltaAmount:  dec("3000"),
		}},
	}
	rec := s.do(t, http.MethodPost, "/api/change-requests/1/events", body)

	// THEN: The stored events come back with ids and the roster grows
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[RecordEventsResponse](t, rec)
	require.Len(t, resp.ResourceEvents, 1)
	assert.NotZero(t, resp.ResourceEvents[0].ID)
	assert.Equal(t, int64(1), resp.ResourceEvents[0].ChangeRequestID)
	require.Len(t, resp.BillingEvents, 1)
	assert.Equal(t, "ADJUSTMENT", resp.BillingEvents[0].Type)

	snap := s.do(t, http.MethodGet, "/api/contracts/1/snapshot?month=2024-04", nil)
	require.Equal(t, http.StatusOK, snap.Code)
	assert.Len(t, decode[SnapshotResponse](t, snap).Engineers, 2)

	billing := s.do(t, http.MethodGet, "/api/contracts/1/billing?month=2024-04", nil)
	assert.True(t, decode[BillingResponse](t, billing).Amount.Equal(dec("3000")))
}

func TestRecordEvents_Errors(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "roster-changes")

	removeWithoutEngineer := RecordEventsRequest{ResourceEvents: []ResourceEventDTO{{
		Action:         "REMOVE",
		EffectiveStart: mustDate(t, "2024-04-01"),
	}}}
	valid := RecordEventsRequest{ResourceEvents: []ResourceEventDTO{{
		Action:         "ADD",
		Role:           "QA",
		EffectiveStart: mustDate(t, "2024-04-01"),
	}}}
	unknownAction := RecordEventsRequest{ResourceEvents: []ResourceEventDTO{{
		Action:         "SWAP",
		EffectiveStart: mustDate(t, "2024-04-01"),
	}}}

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown change request", "/api/change-requests/99/events", valid, http.StatusNotFound},
		{"draft change request", "/api/change-requests/22/events", valid, http.StatusConflict},
		{"remove without engineer", "/api/change-requests/20/events", removeWithoutEngineer, http.StatusBadRequest},
		{"unknown action", "/api/change-requests/20/events", unknownAction, http.StatusBadRequest},
		{"empty body", "/api/change-requests/20/events", RecordEventsRequest{}, http.StatusBadRequest},
		{"bad id", "/api/change-requests/x/events", valid, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// Nothing was appended by the failed calls
	rec := s.do(t, http.MethodGet, "/api/contracts/2/events", nil)
	assert.Len(t, decode[EventsResponse](t, rec).ResourceEvents, 2)
}

func TestRecordEvents_MalformedJSON(t *testing.T) {
	s := setupTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/change-requests/1/events", bytes.NewBufferString(`{"resource_events": [`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

/*
handlers.go - HTTP API handlers for contract roster and billing reconstruction

PURPOSE:
  Exposes the reconstruction engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the contract package.

ENDPOINTS:
  Contracts:
    GET    /api/contracts/{id}/resources?as_of=YYYY-MM-DD  Roster on a day
    GET    /api/contracts/{id}/snapshot?month=YYYY-MM      Roster for a month
    GET    /api/contracts/{id}/billing?month=YYYY-MM       Billing for a month
    GET    /api/contracts/{id}/timeline?from=&to=          Month-by-month view
    GET    /api/contracts/{id}/baseline                    Signed baseline
    GET    /api/contracts/{id}/events                      Approved event log

  Change requests:
    POST   /api/change-requests/{id}/events                Record events

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Clear all data

DEFAULTS:
  as_of defaults to today and month to the current month, both taken
  from the handler's clock.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed ids, dates, months, ranges or events
  - 404: Unknown change request or scenario
  - 409: Baseline already captured, change request not approved
  - 500: Internal errors (logged)

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/factory"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the backend the API needs: the full contract store plus Reset for
// the demo scenario loader.
type Store interface {
	contract.Store
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Engine   *contract.Engine
	Recorder *contract.Recorder

	logger *zap.Logger
	now    func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger used for 5xx responses and scenario loads.
func WithHandlerLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHandlerClock sets the clock behind the as_of and month defaults.
func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler creates a new handler over store and engine.
func NewHandler(store Store, engine *contract.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		Store:  store,
		Engine: engine,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Recorder = contract.NewRecorder(store, h.logger)
	return h
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// GetResources returns the roster in effect on as_of.
func (h *Handler) GetResources(w http.ResponseWriter, r *http.Request) {
	contractID, err := contractIDParam(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	asOf := generic.DateOf(h.now())
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		if asOf, err = generic.ParseDate(raw); err != nil {
			h.writeDomainError(w, r, queryError("as_of", raw, err))
			return
		}
	}

	states, err := h.Engine.CurrentResources(r.Context(), contractID, asOf)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResourcesResponse{
		ContractID: int64(contractID),
		AsOf:       asOf,
		Engineers:  toCurrentDTOs(states),
	})
}

// GetSnapshot returns the monthly roster with billing shape.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	contractID, month, err := h.contractAndMonth(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	snaps, err := h.Engine.MonthlySnapshot(r.Context(), contractID, month)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{
		ContractID: int64(contractID),
		Month:      month,
		Engineers:  toSnapshotDTOs(snaps),
	})
}

// GetBilling returns baseline plus approved deltas for the month.
func (h *Handler) GetBilling(w http.ResponseWriter, r *http.Request) {
	contractID, month, err := h.contractAndMonth(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	amount, err := h.Engine.CurrentBilling(r.Context(), contractID, month)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BillingResponse{
		ContractID: int64(contractID),
		Month:      month,
		Amount:     amount,
	})
}

// GetTimeline returns snapshot and billing for each month in [from, to].
// A missing bound defaults to the current month.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	contractID, err := contractIDParam(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	from, err := h.monthParam(r, "from")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	to, err := h.monthParam(r, "to")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	months, err := h.Engine.Timeline(r.Context(), contractID, from, to)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]MonthSummaryDTO, len(months))
	for i, m := range months {
		dtos[i] = MonthSummaryDTO{
			Month:     m.Month,
			Engineers: toSnapshotDTOs(m.Engineers),
			Billing:   m.Billing,
		}
	}
	writeJSON(w, http.StatusOK, TimelineResponse{
		ContractID: int64(contractID),
		From:       from,
		To:         to,
		Months:     dtos,
	})
}

// GetBaseline returns the roster and billing frozen at signing.
func (h *Handler) GetBaseline(w http.ResponseWriter, r *http.Request) {
	contractID, err := contractIDParam(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	ctx := r.Context()

	engineers, err := h.Engine.BaselineResources(ctx, contractID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	billing, err := h.Engine.BaselineBilling(ctx, contractID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := BaselineResponse{
		ContractID: int64(contractID),
		Engineers:  make([]BaselineEngineerDTO, len(engineers)),
		Billing:    make([]BaselineBillingDTO, len(billing)),
	}
	for i, e := range engineers {
		resp.Engineers[i] = BaselineEngineerDTO{
			ID:        int64(e.ID),
			Role:      e.Role,
			Level:     e.Level,
			Rating:    e.Rating,
			UnitRate:  e.UnitRate,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
		}
	}
	for i, b := range billing {
		resp.Billing[i] = BaselineBillingDTO{Month: b.BillingMonth, Amount: b.Amount}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetEvents returns the approved resource events in chronological order.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	contractID, err := contractIDParam(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	events, err := h.Engine.ApprovedResourceEvents(r.Context(), contractID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]ResourceEventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toResourceEventDTO(ev)
	}
	writeJSON(w, http.StatusOK, EventsResponse{ContractID: int64(contractID), ResourceEvents: dtos})
}

// =============================================================================
// CHANGE REQUEST HANDLERS
// =============================================================================

// RecordEvents appends the events of an approved change request.
func (h *Handler) RecordEvents(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := parseID("change_request_id", raw)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var req RecordEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.ResourceEvents) == 0 && len(req.BillingEvents) == 0 {
		writeError(w, http.StatusBadRequest, "No events to record", nil)
		return
	}

	resource := make([]contract.ResourceEvent, len(req.ResourceEvents))
	for i, d := range req.ResourceEvents {
		if resource[i], err = d.toResourceEvent(); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	billing := make([]contract.BillingEvent, len(req.BillingEvents))
	for i, d := range req.BillingEvents {
		billing[i] = d.toBillingEvent()
	}

	stored, storedBilling, err := h.Recorder.RecordEvents(r.Context(), contract.ChangeRequestID(id), resource, billing)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := RecordEventsResponse{
		ChangeRequestID: id,
		ResourceEvents:  make([]ResourceEventDTO, len(stored)),
		BillingEvents:   make([]BillingEventDTO, len(storedBilling)),
	}
	for i, ev := range stored {
		resp.ResourceEvents[i] = toResourceEventDTO(ev)
	}
	for i, ev := range storedBilling {
		resp.BillingEvents[i] = toBillingEventDTO(ev)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// PARAMETER PARSING
// =============================================================================

func contractIDParam(r *http.Request) (contract.ContractID, error) {
	id, err := parseID("contract_id", chi.URLParam(r, "id"))
	return contract.ContractID(id), err
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &generic.ValidationError{Field: field, Value: raw, Err: generic.ErrInvalidID}
	}
	return id, nil
}

func (h *Handler) contractAndMonth(r *http.Request) (contract.ContractID, generic.YearMonth, error) {
	contractID, err := contractIDParam(r)
	if err != nil {
		return 0, generic.YearMonth{}, err
	}
	month, err := h.monthParam(r, "month")
	return contractID, month, err
}

func (h *Handler) monthParam(r *http.Request, name string) (generic.YearMonth, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return generic.YearMonthOf(generic.DateOf(h.now())), nil
	}
	month, err := generic.ParseYearMonth(raw)
	if err != nil {
		return generic.YearMonth{}, queryError(name, raw, err)
	}
	return month, nil
}

// queryError renames the field of a parse error to the query parameter.
func queryError(name, raw string, err error) error {
	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		return &generic.ValidationError{Field: name, Value: raw, Err: verr.Err}
	}
	return err
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps the error categories of generic/errors.go to a status.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case generic.IsNotFound(err), errors.Is(err, factory.ErrUnknownScenario):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		resp.Code = verr.Field
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

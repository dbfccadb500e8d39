/*
scenarios.go - Demo scenario handlers

PURPOSE:

	Loads the YAML contract fixtures embedded in the factory package into
	the backing store, so the query endpoints have something to answer.

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Parse and validate the fixture
 3. Write change requests, baseline, legacy rows, line items and events

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "rating-change"}

ADDING NEW SCENARIOS:

	Drop a <id>.yaml file into factory/scenarios/. No code change needed.

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - factory/fixture.go: Fixture format and loader
*/
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/factory"
)

// ListScenarios returns the embedded demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	infos, err := factory.Scenarios()
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]ScenarioDTO, len(infos))
	for i, s := range infos {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description, ContractID: s.ContractID}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the id of the last loaded scenario.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": current})
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	fx, err := factory.Scenario(req.ScenarioID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	// Loads are serialized so a reset never interleaves with another load.
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.currentScenario = ""
	if err := factory.Load(ctx, h.Store, fx); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.currentScenario = fx.ID

	h.logger.Info("scenario loaded", zap.String("scenario", fx.ID), zap.Int64("contract_id", fx.ContractID))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "loaded",
		"scenario":    fx.ID,
		"contract_id": fx.ContractID,
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

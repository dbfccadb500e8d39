// Package memory provides an in-memory contract.Store (for tests and demos).
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	baseline       map[contract.ContractID][]contract.BaselineEngineer
	baselineBill   map[contract.ContractID][]contract.BaselineBilling
	changeRequests map[contract.ChangeRequestID]contract.ChangeRequest
	legacy         map[contract.ContractID][]contract.LegacyEngineer
	lineItems      map[contract.ChangeRequestID][]contract.EngineerLineItem
	resource       []contract.ResourceEvent // sorted chronologically
	billing        []contract.BillingEvent

	nextEventID    contract.EventID
	nextEngineerID contract.EngineerID
	nextLineItemID contract.LineItemID
}

var _ contract.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		now:            time.Now,
		baseline:       make(map[contract.ContractID][]contract.BaselineEngineer),
		baselineBill:   make(map[contract.ContractID][]contract.BaselineBilling),
		changeRequests: make(map[contract.ChangeRequestID]contract.ChangeRequest),
		legacy:         make(map[contract.ContractID][]contract.LegacyEngineer),
		lineItems:      make(map[contract.ChangeRequestID][]contract.EngineerLineItem),
	}
}

// WithClock replaces the clock used to stamp CreatedAt.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) CaptureBaseline(_ context.Context, contractID contract.ContractID, engineers []contract.BaselineEngineer, billing []contract.BaselineBilling) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.baseline[contractID]) > 0 || len(m.baselineBill[contractID]) > 0 {
		return generic.ErrBaselineExists
	}

	rows := make([]contract.BaselineEngineer, len(engineers))
	for i, eng := range engineers {
		eng.ContractID = contractID
		if eng.ID == 0 {
			m.nextEngineerID++
			eng.ID = m.nextEngineerID
		} else if eng.ID > m.nextEngineerID {
			m.nextEngineerID = eng.ID
		}
		rows[i] = eng
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].StartDate.Before(rows[j].StartDate) })

	bill := make([]contract.BaselineBilling, len(billing))
	for i, b := range billing {
		b.ContractID = contractID
		bill[i] = b
	}
	sort.SliceStable(bill, func(i, j int) bool { return bill[j].BillingMonth.Before(bill[i].BillingMonth) })

	m.baseline[contractID] = rows
	m.baselineBill[contractID] = bill
	return nil
}

func (m *Memory) SaveChangeRequest(_ context.Context, cr contract.ChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cr.CreatedAt.IsZero() {
		cr.CreatedAt = m.now().UTC()
	}
	m.changeRequests[cr.ID] = cr
	return nil
}

func (m *Memory) SaveLegacyEngineers(_ context.Context, engineers []contract.LegacyEngineer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, eng := range engineers {
		if eng.ID == 0 {
			m.nextEngineerID++
			eng.ID = m.nextEngineerID
		} else if eng.ID > m.nextEngineerID {
			m.nextEngineerID = eng.ID
		}
		rows := append(m.legacy[eng.ContractID], eng)
		sort.SliceStable(rows, func(i, j int) bool { return startBefore(rows[i].StartDate, rows[j].StartDate) })
		m.legacy[eng.ContractID] = rows
	}
	return nil
}

func (m *Memory) SaveLineItems(_ context.Context, items []contract.EngineerLineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		if item.ID == 0 {
			m.nextLineItemID++
			item.ID = m.nextLineItemID
		} else if item.ID > m.nextLineItemID {
			m.nextLineItemID = item.ID
		}
		m.lineItems[item.ChangeRequestID] = append(m.lineItems[item.ChangeRequestID], item)
	}
	return nil
}

// AppendEvents adds all events or none. Ids are assigned when zero.
func (m *Memory) AppendEvents(_ context.Context, resource []contract.ResourceEvent, billing []contract.BillingEvent) ([]contract.ResourceEvent, []contract.BillingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Reject the whole batch on any id clash.
	taken := make(map[contract.EventID]bool, len(m.resource)+len(resource))
	for _, ev := range m.resource {
		taken[ev.ID] = true
	}
	for _, ev := range resource {
		if ev.ID != 0 && taken[ev.ID] {
			return nil, nil, eris.Wrapf(generic.ErrInvalidEvent, "memory: resource event %d already exists", ev.ID)
		}
		taken[ev.ID] = ev.ID != 0
	}

	now := m.now().UTC()
	storedResource := make([]contract.ResourceEvent, len(resource))
	for i, ev := range resource {
		if ev.ID == 0 {
			m.nextEventID++
			ev.ID = m.nextEventID
		} else if ev.ID > m.nextEventID {
			m.nextEventID = ev.ID
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		m.insertLocked(ev)
		storedResource[i] = ev
	}

	storedBilling := make([]contract.BillingEvent, len(billing))
	for i, ev := range billing {
		if ev.ID == 0 {
			m.nextEventID++
			ev.ID = m.nextEventID
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		m.billing = append(m.billing, ev)
		storedBilling[i] = ev
	}
	return storedResource, storedBilling, nil
}

func (m *Memory) insertLocked(ev contract.ResourceEvent) {
	// Keep m.resource in chronological order.
	i := sort.Search(len(m.resource), func(i int) bool {
		return contract.ChronologicallyAfter(m.resource[i], ev)
	})
	m.resource = slices.Insert(m.resource, i, ev)
}

// =============================================================================
// READS
// =============================================================================

func (m *Memory) BaselineEngineers(_ context.Context, contractID contract.ContractID) ([]contract.BaselineEngineer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.baseline[contractID]), nil
}

func (m *Memory) BaselineBilling(_ context.Context, contractID contract.ContractID) ([]contract.BaselineBilling, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.baselineBill[contractID]), nil
}

func (m *Memory) ResourceEvents(_ context.Context, contractID contract.ContractID) ([]contract.ResourceEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []contract.ResourceEvent
	for _, ev := range m.resource {
		if m.changeRequests[ev.ChangeRequestID].ContractID == contractID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) BillingEvents(_ context.Context, contractID contract.ContractID) ([]contract.BillingEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []contract.BillingEvent
	for _, ev := range m.billing {
		if m.changeRequests[ev.ChangeRequestID].ContractID == contractID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) ChangeRequests(_ context.Context, contractID contract.ContractID) ([]contract.ChangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []contract.ChangeRequest
	for _, cr := range m.changeRequests {
		if cr.ContractID == contractID {
			out = append(out, cr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ChangeRequest(_ context.Context, id contract.ChangeRequestID) (contract.ChangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cr, ok := m.changeRequests[id]
	if !ok {
		return contract.ChangeRequest{}, eris.Wrapf(generic.ErrChangeRequestNotFound, "memory: change request %d", id)
	}
	return cr, nil
}

func (m *Memory) LegacyEngineers(_ context.Context, contractID contract.ContractID) ([]contract.LegacyEngineer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.legacy[contractID]), nil
}

func (m *Memory) LineItems(_ context.Context, changeRequestID contract.ChangeRequestID) ([]contract.EngineerLineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := slices.Clone(m.lineItems[changeRequestID])
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Reset drops everything. Used by the demo scenario loader.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := NewMemory()
	m.baseline = fresh.baseline
	m.baselineBill = fresh.baselineBill
	m.changeRequests = fresh.changeRequests
	m.legacy = fresh.legacy
	m.lineItems = fresh.lineItems
	m.resource = nil
	m.billing = nil
	m.nextEventID, m.nextEngineerID, m.nextLineItemID = 0, 0, 0
	return nil
}

func startBefore(a, b *generic.TimePoint) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/canteen-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	employees    []billing.Employee
	items        []billing.Item
	consumptions []billing.Consumption
	adjustments  billing.DailyAdjustments
	digests      []billing.WeeklyDigest
}

func NewMemory() *Memory {
	return &Memory{adjustments: billing.DailyAdjustments{}}
}

func (m *Memory) ListEmployees(_ context.Context) ([]billing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e billing.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.employees {
		if m.employees[i].ID == e.ID {
			m.employees[i] = e
			return nil
		}
	}
	m.employees = append(m.employees, e)
	return nil
}

func (m *Memory) ListItems(_ context.Context) ([]billing.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *Memory) SaveItem(_ context.Context, it billing.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == it.ID {
			m.items[i] = it
			return nil
		}
	}
	m.items = append(m.items, it)
	return nil
}

func (m *Memory) ListConsumptions(_ context.Context) ([]billing.Consumption, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Consumption, len(m.consumptions))
	copy(out, m.consumptions)
	return out, nil
}

func (m *Memory) AppendConsumption(_ context.Context, c billing.Consumption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumptions = append(m.consumptions, c)
	return nil
}

func (m *Memory) RemoveConsumption(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.consumptions[:0]
	for _, c := range m.consumptions {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.consumptions = kept
	return nil
}

// RemoveSession deletes all records with the exact timestamp+employee pair.
// The single lock makes the multi-record delete atomic.
func (m *Memory) RemoveSession(_ context.Context, employeeID billing.EmployeeID, timestamp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.consumptions[:0]
	removed := 0
	for _, c := range m.consumptions {
		if c.EmployeeID == employeeID && c.Timestamp == timestamp {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.consumptions = kept

	if removed == 0 {
		return billing.ErrSessionNotFound
	}
	return nil
}

func (m *Memory) GetDailyAdjustments(_ context.Context) (billing.DailyAdjustments, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.adjustments.Clone(), nil
}

func (m *Memory) SetDailyAdjustments(_ context.Context, adj billing.DailyAdjustments) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments = adj.Clone()
	return nil
}

// =============================================================================
// WEEKLY DIGESTS
// =============================================================================

func (m *Memory) SaveWeeklyDigest(_ context.Context, d billing.WeeklyDigest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.digests {
		if m.digests[i].WeekStart == d.WeekStart && m.digests[i].WeekEnd == d.WeekEnd {
			m.digests[i] = d
			return nil
		}
	}
	m.digests = append(m.digests, d)
	return nil
}

func (m *Memory) ListWeeklyDigests(_ context.Context) ([]billing.WeeklyDigest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.WeeklyDigest, len(m.digests))
	copy(out, m.digests)
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	return out, nil
}

// Compile-time interface checks.
var (
	_ billing.RecordStore = (*Memory)(nil)
	_ billing.DigestStore = (*Memory)(nil)
)

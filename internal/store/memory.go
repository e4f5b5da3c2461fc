// Package store holds submitted reports in memory for the prediction service.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

// Memory is a concurrency-safe in-memory report store. Reloading an existing
// ID is a no-op.
type Memory struct {
	mu      sync.RWMutex
	reports []domain.HistoricalReport
	ids     map[string]struct{}
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// LoadBatch appends reports whose IDs are not already stored.
func (m *Memory) LoadBatch(_ context.Context, reports []domain.HistoricalReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range reports {
		if _, ok := m.ids[r.ID]; ok {
			continue
		}
		m.ids[r.ID] = struct{}{}
		m.reports = append(m.reports, r)
	}
	return nil
}

// ReportsNear returns the stored reports within radiusKm of c, oldest first.
// Reports with equal timestamps keep their load order.
func (m *Memory) ReportsNear(_ context.Context, c domain.Coordinate, radiusKm float64) ([]domain.HistoricalReport, error) {
	box := domain.BoundsAround(c, radiusKm)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.HistoricalReport
	for _, r := range m.reports {
		if !box.Contains(r.Location) {
			continue
		}
		if domain.DistanceKm(c, r.Location) <= radiusKm {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.HistoricalReport) int {
		return a.ReportedAt.Compare(b.ReportedAt)
	})
	return out, nil
}

// Prune removes reports dated before cutoff and returns how many were removed.
func (m *Memory) Prune(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.reports[:0]
	removed := 0
	for _, r := range m.reports {
		if r.ReportedAt.Before(cutoff) {
			delete(m.ids, r.ID)
			removed++
			continue
		}
		kept = append(kept, r)
	}
	clear(m.reports[len(kept):])
	m.reports = kept
	return removed, nil
}

// Len returns the number of stored reports.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

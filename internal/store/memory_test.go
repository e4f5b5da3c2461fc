package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

var (
	base   = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mumbai = domain.Coordinate{Lat: 19.076, Lon: 72.8777}
)

func report(id string, c domain.Coordinate, at time.Time) domain.HistoricalReport {
	return domain.HistoricalReport{ID: id, Location: c, QualityScore: 70, ReportedAt: at, Type: domain.ReportCommunity}
}

func TestMemory_LoadBatchDeduplicates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.LoadBatch(ctx, []domain.HistoricalReport{report("a", mumbai, base), report("b", mumbai, base)}))
	require.NoError(t, m.LoadBatch(ctx, []domain.HistoricalReport{report("a", mumbai, base), report("c", mumbai, base)}))

	assert.Equal(t, 3, m.Len())
}

func TestMemory_ReportsNear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	near := domain.Coordinate{Lat: 19.08, Lon: 72.88}  // < 1 km
	edge := domain.Coordinate{Lat: 19.16, Lon: 72.8777} // ~9.3 km
	far := domain.Coordinate{Lat: 18.5204, Lon: 73.8567}

	require.NoError(t, m.LoadBatch(ctx, []domain.HistoricalReport{
		report("far", far, base),
		report("near", near, base),
		report("edge", edge, base),
		report("here", mumbai, base),
	}))

	got, err := m.ReportsNear(ctx, mumbai, 10)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"near", "edge", "here"}, ids)

	got, err = m.ReportsNear(ctx, mumbai, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemory_ReportsNearOldestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.LoadBatch(ctx, []domain.HistoricalReport{
		report("newest", mumbai, base.Add(48*time.Hour)),
		report("oldest", mumbai, base),
		report("middle-a", mumbai, base.Add(24*time.Hour)),
		report("middle-b", mumbai, base.Add(24*time.Hour)),
	}))

	got, err := m.ReportsNear(ctx, mumbai, 1)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"oldest", "middle-a", "middle-b", "newest"}, ids)
}

func TestMemory_Prune(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.LoadBatch(ctx, []domain.HistoricalReport{
		report("old", mumbai, base.Add(-200*24*time.Hour)),
		report("new", mumbai, base),
		report("older", mumbai, base.Add(-400*24*time.Hour)),
	}))

	removed, err := m.Prune(ctx, base.Add(-180*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, m.Len())

	// A pruned ID can be loaded again.
	require.NoError(t, m.LoadBatch(ctx, []domain.HistoricalReport{report("old", mumbai, base)}))
	assert.Equal(t, 2, m.Len())
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 100 {
				_ = m.LoadBatch(ctx, []domain.HistoricalReport{report(fmt.Sprintf("%d-%d", g, i), mumbai, base)})
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				_, _ = m.ReportsNear(ctx, mumbai, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, m.Len())
}

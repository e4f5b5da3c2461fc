//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

// Requires TEST_DATABASE_URL pointing at a disposable database.
func TestRepository_RoundTrip_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	require.NoError(t, repo.Migrate(ctx))
	_, err = pool.Exec(ctx, "TRUNCATE water_reports")
	require.NoError(t, err)

	mumbai := domain.Coordinate{Lat: 19.076, Lon: 72.8777}
	now := time.Now().UTC().Truncate(time.Second)
	reports := []domain.HistoricalReport{
		{ID: "near-old", Location: mumbai, QualityScore: 60, ReportedAt: now.Add(-48 * time.Hour), Type: domain.ReportCommunity},
		{ID: "near-new", Location: domain.Coordinate{Lat: 19.08, Lon: 72.88}, QualityScore: 80, ReportedAt: now, Type: domain.ReportSensor},
		{ID: "far", Location: domain.Coordinate{Lat: 18.52, Lon: 73.85}, QualityScore: 90, ReportedAt: now, Type: domain.ReportOfficial},
	}
	require.NoError(t, repo.LoadBatch(ctx, reports))
	require.NoError(t, repo.LoadBatch(ctx, reports[:1]))

	got, err := repo.ReportsNear(ctx, mumbai, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near-old", got[0].ID)
	assert.Equal(t, domain.ReportSensor, got[1].Type)

	n, err := repo.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

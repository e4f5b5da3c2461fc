// Package postgres stores water quality reports in PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

const table = "water_reports"

var columns = []string{"id", "lat", "lon", "quality_score", "report_type", "reported_at"}

//go:embed schema.sql
var schema string

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is the subset of *pgxpool.Pool used by the repository.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads and writes reports in the water_reports table.
type Repository struct {
	db   querier
	pool *pgxpool.Pool
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// NewRepository creates a Repository backed by pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// Migrate creates the reports table and indexes when they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// ReportsNear returns reports within radiusKm of c, oldest first.
func (r *Repository) ReportsNear(ctx context.Context, c domain.Coordinate, radiusKm float64) ([]domain.HistoricalReport, error) {
	query, args, err := nearQuery(domain.BoundsAround(c, radiusKm))
	if err != nil {
		return nil, fmt.Errorf("postgres: build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query reports: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoricalReport
	for rows.Next() {
		var (
			rep     domain.HistoricalReport
			typeStr string
		)
		if err := rows.Scan(&rep.ID, &rep.Location.Lat, &rep.Location.Lon, &rep.QualityScore, &typeStr, &rep.ReportedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan report row: %w", err)
		}
		if rep.Type, err = domain.ParseReportType(typeStr); err != nil {
			return nil, fmt.Errorf("postgres: report %s: %w", rep.ID, err)
		}
		rep.ReportedAt = rep.ReportedAt.UTC()
		if domain.DistanceKm(c, rep.Location) <= radiusKm {
			out = append(out, rep)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate reports: %w", err)
	}
	return out, nil
}

// LoadBatch inserts reports, ignoring IDs that already exist.
func (r *Repository) LoadBatch(ctx context.Context, reports []domain.HistoricalReport) error {
	if len(reports) == 0 {
		return nil
	}
	query, args, err := insertQuery(reports)
	if err != nil {
		return fmt.Errorf("postgres: build insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: insert reports: %w", err)
	}
	return nil
}

// Prune deletes reports dated before cutoff.
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := psql.Delete(table).Where(sq.Lt{"reported_at": cutoff}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("postgres: build delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: prune reports: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CheckReadiness pings the database.
func (r *Repository) CheckReadiness(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

func nearQuery(b domain.Bounds) (string, []any, error) {
	return psql.Select(columns...).
		From(table).
		Where(sq.And{
			sq.GtOrEq{"lat": b.MinLat},
			sq.LtOrEq{"lat": b.MaxLat},
			sq.GtOrEq{"lon": b.MinLon},
			sq.LtOrEq{"lon": b.MaxLon},
		}).
		OrderBy("reported_at ASC", "id ASC").
		ToSql()
}

func insertQuery(reports []domain.HistoricalReport) (string, []any, error) {
	ins := psql.Insert(table).Columns(columns...)
	for _, rep := range reports {
		ins = ins.Values(rep.ID, rep.Location.Lat, rep.Location.Lon, rep.QualityScore, rep.Type.String(), rep.ReportedAt.UTC())
	}
	return ins.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
}

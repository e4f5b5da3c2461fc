package scoring

import (
	"time"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

const (
	// PriorScore is the base score assumed when no nearby evidence exists.
	PriorScore = 75.0

	// ContributionRadiusKm bounds which reports feed the base score.
	ContributionRadiusKm = 5.0
)

// BaseScore is the time- and distance-weighted mean of the scores of reports
// within ContributionRadiusKm of loc, with ages measured from ref. It returns
// PriorScore when no report contributes.
func BaseScore(loc domain.Coordinate, reports []domain.HistoricalReport, ref time.Time) float64 {
	var weightedSum, totalWeight float64
	for _, r := range reports {
		km := domain.DistanceKm(loc, r.Location)
		if !(km <= ContributionRadiusKm) { // also rejects NaN
			continue
		}
		w := TimeWeight(ageDays(ref, r.ReportedAt)) * DistanceWeight(km)
		weightedSum += r.QualityScore * w
		totalWeight += w
	}

	if totalWeight == 0 {
		return PriorScore
	}
	return weightedSum / totalWeight
}

// ageDays returns the fractional number of days between reported and ref, so
// a report 7.5 days old already falls in the 30-day tier.
// Reports dated after ref are treated as brand new.
func ageDays(ref, reported time.Time) float64 {
	d := ref.Sub(reported)
	if d < 0 {
		return 0
	}
	return d.Hours() / 24
}

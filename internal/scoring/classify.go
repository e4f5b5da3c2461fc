package scoring

import "github.com/couchcryptid/water-risk-service/internal/domain"

// ClassifyQuality maps a score onto the quality scale. Lower bounds are inclusive.
func ClassifyQuality(score float64) domain.QualityLevel {
	switch {
	case score >= 80:
		return domain.QualitySafe
	case score >= 60:
		return domain.QualityModerate
	case score >= 40:
		return domain.QualityPoor
	default:
		return domain.QualityCritical
	}
}

// ClassifyRisk maps a score onto the risk scale.
func ClassifyRisk(score float64) domain.RiskLevel {
	switch {
	case score >= 80:
		return domain.RiskLow
	case score >= 60:
		return domain.RiskMedium
	case score >= 40:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

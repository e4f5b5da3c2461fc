package scoring

import "github.com/couchcryptid/water-risk-service/internal/domain"

var recommendationsByQuality = map[domain.QualityLevel][]string{
	domain.QualitySafe: {
		"Water is generally safe for consumption",
		"Continue regular monitoring",
		"Store drinking water in clean, covered containers",
	},
	domain.QualityModerate: {
		"Boil water before drinking",
		"Use a certified household filter",
		"Avoid drinking directly from open sources",
		"Monitor for changes in color or odor",
	},
	domain.QualityPoor: {
		"Do not drink untreated water",
		"Boil water for at least one minute before use",
		"Use bottled water for drinking and cooking",
		"Avoid skin contact for children and the elderly",
		"Report issues to local water authorities",
	},
	domain.QualityCritical: {
		"Do not use this water for drinking or cooking",
		"Use only bottled or officially supplied water",
		"Avoid all contact with the water source",
		"Seek medical attention if symptoms appear",
		"Contact local health authorities immediately",
	},
}

// Recommendations returns the advisory list for a quality level.
// The list depends on quality alone; risk and contaminants do not change it.
func Recommendations(quality domain.QualityLevel, _ domain.RiskLevel, _ []domain.ContaminantFinding) []string {
	return cloneStrings(recommendationsByQuality[quality])
}

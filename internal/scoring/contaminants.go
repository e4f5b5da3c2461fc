package scoring

import "github.com/couchcryptid/water-risk-service/internal/domain"

var (
	bacterialSources = []string{"Sewage overflow", "Stormwater runoff", "Animal waste"}
	metalSources     = []string{"Industrial discharge", "Aging pipe infrastructure", "Mining runoff"}
	turbiditySources = []string{"Soil erosion", "Heavy rainfall", "Construction runoff"}
)

// InferContaminants applies the contaminant rules in a fixed order:
// bacterial, heavy metals, then turbidity. Any subset may fire.
func InferContaminants(score float64, weather *domain.WeatherSnapshot) []domain.ContaminantFinding {
	rain := weather.RainfallOrZero()
	findings := []domain.ContaminantFinding{}

	if score < 70 || rain > 20 {
		f := domain.ContaminantFinding{
			Name:        "Bacterial Contamination",
			Category:    domain.CategoryBiological,
			Probability: 0.4,
			Severity:    domain.SeverityMedium,
			Sources:     cloneStrings(bacterialSources),
		}
		if score < 50 {
			f.Probability = 0.8
			f.Severity = domain.SeverityHigh
		}
		findings = append(findings, f)
	}

	if score < 60 {
		findings = append(findings, domain.ContaminantFinding{
			Name:        "Heavy Metals",
			Category:    domain.CategoryChemical,
			Probability: 0.3,
			Severity:    domain.SeverityMedium,
			Sources:     cloneStrings(metalSources),
		})
	}

	if rain > 30 {
		findings = append(findings, domain.ContaminantFinding{
			Name:        "High Turbidity",
			Category:    domain.CategoryPhysical,
			Probability: 0.7,
			Severity:    domain.SeverityLow,
			Sources:     cloneStrings(turbiditySources),
		})
	}

	return findings
}

func cloneStrings(s []string) []string {
	return append([]string(nil), s...)
}

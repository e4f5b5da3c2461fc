package scoring

// TimeWeight down-weights a report by its age in days. Tiers are inclusive
// at their upper bound and deliberately discontinuous.
func TimeWeight(ageDays float64) float64 {
	switch {
	case ageDays <= 7:
		return 1.0
	case ageDays <= 30:
		return 0.7
	case ageDays <= 90:
		return 0.4
	default:
		return 0.2
	}
}

// DistanceWeight down-weights a report by its distance in kilometers from the
// target coordinate. Tiers are inclusive at their upper bound.
func DistanceWeight(km float64) float64 {
	switch {
	case km <= 1:
		return 1.0
	case km <= 3:
		return 0.7
	case km <= 5:
		return 0.4
	default:
		return 0.1
	}
}

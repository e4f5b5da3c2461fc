package domain

import "fmt"

// QualityLevel is the ordinal water quality classification of a score.
type QualityLevel uint8

const (
	QualitySafe QualityLevel = iota + 1
	QualityModerate
	QualityPoor
	QualityCritical
)

func (q QualityLevel) String() string {
	switch q {
	case QualitySafe:
		return "safe"
	case QualityModerate:
		return "moderate"
	case QualityPoor:
		return "poor"
	case QualityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func (q QualityLevel) MarshalText() ([]byte, error) {
	if q < QualitySafe || q > QualityCritical {
		return nil, fmt.Errorf("invalid quality level %d", uint8(q))
	}
	return []byte(q.String()), nil
}

func (q *QualityLevel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "safe":
		*q = QualitySafe
	case "moderate":
		*q = QualityModerate
	case "poor":
		*q = QualityPoor
	case "critical":
		*q = QualityCritical
	default:
		return fmt.Errorf("unknown quality level %q", b)
	}
	return nil
}

// RiskLevel is the ordinal risk classification of a score. It uses the same
// cut points as QualityLevel with its own labels.
type RiskLevel uint8

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func (r RiskLevel) MarshalText() ([]byte, error) {
	if r < RiskLow || r > RiskCritical {
		return nil, fmt.Errorf("invalid risk level %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *RiskLevel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*r = RiskLow
	case "medium":
		*r = RiskMedium
	case "high":
		*r = RiskHigh
	case "critical":
		*r = RiskCritical
	default:
		return fmt.Errorf("unknown risk level %q", b)
	}
	return nil
}

// Direction is the short-horizon movement of the quality score.
type Direction uint8

const (
	DirectionStable Direction = iota + 1
	DirectionImproving
	DirectionDeclining
)

func (d Direction) String() string {
	switch d {
	case DirectionStable:
		return "stable"
	case DirectionImproving:
		return "improving"
	case DirectionDeclining:
		return "declining"
	default:
		return "unknown"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if d < DirectionStable || d > DirectionDeclining {
		return nil, fmt.Errorf("invalid trend direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "stable":
		*d = DirectionStable
	case "improving":
		*d = DirectionImproving
	case "declining":
		*d = DirectionDeclining
	default:
		return fmt.Errorf("unknown trend direction %q", b)
	}
	return nil
}

// Category groups contaminants by their nature.
type Category uint8

const (
	CategoryBiological Category = iota + 1
	CategoryChemical
	CategoryPhysical
)

func (c Category) String() string {
	switch c {
	case CategoryBiological:
		return "Biological"
	case CategoryChemical:
		return "Chemical"
	case CategoryPhysical:
		return "Physical"
	default:
		return "Unknown"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if c < CategoryBiological || c > CategoryPhysical {
		return nil, fmt.Errorf("invalid contaminant category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Biological":
		*c = CategoryBiological
	case "Chemical":
		*c = CategoryChemical
	case "Physical":
		*c = CategoryPhysical
	default:
		return fmt.Errorf("unknown contaminant category %q", b)
	}
	return nil
}

// Severity is the impact level of a contaminant finding.
type Severity uint8

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityLow || s > SeverityHigh {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// ReportType identifies who or what produced a historical report.
type ReportType uint8

const (
	ReportCommunity ReportType = iota + 1
	ReportSensor
	ReportOfficial
)

func (t ReportType) String() string {
	switch t {
	case ReportCommunity:
		return "community"
	case ReportSensor:
		return "sensor"
	case ReportOfficial:
		return "official"
	default:
		return "unknown"
	}
}

func (t ReportType) MarshalText() ([]byte, error) {
	if t < ReportCommunity || t > ReportOfficial {
		return nil, fmt.Errorf("invalid report type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *ReportType) UnmarshalText(b []byte) error {
	parsed, err := ParseReportType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseReportType converts a label into a ReportType.
func ParseReportType(s string) (ReportType, error) {
	switch s {
	case "community":
		return ReportCommunity, nil
	case "sensor":
		return ReportSensor, nil
	case "official":
		return ReportOfficial, nil
	default:
		return 0, fmt.Errorf("unknown report type %q", s)
	}
}

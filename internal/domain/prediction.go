package domain

import "time"

// ContaminantFinding is a probable contaminant inferred from the score and weather.
type ContaminantFinding struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Probability float64  `json:"probability"`
	Severity    Severity `json:"severity"`
	Sources     []string `json:"sources"`
}

// Trend is a short-horizon forecast of the quality score.
type Trend struct {
	Direction     Direction `json:"direction"`
	ChangeRate    float64   `json:"change_rate"`
	Forecast7Day  float64   `json:"forecast_7_day"`
	Forecast30Day float64   `json:"forecast_30_day"`
}

// ScoreFactors is the additive decomposition of a score before clamping.
type ScoreFactors struct {
	Base      float64 `json:"base"`
	Weather   float64 `json:"weather"`
	Seasonal  float64 `json:"seasonal"`
	Proximity float64 `json:"proximity"`
}

// PredictionResult is the immutable output of a single prediction.
type PredictionResult struct {
	ID              string               `json:"id"`
	Score           float64              `json:"score"`
	Quality         QualityLevel         `json:"quality_level"`
	Risk            RiskLevel            `json:"risk_level"`
	Confidence      float64              `json:"confidence"`
	Contaminants    []ContaminantFinding `json:"contaminants"`
	Recommendations []string             `json:"recommendations"`
	Trend           Trend                `json:"trend"`
	Factors         ScoreFactors         `json:"factors"`
	ReportCount     int                  `json:"report_count"`
	PredictedAt     time.Time            `json:"predicted_at"`
	Location        Coordinate           `json:"location"`
}

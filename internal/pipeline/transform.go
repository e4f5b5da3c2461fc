package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

// ReportTransformer implements Transformer by parsing and validating report
// submissions.
type ReportTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{logger: logger}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.HistoricalReport, error) {
	report, err := domain.ParseRawReport(raw)
	if err != nil {
		return domain.HistoricalReport{}, err
	}
	t.logger.Debug("report parsed", "id", report.ID, "type", report.Type.String(), "score", report.QualityScore)
	return report, nil
}

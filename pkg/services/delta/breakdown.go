package delta

import "github.com/de-tools/revops-pilot/pkg/models/domain"

// StageBreakdown counts deals and sums amounts per canonical stage over all records.
// Stages without deals are omitted; the rest follow canonical stage order.
func StageBreakdown(records []domain.UnifiedRecord) []domain.StageTotal {
	totals := make(map[domain.CanonicalStage]*domain.StageTotal)
	for _, record := range records {
		total, ok := totals[record.Stage]
		if !ok {
			total = &domain.StageTotal{Stage: record.Stage}
			totals[record.Stage] = total
		}
		total.Deals++
		total.TotalAmount += record.Amount
	}

	result := make([]domain.StageTotal, 0, len(totals))
	for _, stage := range domain.Stages {
		if total, ok := totals[stage]; ok {
			result = append(result, *total)
		}
	}
	return result
}

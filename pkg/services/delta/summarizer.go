package delta

import (
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
)

const (
	NotePrevPlaceholder = "weighted_pipeline_prev is a placeholder (0): no historical pipeline snapshot is available"
	NoteNoActivity      = "no deals were modified in the selected period"
	NoteCoarsePipeline  = "weighted_pipeline_now is the plain sum of amounts across all stages, not a probability-weighted value"
)

// Settings contains the thresholds used to classify deals
type Settings struct {
	// StaleDays is the number of days an open deal may sit unchanged before it is at risk (default: 30)
	StaleDays int
	// TopRiskCount caps the number of at-risk deals reported (default: 5)
	TopRiskCount int
}

// DefaultSettings returns the default classification thresholds
func DefaultSettings() Settings {
	return Settings{
		StaleDays:    30,
		TopRiskCount: 5,
	}
}

// Summarizer computes the delta summary of a unified record set over a reporting period
type Summarizer struct {
	settings Settings
}

func NewSummarizer(settings Settings) *Summarizer {
	defaults := DefaultSettings()
	if settings.StaleDays < 0 {
		settings.StaleDays = defaults.StaleDays
	}
	if settings.TopRiskCount <= 0 {
		settings.TopRiskCount = defaults.TopRiskCount
	}
	return &Summarizer{settings: settings}
}

// Summarize uses the default settings
func Summarize(records []domain.UnifiedRecord, periodStart, periodEnd time.Time, clientName string) (domain.DeltaSummary, error) {
	return NewSummarizer(DefaultSettings()).Summarize(records, domain.NewPeriod(periodStart, periodEnd), clientName)
}

// Summarize filters records to the period first and classifies only what remains.
func (s *Summarizer) Summarize(records []domain.UnifiedRecord, period domain.Period, clientName string) (domain.DeltaSummary, error) {
	period = domain.NewPeriod(period.Start, period.End)
	if err := period.Validate(); err != nil {
		return domain.DeltaSummary{}, err
	}

	summary := domain.DeltaSummary{
		ClientName: clientName,
		Period:     period,
		NewWon:     []domain.StagedDeal{},
		Lost:       []domain.StagedDeal{},
		TopRisks:   []domain.StagedDeal{},
		PipelineChange: domain.PipelineChange{
			WeightedPipelinePrev: 0,
			PrevIsPlaceholder:    true,
		},
		Notes: []string{NotePrevPlaceholder},
	}

	filtered := filterPeriod(records, period)
	if len(filtered) == 0 {
		summary.PipelineChange.WeightedPipelineNow = 0
		summary.Notes = append(summary.Notes, NoteNoActivity)
		return summary, nil
	}

	var (
		risks []domain.StagedDeal
		total float64
	)
	for _, record := range filtered {
		deal := domain.StagedDeal{
			UnifiedRecord: record,
			DaysInStage:   DaysInStage(record, period.End),
		}
		total += record.Amount

		switch {
		case record.Stage == domain.StageClosedWon:
			summary.NewWon = append(summary.NewWon, deal)
		case record.Stage == domain.StageClosedLost:
			summary.Lost = append(summary.Lost, deal)
		case s.isAtRisk(deal):
			risks = append(risks, deal)
		}
	}

	summary.TopRisks = topRisks(risks, s.settings.TopRiskCount)
	summary.PipelineChange.WeightedPipelineNow = int64(total)
	summary.Notes = append(summary.Notes, NoteCoarsePipeline)

	return summary, nil
}

func (s *Summarizer) isAtRisk(deal domain.StagedDeal) bool {
	switch deal.Stage {
	case domain.StageProposal, domain.StageEvaluation:
		return deal.DaysInStage > s.settings.StaleDays
	default:
		return false
	}
}

func filterPeriod(records []domain.UnifiedRecord, period domain.Period) []domain.UnifiedRecord {
	var filtered []domain.UnifiedRecord
	for _, record := range records {
		if period.Contains(record.LastModified) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// DaysInStage returns whole days between the record's last change and periodEnd.
// Missing timestamps and timestamps after periodEnd yield zero.
func DaysInStage(record domain.UnifiedRecord, periodEnd time.Time) int {
	if !record.HasLastModified() {
		return 0
	}
	days := int(domain.CalendarDate(periodEnd).Sub(domain.CalendarDate(record.LastModified)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// topRisks orders by staleness, then amount, then identifier so identical input
// always yields the same selection.
func topRisks(candidates []domain.StagedDeal, limit int) []domain.StagedDeal {
	sorted := append([]domain.StagedDeal(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DaysInStage != b.DaysInStage {
			return a.DaysInStage > b.DaysInStage
		}
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.SourceSystem < b.SourceSystem
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		return []domain.StagedDeal{}
	}
	return sorted
}

// Describe renders a one-line digest of a summary for logs
func Describe(summary domain.DeltaSummary) string {
	return fmt.Sprintf("%s %s: won=%d lost=%d risks=%d pipeline_now=%d",
		summary.ClientName, summary.Period, len(summary.NewWon), len(summary.Lost),
		len(summary.TopRisks), summary.PipelineChange.WeightedPipelineNow)
}

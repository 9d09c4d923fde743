package adapters

import (
	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
)

func MapDeltaSummaryDomainToApi(summary domain.DeltaSummary) api.DeltaSummary {
	notes := append([]string{}, summary.Notes...)
	return api.DeltaSummary{
		ClientName:  summary.ClientName,
		PeriodStart: domain.FormatDate(summary.Period.Start),
		PeriodEnd:   domain.FormatDate(summary.Period.End),
		NewWon:      MapStagedDealsDomainToApi(summary.NewWon),
		Lost:        MapStagedDealsDomainToApi(summary.Lost),
		TopRisks:    MapStagedDealsDomainToApi(summary.TopRisks),
		PipelineChange: api.PipelineChange{
			WeightedPipelinePrev: summary.PipelineChange.WeightedPipelinePrev,
			WeightedPipelineNow:  summary.PipelineChange.WeightedPipelineNow,
			PrevIsPlaceholder:    summary.PipelineChange.PrevIsPlaceholder,
		},
		Notes: notes,
	}
}

func MapStagedDealsDomainToApi(deals []domain.StagedDeal) []api.Deal {
	result := make([]api.Deal, 0, len(deals))
	for _, d := range deals {
		result = append(result, MapStagedDealDomainToApi(d))
	}
	return result
}

func MapStagedDealDomainToApi(d domain.StagedDeal) api.Deal {
	deal := api.Deal{
		DealID:         d.SourceID,
		Name:           d.DisplayName,
		OwnerID:        d.OwnerID,
		Amount:         d.Amount,
		CanonicalStage: string(d.Stage),
		SourceSystem:   string(d.SourceSystem),
		DaysInStage:    d.DaysInStage,
	}
	if d.HasLastModified() {
		lm := d.LastModified
		deal.LastModified = &lm
	}
	return deal
}

func MapStageTotalsDomainToApi(totals []domain.StageTotal) []api.StageTotal {
	result := make([]api.StageTotal, 0, len(totals))
	for _, t := range totals {
		result = append(result, api.StageTotal{
			Stage:       string(t.Stage),
			Deals:       t.Deals,
			TotalAmount: t.TotalAmount,
		})
	}
	return result
}

func MapRunStoreToApi(run store.Run) api.Run {
	result := api.Run{
		ID:          run.ID,
		Client:      run.Client,
		PeriodStart: domain.FormatDate(run.PeriodStart),
		PeriodEnd:   domain.FormatDate(run.PeriodEnd),
		Status:      run.Status,
		StartedAt:   run.StartedAt,
	}
	if run.Error.Valid {
		result.Error = run.Error.String
	}
	if run.FinishedAt.Valid {
		finished := run.FinishedAt.Time
		result.FinishedAt = &finished
	}
	return result
}

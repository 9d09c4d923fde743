package delta

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	periodStart = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)
)

func deal(id string, stage domain.CanonicalStage, amount float64, daysBeforeEnd int) domain.UnifiedRecord {
	return domain.UnifiedRecord{
		SourceID:     id,
		DisplayName:  "Deal " + id,
		Amount:       amount,
		Stage:        stage,
		OwnerID:      "owner",
		LastModified: periodEnd.AddDate(0, 0, -daysBeforeEnd).Add(10 * time.Hour),
		SourceSystem: domain.SourceHubspot,
	}
}

func ids(deals []domain.StagedDeal) []string {
	out := make([]string, 0, len(deals))
	for _, d := range deals {
		out = append(out, d.SourceID)
	}
	return out
}

func TestSummarize_TopRisksOrderedByDaysInStage(t *testing.T) {
	records := []domain.UnifiedRecord{
		deal("record_35days", domain.StageProposal, 100, 35),
		deal("record_40days", domain.StageProposal, 100, 40),
	}

	summary, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)

	assert.Equal(t, []string{"record_40days", "record_35days"}, ids(summary.TopRisks))
	assert.Equal(t, 40, summary.TopRisks[0].DaysInStage)
	assert.Equal(t, 35, summary.TopRisks[1].DaysInStage)
}

func TestSummarize_EmptyInput(t *testing.T) {
	summary, err := Summarize(nil, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)

	assert.NotNil(t, summary.NewWon)
	assert.Empty(t, summary.NewWon)
	assert.NotNil(t, summary.Lost)
	assert.Empty(t, summary.Lost)
	assert.NotNil(t, summary.TopRisks)
	assert.Empty(t, summary.TopRisks)
	assert.Equal(t, int64(0), summary.PipelineChange.WeightedPipelineNow)
	assert.Equal(t, int64(0), summary.PipelineChange.WeightedPipelinePrev)
	assert.True(t, summary.PipelineChange.PrevIsPlaceholder)
	assert.Contains(t, summary.Notes, NoteNoActivity)
	assert.Contains(t, summary.Notes, NotePrevPlaceholder)
}

func TestSummarize_InvalidPeriod(t *testing.T) {
	summary, err := Summarize([]domain.UnifiedRecord{deal("a", domain.StageClosedWon, 1, 0)},
		periodEnd, periodStart, "Acme SaaS")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidPeriod))
	assert.True(t, domain.IsDataQualityError(err))
	assert.Equal(t, domain.DeltaSummary{}, summary)
}

func TestSummarize_SingleDayPeriod(t *testing.T) {
	day := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	records := []domain.UnifiedRecord{
		{SourceID: "before", Stage: domain.StageClosedWon, Amount: 1, LastModified: day.Add(-time.Second)},
		{SourceID: "morning", Stage: domain.StageClosedWon, Amount: 10, LastModified: day},
		{SourceID: "night", Stage: domain.StageClosedLost, Amount: 20, LastModified: day.Add(23*time.Hour + 59*time.Minute)},
		{SourceID: "after", Stage: domain.StageClosedWon, Amount: 100, LastModified: day.AddDate(0, 0, 1)},
	}

	summary, err := Summarize(records, day, day, "Acme SaaS")
	require.NoError(t, err)

	assert.Equal(t, []string{"morning"}, ids(summary.NewWon))
	assert.Equal(t, []string{"night"}, ids(summary.Lost))
	assert.Equal(t, int64(30), summary.PipelineChange.WeightedPipelineNow)
}

func TestSummarize_FilterBeforeClassify(t *testing.T) {
	records := []domain.UnifiedRecord{
		deal("inside-won", domain.StageClosedWon, 1000, 5),
		deal("outside-won", domain.StageClosedWon, 5000, 400),
		deal("future", domain.StageProposal, 7000, -3),
		{SourceID: "undated", Stage: domain.StageClosedLost, Amount: 9000},
		deal("inside-qual", domain.StageQualification, 250.75, 2),
		deal("inside-unspecified", domain.StageUnspecified, 100, 1),
	}

	summary, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)

	assert.Equal(t, []string{"inside-won"}, ids(summary.NewWon))
	assert.Empty(t, summary.Lost)
	assert.Empty(t, summary.TopRisks)
	// all stages count toward the coarse pipeline value, truncated to an integer
	assert.Equal(t, int64(1350), summary.PipelineChange.WeightedPipelineNow)
	assert.Contains(t, summary.Notes, NoteCoarsePipeline)
}

func TestSummarize_ClassificationRules(t *testing.T) {
	records := []domain.UnifiedRecord{
		deal("won-1", domain.StageClosedWon, 10, 60),
		deal("lost-1", domain.StageClosedLost, 10, 60),
		deal("won-2", domain.StageClosedWon, 10, 1),
		deal("eval-stale", domain.StageEvaluation, 10, 31),
		deal("eval-boundary", domain.StageEvaluation, 10, 30),
		deal("qual-stale", domain.StageQualification, 10, 70),
		deal("unspecified-stale", domain.StageUnspecified, 10, 70),
		deal("lost-2", domain.StageClosedLost, 10, 2),
	}

	summary, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)

	assert.Equal(t, []string{"won-1", "won-2"}, ids(summary.NewWon))
	assert.Equal(t, []string{"lost-1", "lost-2"}, ids(summary.Lost))
	assert.Equal(t, []string{"eval-stale"}, ids(summary.TopRisks))
	assert.Equal(t, 60, summary.NewWon[0].DaysInStage)
}

func TestSummarize_TopRisksTieBreaksAndLimit(t *testing.T) {
	records := []domain.UnifiedRecord{
		deal("c", domain.StageProposal, 100, 50),
		deal("b", domain.StageProposal, 100, 50),
		deal("big", domain.StageEvaluation, 900, 50),
		deal("old", domain.StageEvaluation, 1, 70),
		deal("x1", domain.StageProposal, 5, 45),
		deal("x2", domain.StageProposal, 5, 44),
		deal("x3", domain.StageProposal, 5, 43),
	}

	summary, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)

	assert.Equal(t, []string{"old", "big", "b", "c", "x1"}, ids(summary.TopRisks))
}

func TestSummarize_TieBreakOnSourceSystem(t *testing.T) {
	sheets := deal("dup", domain.StageProposal, 100, 40)
	sheets.SourceSystem = domain.SourceSheets
	hubspot := deal("dup", domain.StageProposal, 100, 40)

	summary, err := Summarize([]domain.UnifiedRecord{sheets, hubspot}, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)
	require.Len(t, summary.TopRisks, 2)
	assert.Equal(t, domain.SourceHubspot, summary.TopRisks[0].SourceSystem)
	assert.Equal(t, domain.SourceSheets, summary.TopRisks[1].SourceSystem)
}

func TestSummarize_Idempotent(t *testing.T) {
	var records []domain.UnifiedRecord
	for i := 0; i < 20; i++ {
		stage := []domain.CanonicalStage{domain.StageProposal, domain.StageEvaluation, domain.StageClosedWon}[i%3]
		records = append(records, deal(fmt.Sprintf("d-%02d", 19-i), stage, float64(i%4)*10, 31+i%5))
	}

	first, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)
	second, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.TopRisks, 5)
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	records := []domain.UnifiedRecord{
		deal("b", domain.StageProposal, 100, 35),
		deal("a", domain.StageProposal, 100, 40),
	}
	snapshot := append([]domain.UnifiedRecord(nil), records...)

	_, err := Summarize(records, periodStart, periodEnd, "Acme SaaS")
	require.NoError(t, err)
	assert.Equal(t, snapshot, records)
}

func TestSummarizer_CustomSettings(t *testing.T) {
	s := NewSummarizer(Settings{StaleDays: 10, TopRiskCount: 1})
	records := []domain.UnifiedRecord{
		deal("a", domain.StageProposal, 100, 11),
		deal("b", domain.StageProposal, 100, 12),
	}

	summary, err := s.Summarize(records, domain.NewPeriod(periodStart, periodEnd), "Acme SaaS")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(summary.TopRisks))
}

func TestDaysInStage(t *testing.T) {
	end := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysInStage(domain.UnifiedRecord{}, end))
	assert.Equal(t, 0, DaysInStage(domain.UnifiedRecord{LastModified: end.Add(48 * time.Hour)}, end))
	// time of day never yields a fractional day
	assert.Equal(t, 1, DaysInStage(domain.UnifiedRecord{LastModified: end.Add(-time.Minute)}, end))
	assert.Equal(t, 0, DaysInStage(domain.UnifiedRecord{LastModified: end.Add(23 * time.Hour)}, end))
	assert.Equal(t, 40, DaysInStage(domain.UnifiedRecord{LastModified: end.AddDate(0, 0, -40)}, end))
}

func TestStageBreakdown(t *testing.T) {
	records := []domain.UnifiedRecord{
		{Stage: domain.StageProposal, Amount: 450000},
		{Stage: domain.StageClosedWon, Amount: 550000},
		{Stage: domain.StageProposal, Amount: 400000},
		{Stage: domain.StageUnspecified, Amount: 1},
	}

	assert.Equal(t, []domain.StageTotal{
		{Stage: domain.StageProposal, Deals: 2, TotalAmount: 850000},
		{Stage: domain.StageClosedWon, Deals: 1, TotalAmount: 550000},
		{Stage: domain.StageUnspecified, Deals: 1, TotalAmount: 1},
	}, StageBreakdown(records))
	assert.Empty(t, StageBreakdown(nil))
}

package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/de-tools/revops-pilot/pkg/services/config"
	"github.com/de-tools/revops-pilot/pkg/services/delta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testPeriod = domain.NewPeriod(
	time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
)

func hubspotRows() []domain.RawRecord {
	return []domain.RawRecord{
		{Source: domain.SourceHubspot, Fields: map[string]any{
			"deal_id": "H1", "name": "Globex renewal", "amount": 12000.0, "stage": "Won",
			"owner": "u1", "last_modified": "2024-01-05T10:00:00Z",
		}},
		{Source: domain.SourceHubspot, Fields: map[string]any{
			"deal_id": "H2", "name": "Initech pilot", "amount": 8000.0, "stage": "proposal",
			"owner": "u2", "last_modified": "2023-11-01T10:00:00Z",
		}},
	}
}

func sheetsRows() []domain.RawRecord {
	return []domain.RawRecord{
		{Source: domain.SourceSheets, Fields: map[string]any{
			"pipeline_id": "S1", "deal_name": "Umbrella expansion", "deal_amount": "$5,500", "current_stage": "lost",
			"account_owner": "u3", "updated_date": "2024-01-03",
		}},
	}
}

type fixture struct {
	deals    *mockDealStore
	pipeline *mockPipelineStore
	runs     *mockRunStore
	narrator *mockNarrator
	poster   *mockPoster
	runner   *Runner
}

func setupFixture(t *testing.T, withDelivery bool) *fixture {
	t.Helper()
	f := &fixture{
		deals:    new(mockDealStore),
		pipeline: new(mockPipelineStore),
		runs:     new(mockRunStore),
		narrator: new(mockNarrator),
		poster:   new(mockPoster),
	}
	cfg := RunnerConfig{Sources: config.DefaultSources(), Summarizer: delta.DefaultSettings()}
	if withDelivery {
		cfg.Narrator = f.narrator
		cfg.Poster = f.poster
	}

	runner, err := NewRunner(f.deals, f.pipeline, f.runs, cfg)
	require.NoError(t, err)
	runner.now = func() time.Time { return time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC) }
	f.runner = runner
	return f
}

func (f *fixture) expectRawTables() {
	f.deals.On("ListRaw", mock.Anything, domain.SourceHubspot, "raw_hubspot_deals").Return(hubspotRows(), nil)
	f.deals.On("ListRaw", mock.Anything, domain.SourceSheets, "raw_sheets_pipeline_sheet").Return(sheetsRows(), nil)
}

func TestRunner_LoadCombinesSourcesInOrder(t *testing.T) {
	f := setupFixture(t, false)
	f.expectRawTables()

	records, err := f.runner.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"H1", "H2", "S1"}, []string{records[0].SourceID, records[1].SourceID, records[2].SourceID})
	assert.Equal(t, domain.StageClosedWon, records[0].Stage)
	assert.Equal(t, 5500.0, records[2].Amount)
	f.deals.AssertExpectations(t)
}

func TestRunner_LoadReadsSpreadsheetExport(t *testing.T) {
	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]any{"pipeline_id", "deal_name", "deal_amount", "current_stage", "account_owner", "updated_date"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]any{"S9", "Hooli upsell", 4200, "Evaluation", "u9", "2024-01-02"}))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	opener := &bytesOpener{data: buf.Bytes()}
	dealStore := new(mockDealStore)
	dealStore.On("ListRaw", mock.Anything, domain.SourceHubspot, "raw_hubspot_deals").Return(hubspotRows(), nil)

	runner, err := NewRunner(dealStore, new(mockPipelineStore), new(mockRunStore), RunnerConfig{
		Sources:     config.DefaultSources(),
		Spreadsheet: &Spreadsheet{Location: "s3://exports/pipeline.xlsx", Source: domain.SourceSheets, Opener: opener},
	})
	require.NoError(t, err)

	records, err := runner.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "S9", records[2].SourceID)
	assert.Equal(t, domain.StageEvaluation, records[2].Stage)
	assert.Equal(t, "s3://exports/pipeline.xlsx", opener.location)
	dealStore.AssertNotCalled(t, "ListRaw", mock.Anything, domain.SourceSheets, mock.Anything)
}

func TestRunner_LoadMissingTable(t *testing.T) {
	sources := config.DefaultSources()
	sheets := sources[domain.SourceSheets]
	sheets.Table = ""
	sources[domain.SourceSheets] = sheets

	dealStore := new(mockDealStore)
	dealStore.On("ListRaw", mock.Anything, domain.SourceHubspot, "raw_hubspot_deals").Return(hubspotRows(), nil)
	runner, err := NewRunner(dealStore, new(mockPipelineStore), new(mockRunStore), RunnerConfig{Sources: sources})
	require.NoError(t, err)

	_, err = runner.Load(context.Background())
	assert.True(t, domain.IsConfigurationError(err))
}

func TestNewRunner_RejectsIncompleteSchema(t *testing.T) {
	sources := config.DefaultSources()
	delete(sources[domain.SourceHubspot].Fields, domain.FieldOwner)

	_, err := NewRunner(new(mockDealStore), new(mockPipelineStore), new(mockRunStore), RunnerConfig{Sources: sources})
	assert.True(t, domain.IsConfigurationError(err))
}

func TestRunner_Summarize(t *testing.T) {
	f := setupFixture(t, false)
	f.expectRawTables()

	summary, err := f.runner.Summarize(context.Background(), testPeriod, "Acme SaaS")
	require.NoError(t, err)
	assert.Equal(t, "Acme SaaS", summary.ClientName)
	require.Len(t, summary.NewWon, 1)
	assert.Equal(t, "H1", summary.NewWon[0].SourceID)
	require.Len(t, summary.Lost, 1)
	assert.Equal(t, "S1", summary.Lost[0].SourceID)
	assert.EqualValues(t, 17500, summary.PipelineChange.WeightedPipelineNow)
	f.pipeline.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestRunner_RunRecordsSuccess(t *testing.T) {
	f := setupFixture(t, true)
	f.expectRawTables()

	var runID string
	f.runs.On("Create", mock.Anything, mock.MatchedBy(func(run store.Run) bool {
		runID = run.ID
		return run.Status == store.RunStatusRunning && run.Client == "Acme SaaS" && run.PeriodEnd.Equal(testPeriod.End)
	})).Return(nil)
	f.pipeline.On("Replace", mock.Anything, mock.MatchedBy(func(records []domain.UnifiedRecord) bool {
		return len(records) == 3
	})).Return(nil)
	f.narrator.On("Narrate", mock.Anything, mock.Anything).Return("Acme won Globex.", nil)
	f.poster.On("Post", mock.Anything, "Acme won Globex.").Return(nil)
	f.runs.On("Finish", mock.Anything, mock.Anything, store.RunStatusSucceeded, nil, mock.Anything).Return(nil)

	result, err := f.runner.Run(context.Background(), RunRequest{Client: "Acme SaaS", Period: testPeriod, Narrate: true, Post: true})
	require.NoError(t, err)
	assert.Equal(t, runID, result.ID)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "Acme won Globex.", result.Narrative)
	assert.True(t, result.Posted)
	assert.NoError(t, result.NarrationErr)

	f.runs.AssertExpectations(t)
	f.pipeline.AssertExpectations(t)
	f.poster.AssertExpectations(t)
}

func TestRunner_RunToleratesNarrationFailure(t *testing.T) {
	f := setupFixture(t, true)
	f.expectRawTables()
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.pipeline.On("Replace", mock.Anything, mock.Anything).Return(nil)
	f.narrator.On("Narrate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	f.poster.On("Post", mock.Anything, FallbackMessage).Return(nil)
	f.runs.On("Finish", mock.Anything, mock.Anything, store.RunStatusSucceeded, nil, mock.Anything).Return(nil)

	result, err := f.runner.Run(context.Background(), RunRequest{Client: "Acme SaaS", Period: testPeriod, Narrate: true, Post: true})
	require.NoError(t, err)
	assert.Error(t, result.NarrationErr)
	assert.Empty(t, result.Narrative)
	assert.True(t, result.Posted)
	f.poster.AssertExpectations(t)
}

func TestRunner_RunRecordsDataQualityFailure(t *testing.T) {
	f := setupFixture(t, true)
	bad := hubspotRows()
	bad[1].Fields["amount"] = "n/a"
	f.deals.On("ListRaw", mock.Anything, domain.SourceHubspot, "raw_hubspot_deals").Return(bad, nil)
	f.deals.On("ListRaw", mock.Anything, domain.SourceSheets, "raw_sheets_pipeline_sheet").Return(sheetsRows(), nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("Finish", mock.Anything, mock.Anything, store.RunStatusFailed, mock.MatchedBy(func(err error) bool {
		return domain.IsDataQualityError(err)
	}), mock.Anything).Return(nil)

	_, err := f.runner.Run(context.Background(), RunRequest{Client: "Acme SaaS", Period: testPeriod, Narrate: true, Post: true})
	require.Error(t, err)
	assert.True(t, domain.IsDataQualityError(err))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	f.pipeline.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
	f.narrator.AssertNotCalled(t, "Narrate", mock.Anything, mock.Anything)
	f.runs.AssertExpectations(t)
}

func TestRunner_RunPostFailureFailsRun(t *testing.T) {
	f := setupFixture(t, true)
	f.expectRawTables()
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.pipeline.On("Replace", mock.Anything, mock.Anything).Return(nil)
	f.narrator.On("Narrate", mock.Anything, mock.Anything).Return("text", nil)
	f.poster.On("Post", mock.Anything, "text").Return(errors.New("webhook: HTTP 500"))
	f.runs.On("Finish", mock.Anything, mock.Anything, store.RunStatusFailed, mock.Anything, mock.Anything).Return(nil)

	result, err := f.runner.Run(context.Background(), RunRequest{Client: "Acme SaaS", Period: testPeriod, Narrate: true, Post: true})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Posted)
	f.runs.AssertExpectations(t)
}

func TestRunner_DeliverWithoutPosterSkips(t *testing.T) {
	f := setupFixture(t, false)

	result, err := f.runner.Deliver(context.Background(), domain.DeltaSummary{ClientName: "Acme SaaS"}, false, true)
	require.NoError(t, err)
	assert.False(t, result.Posted)
}

func TestRunner_DeliverWithoutNarrationPostsDescription(t *testing.T) {
	f := setupFixture(t, true)
	summary := domain.DeltaSummary{ClientName: "Acme SaaS", Period: testPeriod}
	f.poster.On("Post", mock.Anything, delta.Describe(summary)).Return(nil)

	result, err := f.runner.Deliver(context.Background(), summary, false, true)
	require.NoError(t, err)
	assert.True(t, result.Posted)
	f.narrator.AssertNotCalled(t, "Narrate", mock.Anything, mock.Anything)
}

func TestRunner_Stages(t *testing.T) {
	f := setupFixture(t, false)
	f.pipeline.On("List", mock.Anything).Return([]domain.UnifiedRecord{
		{SourceID: "H1", Stage: domain.StageProposal, Amount: 100},
		{SourceID: "H2", Stage: domain.StageProposal, Amount: 50},
	}, nil)

	totals, err := f.runner.Stages(context.Background())
	require.NoError(t, err)
	for _, total := range totals {
		if total.Stage == domain.StageProposal {
			assert.Equal(t, 2, total.Deals)
			assert.Equal(t, 150.0, total.TotalAmount)
		}
	}
}

func TestPeriodEndingToday(t *testing.T) {
	now := time.Date(2024, 1, 8, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))

	period, err := PeriodEndingToday(now, 7)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", domain.FormatDate(period.Start))
	assert.Equal(t, "2024-01-09", domain.FormatDate(period.End))

	period, err = PeriodEndingToday(now, 0)
	require.NoError(t, err)
	assert.True(t, period.Start.Equal(period.End))

	_, err = PeriodEndingToday(now, -1)
	assert.True(t, domain.IsDataQualityError(err))
}

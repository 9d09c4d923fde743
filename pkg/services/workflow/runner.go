package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/de-tools/revops-pilot/pkg/services/canonical"
	"github.com/de-tools/revops-pilot/pkg/services/config"
	"github.com/de-tools/revops-pilot/pkg/services/delta"
	"github.com/de-tools/revops-pilot/pkg/services/narrator"
	"github.com/de-tools/revops-pilot/pkg/services/notify"
	"github.com/de-tools/revops-pilot/pkg/store/deals"
	"github.com/de-tools/revops-pilot/pkg/store/pipeline"
	"github.com/de-tools/revops-pilot/pkg/store/runs"
	"github.com/de-tools/revops-pilot/pkg/store/spreadsheet"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FallbackMessage is posted when narration failed
const FallbackMessage = "Summary generation failed"

// Opener fetches a spreadsheet export by location
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Spreadsheet replaces the table of one source with an .xlsx export
type Spreadsheet struct {
	Location string
	Sheet    string
	Source   domain.SourceSystem
	Opener   Opener
}

type Runner struct {
	deals         deals.Store
	pipeline      pipeline.Store
	runs          runs.Store
	sources       config.Sources
	spreadsheet   *Spreadsheet
	canonicalizer canonical.Canonicalizer
	summarizer    *delta.Summarizer
	narrator      narrator.Narrator
	poster        notify.Poster
	now           func() time.Time
}

type RunnerConfig struct {
	Sources       config.Sources
	Spreadsheet   *Spreadsheet
	Canonicalizer canonical.Options
	Summarizer    delta.Settings
	// Narrator and Poster are optional; nil disables the step
	Narrator narrator.Narrator
	Poster   notify.Poster
}

// RunRequest describes one reporting run
type RunRequest struct {
	Client  string
	Period  domain.Period
	Narrate bool
	Post    bool
}

type RunResult struct {
	ID        string
	Summary   domain.DeltaSummary
	Narrative string
	// NarrationErr is set when narration was requested and failed; the run still succeeds
	NarrationErr error
	Posted       bool
}

func NewRunner(
	dealStore deals.Store,
	pipelineStore pipeline.Store,
	runStore runs.Store,
	cfg RunnerConfig,
) (*Runner, error) {
	if dealStore == nil || pipelineStore == nil || runStore == nil {
		return nil, fmt.Errorf("runner requires deal, pipeline and run stores")
	}

	canonicalizer, err := canonical.NewCanonicalizer(cfg.Sources.SchemaMap(), cfg.Canonicalizer)
	if err != nil {
		return nil, err
	}
	if cfg.Spreadsheet != nil && cfg.Spreadsheet.Opener == nil {
		return nil, fmt.Errorf("spreadsheet source requires an opener")
	}

	return &Runner{
		deals:         dealStore,
		pipeline:      pipelineStore,
		runs:          runStore,
		sources:       cfg.Sources,
		spreadsheet:   cfg.Spreadsheet,
		canonicalizer: canonicalizer,
		summarizer:    delta.NewSummarizer(cfg.Summarizer),
		narrator:      cfg.Narrator,
		poster:        cfg.Poster,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// PeriodEndingToday returns [today - daysBack, today] in UTC calendar dates
func PeriodEndingToday(now time.Time, daysBack int) (domain.Period, error) {
	if daysBack < 0 {
		return domain.Period{}, &domain.DataQualityError{
			Field: "days_back",
			Value: daysBack,
			Err:   domain.ErrInvalidPeriod,
		}
	}
	end := domain.CalendarDate(now.UTC())
	return domain.NewPeriod(end.AddDate(0, 0, -daysBack), end), nil
}

// Load reads every configured source and canonicalizes the combined snapshot.
// Sources are read in name order so the output order is stable.
func (r *Runner) Load(ctx context.Context) ([]domain.UnifiedRecord, error) {
	logger := zerolog.Ctx(ctx)

	names := make([]string, 0, len(r.sources))
	for source := range r.sources {
		names = append(names, string(source))
	}
	sort.Strings(names)

	var raws []domain.RawRecord
	for _, name := range names {
		source := domain.SourceSystem(name)
		records, err := r.loadSource(ctx, source)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("source", name).Int("records", len(records)).Msg("loaded raw deals")
		raws = append(raws, records...)
	}

	return r.canonicalizer.Canonicalize(ctx, raws)
}

func (r *Runner) loadSource(ctx context.Context, source domain.SourceSystem) ([]domain.RawRecord, error) {
	if r.spreadsheet != nil && r.spreadsheet.Source == source {
		rc, err := r.spreadsheet.Opener.Open(ctx, r.spreadsheet.Location)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return spreadsheet.ReadRecords(rc, source, r.spreadsheet.Sheet)
	}

	table := r.sources[source].Table
	if table == "" {
		return nil, &domain.ConfigurationError{
			Source: source,
			Field:  "table",
			Err:    errors.New("no table configured for source"),
		}
	}
	return r.deals.ListRaw(ctx, source, table)
}

// Materialize rewrites canonical_pipeline from the current raw snapshot
func (r *Runner) Materialize(ctx context.Context) ([]domain.UnifiedRecord, error) {
	records, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.pipeline.Replace(ctx, records); err != nil {
		return nil, fmt.Errorf("materialize canonical pipeline: %w", err)
	}
	return records, nil
}

// Summarize builds the delta summary from a fresh raw snapshot without writing anything
func (r *Runner) Summarize(ctx context.Context, period domain.Period, client string) (domain.DeltaSummary, error) {
	records, err := r.Load(ctx)
	if err != nil {
		return domain.DeltaSummary{}, err
	}
	return r.summarizer.Summarize(records, period, client)
}

// Stages reports count and amount per stage over the materialized canonical pipeline
func (r *Runner) Stages(ctx context.Context) ([]domain.StageTotal, error) {
	records, err := r.pipeline.List(ctx)
	if err != nil {
		return nil, err
	}
	return delta.StageBreakdown(records), nil
}

// Runs lists recent runs, newest first
func (r *Runner) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	return r.runs.List(ctx, limit)
}

// Deliver narrates the summary and posts the result.
// A narration failure is logged and replaced by FallbackMessage; a failed post is returned.
func (r *Runner) Deliver(ctx context.Context, summary domain.DeltaSummary, narrate, post bool) (RunResult, error) {
	logger := zerolog.Ctx(ctx)
	result := RunResult{Summary: summary}

	if narrate {
		if r.narrator == nil {
			result.NarrationErr = errors.New("no narrator configured")
		} else {
			text, err := r.narrator.Narrate(ctx, adapters.MapDeltaSummaryDomainToApi(summary))
			result.Narrative, result.NarrationErr = text, err
		}
		if result.NarrationErr != nil {
			logger.Error().Err(result.NarrationErr).Msg("summary generation failed")
		}
	}

	if !post {
		return result, nil
	}
	if r.poster == nil {
		logger.Warn().Msg("chat webhook not set; skipping post")
		return result, nil
	}

	text := result.Narrative
	if text == "" {
		text = FallbackMessage
		if !narrate {
			text = delta.Describe(summary)
		}
	}
	if err := r.poster.Post(ctx, text); err != nil {
		if errors.Is(err, notify.ErrNoWebhook) {
			logger.Warn().Msg("chat webhook not set; skipping post")
			return result, nil
		}
		return result, fmt.Errorf("post summary: %w", err)
	}
	result.Posted = true
	return result, nil
}

// Run materializes the pipeline, summarizes the period, delivers the summary and records the run
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	id := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", id).Str("client", req.Client).Logger()
	ctx = logger.WithContext(ctx)

	if err := r.runs.Create(ctx, store.Run{
		ID:          id,
		Client:      req.Client,
		PeriodStart: req.Period.Start,
		PeriodEnd:   req.Period.End,
		Status:      store.RunStatusRunning,
		StartedAt:   r.now(),
	}); err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}
	logger.Info().Str("period", req.Period.String()).Msg("pipeline run started")

	result, runErr := r.execute(ctx, req)
	if result != nil {
		result.ID = id
	}

	status := store.RunStatusSucceeded
	if runErr != nil {
		status = store.RunStatusFailed
		logger.Error().Err(runErr).Msg("pipeline run failed")
	}
	// a cancelled run still records its outcome
	if err := r.runs.Finish(context.WithoutCancel(ctx), id, status, runErr, r.now()); err != nil {
		logger.Error().Err(err).Msg("failed to record run result")
		if runErr == nil {
			runErr = fmt.Errorf("record run result: %w", err)
		}
	}
	if runErr != nil {
		return result, runErr
	}

	logger.Info().
		Int("new_won", len(result.Summary.NewWon)).
		Int("lost", len(result.Summary.Lost)).
		Int("top_risks", len(result.Summary.TopRisks)).
		Bool("posted", result.Posted).
		Msg("pipeline run finished")
	return result, nil
}

func (r *Runner) execute(ctx context.Context, req RunRequest) (*RunResult, error) {
	records, err := r.Materialize(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := r.summarizer.Summarize(records, req.Period, req.Client)
	if err != nil {
		return nil, err
	}

	result, err := r.Deliver(ctx, summary, req.Narrate, req.Post)
	return &result, err
}

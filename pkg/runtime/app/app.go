package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/services/canonical"
	"github.com/de-tools/revops-pilot/pkg/services/config"
	"github.com/de-tools/revops-pilot/pkg/services/delta"
	"github.com/de-tools/revops-pilot/pkg/services/narrator"
	"github.com/de-tools/revops-pilot/pkg/services/notify"
	"github.com/de-tools/revops-pilot/pkg/services/source"
	"github.com/de-tools/revops-pilot/pkg/services/workflow"
	"github.com/de-tools/revops-pilot/pkg/store/deals"
	"github.com/de-tools/revops-pilot/pkg/store/duckdb"
	"github.com/de-tools/revops-pilot/pkg/store/objectstore"
	"github.com/de-tools/revops-pilot/pkg/store/pipeline"
	"github.com/de-tools/revops-pilot/pkg/store/runs"
	"github.com/rs/zerolog"
)

// App is the wired set of stores and services behind both the CLI and the web API
type App struct {
	Config *config.Config
	Runner *workflow.Runner
	Deals  deals.Store

	sourceDB *sql.DB
	stateDB  *sql.DB
}

type Options struct {
	// Narrate builds a narrator; failures to build one are logged and narration then falls back
	Narrate bool
	// Prompt overrides llm.prompt
	Prompt string
}

// Factory builds an App for one command invocation
type Factory func(ctx context.Context, opts Options) (*App, error)

// NewFactory binds configuration and a driver registry
func NewFactory(cfg *config.Config, registry source.Registry) Factory {
	return func(ctx context.Context, opts Options) (*App, error) {
		return New(ctx, cfg, registry, opts)
	}
}

func New(ctx context.Context, cfg *config.Config, registry source.Registry, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	sources, err := config.LoadSources(cfg.Sources)
	if err != nil {
		return nil, err
	}

	sourceDB, err := registry.Open(ctx, cfg.Database)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "database", Err: err}
	}

	stateDB := sourceDB
	if !source.IsEmbedded(cfg.Database.Driver) {
		stateDB, err = duckdb.NewDB(duckdb.Settings{DbPath: cfg.State.Path})
		if err != nil {
			sourceDB.Close()
			return nil, fmt.Errorf("failed to open state database: %w", err)
		}
	}

	a := &App{Config: cfg, sourceDB: sourceDB, stateDB: stateDB}

	dealStore, err := deals.NewStore(sourceDB)
	if err != nil {
		a.Close()
		return nil, err
	}
	pipelineStore, err := pipeline.NewStore(stateDB)
	if err != nil {
		a.Close()
		return nil, err
	}
	runStore, err := runs.NewStore(stateDB)
	if err != nil {
		a.Close()
		return nil, err
	}

	runnerCfg := workflow.RunnerConfig{
		Sources: sources,
		Canonicalizer: canonical.Options{
			SkipInvalid: cfg.Report.SkipInvalid,
			OnReject: func(raw domain.RawRecord, err error) {
				logger.Warn().Err(err).Str("source", string(raw.Source)).Msg("skipping invalid deal")
			},
		},
		Summarizer: delta.Settings{
			StaleDays:    cfg.Report.StaleDays,
			TopRiskCount: cfg.Report.TopRisks,
		},
	}

	if cfg.Sheets.Path != "" {
		runnerCfg.Spreadsheet = &workflow.Spreadsheet{
			Location: cfg.Sheets.Path,
			Sheet:    cfg.Sheets.Sheet,
			Source:   domain.SourceSystem(cfg.Sheets.Source),
			Opener:   objectstore.NewOpener(nil),
		}
	}

	if cfg.Slack.Webhook != "" {
		runnerCfg.Poster = notify.NewSlackPoster(cfg.Slack.Webhook)
	}

	if opts.Narrate {
		n, err := newNarrator(ctx, cfg.LLM, opts.Prompt)
		if err != nil {
			logger.Error().Err(err).Msg("narration unavailable")
		} else {
			runnerCfg.Narrator = n
		}
	}

	runner, err := workflow.NewRunner(dealStore, pipelineStore, runStore, runnerCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Runner = runner
	a.Deals = dealStore
	return a, nil
}

func newNarrator(ctx context.Context, cfg config.LLM, promptPath string) (narrator.Narrator, error) {
	if promptPath == "" {
		promptPath = cfg.Prompt
	}
	prompt, err := narrator.LoadPrompt(promptPath)
	if err != nil {
		return nil, err
	}
	return narrator.NewGeminiNarrator(ctx, narrator.Settings{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
		Prompt: prompt,
	})
}

// Embedded reports whether raw tables live in a local database that can be seeded
func (a *App) Embedded() bool {
	return source.IsEmbedded(a.Config.Database.Driver)
}

func (a *App) Close() error {
	var errs []error
	if a.stateDB != nil && a.stateDB != a.sourceDB {
		errs = append(errs, a.stateDB.Close())
	}
	if a.sourceDB != nil {
		errs = append(errs, a.sourceDB.Close())
	}
	return errors.Join(errs...)
}

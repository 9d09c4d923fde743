package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/store/deals"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type SeedCmd struct {
	env         Env
	materialize bool
}

func NewSeedCmd(env Env) *cobra.Command {
	sc := &SeedCmd{env: env}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample CRM and spreadsheet deals into the local database",
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.materialize, "materialize", true, "Rebuild canonical_pipeline after seeding")

	return cmd
}

func (sc *SeedCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := sc.env.NewApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.Embedded() {
		return &domain.ConfigurationError{
			Field: "database.driver",
			Err:   errors.New("seeding requires an embedded duckdb or sqlite database"),
		}
	}

	now := time.Now().UTC()
	hubspot, sheets := deals.SampleHubspotDeals(now), deals.SampleSheetsDeals(now)
	if err := a.Deals.Seed(ctx, hubspot, sheets); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int("hubspot", len(hubspot)).Int("sheets", len(sheets)).Msg("sample deals loaded")

	if sc.materialize {
		if _, err := a.Runner.Materialize(ctx); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(sc.env.Output, "Seeded %d deals\n", len(hubspot)+len(sheets))
	return err
}

package commands

import (
	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type StagesCmd struct {
	env     Env
	refresh bool
	json    bool
}

func NewStagesCmd(env Env) *cobra.Command {
	sc := &StagesCmd{env: env}
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Show deal count and amount per canonical stage",
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.refresh, "refresh", false, "Rebuild canonical_pipeline from the raw tables first")
	cmd.Flags().BoolVar(&sc.json, "json", false, "Print as JSON")

	return cmd
}

func (sc *StagesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := sc.env.NewApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if sc.refresh {
		if _, err := a.Runner.Materialize(ctx); err != nil {
			return err
		}
	}

	totals, err := a.Runner.Stages(ctx)
	if err != nil {
		return err
	}

	out := adapters.MapStageTotalsDomainToApi(totals)
	if sc.json {
		return writeJSON(sc.env.Output, out)
	}
	return export.NewReporter(sc.env.Output).HandleStages(out)
}

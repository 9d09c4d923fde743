package commands

import (
	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type RunsCmd struct {
	env   Env
	limit int
	json  bool
}

func NewRunsCmd(env Env) *cobra.Command {
	rc := &RunsCmd{env: env}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE:  rc.run,
	}

	cmd.Flags().IntVar(&rc.limit, "limit", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&rc.json, "json", false, "Print as JSON")

	return cmd
}

func (rc *RunsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := rc.env.NewApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.Runner.Runs(ctx, rc.limit)
	if err != nil {
		return err
	}

	out := make([]api.Run, 0, len(runs))
	for _, run := range runs {
		out = append(out, adapters.MapRunStoreToApi(run))
	}
	if rc.json {
		return writeJSON(rc.env.Output, out)
	}
	return export.NewReporter(rc.env.Output).HandleRuns(out)
}

package commands

import (
	"fmt"
	"time"

	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/runtime/terminal/export"
	"github.com/de-tools/revops-pilot/pkg/services/workflow"
	"github.com/spf13/cobra"
)

const (
	DefaultClient   = "Acme SaaS"
	DefaultDaysBack = 7
)

type RunCmd struct {
	env      Env
	client   string
	daysBack int
	narrate  bool
	prompt   string
	slack    bool
}

func NewRunCmd(env Env) *cobra.Command {
	rc := &RunCmd{env: env}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Materialize the pipeline, summarize the last days and deliver the summary",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.client, "client", DefaultClient, "Client name shown in the summary")
	cmd.Flags().IntVar(&rc.daysBack, "days-back", DefaultDaysBack, "Length of the period ending today (UTC)")
	cmd.Flags().BoolVar(&rc.narrate, "narrate", true, "Generate a narrative with the LLM")
	cmd.Flags().StringVar(&rc.prompt, "prompt", "", "Prompt file used for narration")
	cmd.Flags().BoolVar(&rc.slack, "slack", false, "Post the narrative to the chat webhook")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := workflow.PeriodEndingToday(time.Now(), rc.daysBack)
	if err != nil {
		return err
	}

	a, err := rc.env.NewApp(ctx, app.Options{Narrate: rc.narrate, Prompt: rc.prompt})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Runner.Run(ctx, workflow.RunRequest{
		Client:  rc.client,
		Period:  period,
		Narrate: rc.narrate,
		Post:    rc.slack,
	})
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(rc.env.Output, "Run %s succeeded\n", result.ID); err != nil {
		return err
	}
	return export.NewSummaryReporter(rc.env.Output).Handle(export.Report{
		Summary:         adapters.MapDeltaSummaryDomainToApi(result.Summary),
		Narrative:       result.Narrative,
		NarrationFailed: result.NarrationErr != nil,
	})
}

package commands

import (
	"fmt"
	"os"

	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/models/api"
	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type SummarizeCmd struct {
	env     Env
	start   string
	end     string
	client  string
	json    bool
	xlsx    string
	narrate bool
	prompt  string
	slack   bool
}

func NewSummarizeCmd(env Env) *cobra.Command {
	sc := &SummarizeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize pipeline changes for a period",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.start, "start", "", "Period start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sc.end, "end", "", "Period end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sc.client, "client", "", "Client name shown in the summary")
	cmd.Flags().BoolVar(&sc.json, "json", false, "Print the summary payload as JSON")
	cmd.Flags().StringVar(&sc.xlsx, "xlsx", "", "Also write the summary to an .xlsx workbook")
	cmd.Flags().BoolVar(&sc.narrate, "narrate", false, "Generate a narrative with the LLM")
	cmd.Flags().StringVar(&sc.prompt, "prompt", "", "Prompt file used for narration")
	cmd.Flags().BoolVar(&sc.slack, "slack", false, "Post the narrative to the chat webhook")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}

func (sc *SummarizeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := domain.ParsePeriod(sc.start, sc.end)
	if err != nil {
		return err
	}

	a, err := sc.env.NewApp(ctx, app.Options{Narrate: sc.narrate, Prompt: sc.prompt})
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Runner.Summarize(ctx, period, sc.client)
	if err != nil {
		return err
	}

	result, err := a.Runner.Deliver(ctx, summary, sc.narrate, sc.slack)
	if err != nil {
		return err
	}

	payload := adapters.MapDeltaSummaryDomainToApi(summary)
	if sc.xlsx != "" {
		if err := writeWorkbook(sc.xlsx, payload); err != nil {
			return err
		}
	}

	if sc.json {
		return writeJSON(sc.env.Output, api.SummaryResponse{
			Payload:       payload,
			Summary:       result.Narrative,
			SummaryFailed: result.NarrationErr != nil,
		})
	}

	return export.NewSummaryReporter(sc.env.Output).Handle(export.Report{
		Summary:         payload,
		Narrative:       result.Narrative,
		NarrationFailed: result.NarrationErr != nil,
	})
}

func writeWorkbook(path string, payload api.DeltaSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := export.WriteWorkbook(f, payload); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

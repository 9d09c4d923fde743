package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/revops-pilot/pkg/models/api"
)

// Report is what the summarize and run commands print
type Report struct {
	Summary   api.DeltaSummary
	Narrative string
	// NarrationFailed marks a requested narrative that could not be produced
	NarrationFailed bool
}

const reportTemplate = `{{define "deals"}}{{range .}}- {{.Name}} [{{.SourceSystem}}/{{.DealID}}] {{printf "%.2f" .Amount}} owner={{.OwnerID}}{{if .DaysInStage}} {{.DaysInStage}}d in {{.CanonicalStage}}{{end}}
{{else}}  (none)
{{end}}{{end}}
Pipeline summary for {{.Summary.ClientName}}
Period: {{.Summary.PeriodStart}} to {{.Summary.PeriodEnd}}
Weighted pipeline: {{.Summary.PipelineChange.WeightedPipelinePrev}}{{if .Summary.PipelineChange.PrevIsPlaceholder}} (placeholder){{end}} -> {{.Summary.PipelineChange.WeightedPipelineNow}}

=== New Won ({{len .Summary.NewWon}}) ===
{{template "deals" .Summary.NewWon}}
=== Lost ({{len .Summary.Lost}}) ===
{{template "deals" .Summary.Lost}}
=== Top Risks ({{len .Summary.TopRisks}}) ===
{{template "deals" .Summary.TopRisks}}{{if .Summary.Notes}}
Notes:
{{range .Summary.Notes}}  * {{.}}
{{end}}{{end}}{{if .Narrative}}
--- SUMMARY ---
{{.Narrative}}
{{else if .NarrationFailed}}
--- SUMMARY ---
Summary generation failed
{{end}}`

var summaryTemplate = template.Must(template.New("report").Parse(reportTemplate))

// SummaryReporter prints a summary report as plain text
type SummaryReporter struct {
	writer io.Writer
}

// NewSummaryReporter creates a new console reporter
func NewSummaryReporter(writer io.Writer) *SummaryReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &SummaryReporter{writer: writer}
}

func (c *SummaryReporter) Handle(report Report) error {
	if err := summaryTemplate.Execute(c.writer, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/revops-pilot/pkg/models/api"
)

type TableConfig struct {
	FirstWidth  int
	SecondWidth int
	ThirdWidth  int
	FourthWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		FirstWidth:  36,
		SecondWidth: 16,
		ThirdWidth:  24,
		FourthWidth: 40,
	}
}

// Reporter prints stage breakdowns and run history as fixed-width tables
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(first, second, third, fourth interface{}) string {
			return fmt.Sprintf("| %-*v | %-*v | %-*v | %-*v |",
				c.config.FirstWidth, first,
				c.config.SecondWidth, second,
				c.config.ThirdWidth, third,
				c.config.FourthWidth, fourth)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.FirstWidth+2),
				strings.Repeat("-", c.config.SecondWidth+2),
				strings.Repeat("-", c.config.ThirdWidth+2),
				strings.Repeat("-", c.config.FourthWidth+2))
		},
		"amount": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
}

func (c *Reporter) render(name, tmpl string, data any) error {
	t, err := template.New(name).Funcs(c.funcs()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

func (c *Reporter) HandleStages(totals []api.StageTotal) error {
	tmpl := `
Canonical Pipeline Summary

{{separator}}
{{formatRow "Stage" "Deals" "Total Amount" ""}}
{{separator}}
{{range .}}{{formatRow .Stage .Deals (amount .TotalAmount) ""}}
{{end}}{{separator}}
`
	return c.render("stages", tmpl, totals)
}

func (c *Reporter) HandleRuns(runs []api.Run) error {
	tmpl := `
{{separator}}
{{formatRow "Run" "Status" "Period" "Client"}}
{{separator}}
{{range .}}{{formatRow .ID .Status (printf "%s..%s" .PeriodStart .PeriodEnd) .Client}}
{{if .Error}}{{formatRow "" "" "error" .Error}}
{{end}}{{end}}{{separator}}
`
	return c.render("runs", tmpl, runs)
}

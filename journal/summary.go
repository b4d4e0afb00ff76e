package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"
)

// RunSummary describes one run of the bot over a bar feed.
type RunSummary struct {
	RunID    string
	Created  time.Time
	Strategy string
	Pair     string
	Dataset  string
	Rules    string

	Start time.Time
	End   time.Time
	Bars  int

	Positions int
	Wins      int
	Losses    int
	Open      int

	// Gains holds one rendered report line per quote currency.
	Gains []string

	Balances []string

	Notes []string
}

// Tally counts wins and losses among closed records.
func (s *RunSummary) Tally(rs []PositionRecord) {
	for _, r := range rs {
		s.Positions++
		if r.Gain.IsPositive() {
			s.Wins++
		} else {
			s.Losses++
		}
	}
}

var summaryOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var summaryOrg = template.Must(template.New("run").Funcs(summaryOrgFuncs).Parse(RunSummaryOrgTemplate))

// Org renders the summary as an Org-mode entry.
func (s *RunSummary) Org() (string, error) {
	buf := new(bytes.Buffer)
	if err := summaryOrg.Execute(buf, s); err != nil {
		return "", fmt.Errorf("render run summary: %w", err)
	}
	return buf.String(), nil
}

func (s *RunSummary) WriteOrg(path string) error {
	out, err := s.Org()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0644)
}

const RunSummaryOrgTemplate = `* RUN: {{.Strategy}} {{.Pair}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:PAIR:        {{.Pair}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:RULES:       {{.Rules}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:BARS:        {{.Bars}}
:POSITIONS:   {{.Positions}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:OPEN:        {{.Open}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Global gains
{{- range .Gains }}
- {{.}}
{{- else }}
- (none)
{{- end }}

** Balances
{{- range .Balances }}
- {{.}}
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

package export

import (
	"html/template"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/report"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Search Results for: {{.Report.Query}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
.result { margin-bottom: 30px; border-bottom: 1px solid #eee; padding-bottom: 20px; }
.result h3 { margin-bottom: 5px; }
.result a { color: #2980b9; text-decoration: none; }
.description { color: #7f8c8d; margin-bottom: 10px; }
.summary { background-color: #f9f9f9; padding: 15px; border-left: 4px solid #3498db; }
.citation { font-size: 0.9em; color: #555; }
.timestamp { color: #95a5a6; font-style: italic; font-size: 0.9em; margin-top: 30px; }
.source { font-size: 0.8em; color: #7f8c8d; margin-top: 5px; }
</style>
</head>
<body>
<h1>Search Results for: {{.Report.Query}}</h1>
{{- range .Report.Items}}
<div class="result">
<h3><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a></h3>
<div class="source">{{.URL}}</div>
{{- if .Snippet}}
<div class="description">{{.Snippet}}</div>
{{- end}}
{{- if and $.Summaries .Summary}}
<h4>Summary</h4>
<div class="summary">{{.Summary}}</div>
{{- end}}
{{- if .Citation}}
<div class="citation">{{.Citation}}</div>
{{- end}}
</div>
{{- end}}
<div class="timestamp">Generated on: {{.Generated}}</div>
<div class="timestamp">{{.App}}</div>
</body>
</html>
`))

// HTML renders r as a standalone page. All report text is escaped.
func HTML(r report.Report, includeSummaries bool) (string, error) {
	var b strings.Builder
	err := pageTemplate.Execute(&b, struct {
		Report    report.Report
		Summaries bool
		Generated string
		App       string
	}{r, includeSummaries, r.CreatedAt.UTC().Format(timestampLayout), appName})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

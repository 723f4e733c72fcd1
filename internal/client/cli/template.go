package cli

import (
	"strings"
	"text/template"

	"github.com/iudanet/tracker/internal/client/iocli"
)

type statusView struct {
	UserID    string
	ServerURL string
	Expires   string
	LastSync  string
	Pending   int
	Expired   bool
	Online    bool
}

var statusTemplate = template.Must(template.New("status").Parse(`=== Tracker Status ===
{{if .UserID}}
User:      {{.UserID}}
{{- if .ServerURL}}
URL:       {{.ServerURL}}
{{- end}}
{{- if .Expires}}
Token:     expires {{.Expires}}{{if .Expired}} (expired, run 'tracker login'){{end}}
{{- end}}
{{- else}}
Not authenticated. Run 'tracker login' to connect to a server.
{{- end}}

Server:    {{if .Online}}reachable{{else}}unreachable{{end}}
Pending:   {{.Pending}} change(s)
Last sync: {{if .LastSync}}{{.LastSync}}{{else}}never{{end}}
`))

var resultTemplate = template.Must(template.New("result").Parse(`=== Sync Result ===
Sent:      {{.Pushed}}
{{- if .Rejected}}
Rejected:  {{.Rejected}}
{{- end}}
{{- if .Retried}}
Retrying:  {{.Retried}}
{{- end}}
{{- if .Exhausted}}
Dropped:   {{.Exhausted}} (gave up after repeated failures)
{{- end}}
Received:  {{.Pulled}}
Replaced:  {{.Replaced}}
Removed:   {{.Removed}}
{{- if .Protected}}
Kept:      {{.Protected}} (local changes pending)
{{- end}}
`))

// render выполняет шаблон и печатает результат
func render(io iocli.IO, tmpl *template.Template, data any) error {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return err
	}
	io.Printf("%s", b.String())
	return nil
}

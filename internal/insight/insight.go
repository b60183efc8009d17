// Package insight produces the human-readable notes attached to a found
// wallet. The coordinator calls a Requester at most once per find and
// treats any error as "no insight".
package insight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"SeedSleuth/internal/chain"
	"SeedSleuth/internal/oracle"
)

var ErrEmpty = errors.New("insight: nothing to describe")

type Requester interface {
	Explain(ctx context.Context, addresses map[chain.ID]string) (string, error)
	Summarize(ctx context.Context, balances map[chain.ID]oracle.Amount) (string, error)
}

// Template renders insights locally from text/template. It never leaves
// the process, so it is safe to use without any API key.
type Template struct {
	explain *template.Template
	summary *template.Template
}

type line struct {
	Label  string
	Symbol string
	Value  string
	Funded bool
}

const (
	explainText = `Addresses derived from this phrase:
{{range .}}  {{.Label}}: {{.Value}}
{{end}}`

	summaryText = `{{with .Funded}}Funds found on {{len .}} chain(s):
{{range .}}  {{.Label}}: {{.Value}} {{.Symbol}}
{{end}}{{else}}No funds found.
{{end}}{{with .Empty}}Empty: {{join .}}
{{end}}`
)

func NewTemplate() *Template {
	funcs := template.FuncMap{
		"join": func(ls []line) string {
			names := make([]string, 0, len(ls))
			for _, l := range ls {
				names = append(names, l.Label)
			}
			return strings.Join(names, ", ")
		},
	}
	return &Template{
		explain: template.Must(template.New("explain").Parse(explainText)),
		summary: template.Must(template.New("summary").Funcs(funcs).Parse(summaryText)),
	}
}

func (t *Template) Explain(ctx context.Context, addresses map[chain.ID]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lines := make([]line, 0, len(addresses))
	for _, c := range sortedKeys(addresses) {
		if a := addresses[c]; a != "" {
			lines = append(lines, line{Label: c.Label(), Symbol: c.Symbol(), Value: a})
		}
	}
	if len(lines) == 0 {
		return "", ErrEmpty
	}
	return render(t.explain, lines)
}

func (t *Template) Summarize(ctx context.Context, balances map[chain.ID]oracle.Amount) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(balances) == 0 {
		return "", ErrEmpty
	}
	var data struct{ Funded, Empty []line }
	for _, c := range sortedKeys(balances) {
		amt := balances[c]
		l := line{Label: c.Label(), Symbol: c.Symbol(), Value: amt.String(), Funded: amt.IsPositive()}
		if l.Funded {
			data.Funded = append(data.Funded, l)
		} else {
			data.Empty = append(data.Empty, l)
		}
	}
	return render(t.summary, data)
}

func render(tpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tpl.Name(), err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func sortedKeys[V any](m map[chain.ID]V) []chain.ID {
	keys := make([]chain.ID, 0, len(m))
	for c := range m {
		if c.Valid() {
			keys = append(keys, c)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

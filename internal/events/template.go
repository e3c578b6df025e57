package events

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateContext supplies the substitution values available to a
// custom event-handler command template.
type TemplateContext struct {
	Event     string
	Suite     string
	Point     string
	Name      string
	SubmitNum int
	ID        string
	Message   string
}

// templateFuncs mirrors the minimal set of helpers the original
// engine's template renderer exposes; event-handler commands only
// need quoting and basic string shaping.
var templateFuncs = template.FuncMap{
	"quote": ShellQuote,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

// ShellQuote quotes s for safe inclusion as a single POSIX shell
// word, equivalent to Python's shlex.quote.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@%_-+=:,./", r):
		default:
			safe = false
		}
		if !safe {
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// RenderCommand expands a handler template against ctx. Templates may
// use Go template syntax ({{.Event}}, {{.Message | quote}} etc); if
// the template contains no "{{" at all, the classic positional
// interface is used instead — the handler is invoked with event,
// suite, identity and message as quoted positional arguments, exactly
// as the legacy "nothing substituted" fallback did.
func RenderCommand(handlerTmpl string, ctx TemplateContext) (string, error) {
	if !strings.Contains(handlerTmpl, "{{") {
		return fmt.Sprintf("%s %s %s %s %s",
			handlerTmpl,
			ShellQuote(ctx.Event),
			ShellQuote(ctx.Suite),
			ShellQuote(ctx.ID),
			ShellQuote(ctx.Message),
		), nil
	}

	t, err := template.New("handler").Funcs(templateFuncs).Parse(handlerTmpl)
	if err != nil {
		return "", fmt.Errorf("parse event handler template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render event handler template: %w", err)
	}
	return buf.String(), nil
}

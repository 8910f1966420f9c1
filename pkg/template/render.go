package template

import (
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// Render parses scanned.Text as a text/template, with sprig's function map
// merged in for ordinary template expressions and a resolveTarget function
// backed by resolve, and executes it. resolve looks up a [Target.Key]
// produced by the same [Scan] call and reports whether a value was written
// for it - the engine calls this once every target has been run through the
// DAG, per SPEC_FULL.md's template-integration design.
func Render(scanned *Scanned, resolve func(key string) (namespace.Value, bool)) (string, error) {
	funcs := sprig.FuncMap()
	funcs["resolveTarget"] = func(key string) (namespace.Value, error) {
		v, ok := resolve(key)
		if !ok {
			return nil, rerrors.New(rerrors.TemplateError, "no resolved value for template target %q", key)
		}
		return v, nil
	}

	tmpl, err := texttemplate.New("report").Funcs(funcs).Parse(scanned.Text)
	if err != nil {
		return "", rerrors.Wrap(rerrors.TemplateError, err, "parsing rewritten template")
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, nil); err != nil {
		return "", rerrors.Wrap(rerrors.TemplateError, err, "rendering template")
	}
	return out.String(), nil
}

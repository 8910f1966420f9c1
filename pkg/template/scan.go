package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// Target is one "{@ ... @}" tag discovered while scanning a template: the
// provider to resolve, the fuzzy namespace it runs under (the concatenation
// of any enclosing "with" scopes and its own inline prefix, in order), and
// any literal extra-args it was given. Key is the stable identifier the
// rewritten template text uses to ask for this tag's value at render time.
type Target struct {
	Key       string
	Name      string
	Fuzzy     namespace.FuzzySpec
	ExtraArgs []config.ExtraArg
}

// ToFuzzyTarget converts t into the same shape the actions_ tree produces,
// so the engine can resolve template targets through the same code path as
// ordinary actions.
func (t Target) ToFuzzyTarget() config.FuzzyTarget {
	return config.FuzzyTarget{Name: t.Name, Fuzzy: t.Fuzzy, ExtraArgs: t.ExtraArgs}
}

// Scanned is the result of scanning a template source: the text with every
// tag replaced by a text/template action, and the targets those actions
// depend on.
type Scanned struct {
	Text    string
	Targets []Target
}

var (
	tagRe      = regexp.MustCompile(`\{@\s*(.*?)\s*@\}`)
	exactTagRe = regexp.MustCompile(`^\s*\{@\s*.*?\s*@\}\s*$`)
	withRe     = regexp.MustCompile(`^with\s+(\S+)$`)
	endwithRe  = regexp.MustCompile(`^endwith$`)
	targetRe   = regexp.MustCompile(`^(?:(?P<fuzzy>\S+)\s+)?(?P<func>\w+)\s*(?:\((?P<args>.*)\))?$`)
	assignRe   = regexp.MustCompile(`^(\w+)\s*=\s*(.+)$`)
)

// Scan walks source line by line, replacing every recognized "{@ ... @}" tag
// with a "{{ resolveTarget "key" }}" action and collecting one [Target] per
// tag. It returns a [rerrors.TemplateError] for an unbalanced with/endwith
// block or a tag whose content matches none of the four grammar forms.
func Scan(source string) (*Scanned, error) {
	var out strings.Builder
	var targets []Target
	var withStack []namespace.FuzzySpec
	count := 0

	for lineno, line := range splitLinesKeepEnds(source) {
		matches := tagRe.FindAllStringSubmatchIndex(line, -1)
		if len(matches) == 0 {
			out.WriteString(line)
			continue
		}

		prev := 0
		for _, m := range matches {
			start, end := m[0], m[1]
			contentStart, contentEnd := m[2], m[3]
			content := strings.TrimSpace(line[contentStart:contentEnd])
			out.WriteString(line[prev:start])
			prev = end

			switch {
			case withRe.MatchString(content):
				if !exactTagRe.MatchString(strings.TrimRight(line, "\n")) {
					return nil, templateErr(lineno+1, start, "a with tag must appear alone on its own line")
				}
				fuzzy := withRe.FindStringSubmatch(content)[1]
				withStack = append(withStack, namespace.TokenizeFuzzy(fuzzy))

			case endwithRe.MatchString(content):
				if !exactTagRe.MatchString(strings.TrimRight(line, "\n")) {
					return nil, templateErr(lineno+1, start, "an endwith tag must appear alone on its own line")
				}
				if len(withStack) == 0 {
					return nil, templateErr(lineno+1, start, "endwith has no matching with")
				}
				withStack = withStack[:len(withStack)-1]

			default:
				t, err := parseTarget(content, withStack, count)
				if err != nil {
					return nil, templateErr(lineno+1, start, err.Error())
				}
				targets = append(targets, t)
				fmt.Fprintf(&out, `{{ resolveTarget "%s" }}`, t.Key)
				count++
			}
		}
		out.WriteString(line[prev:])
	}

	return &Scanned{Text: out.String(), Targets: targets}, nil
}

// parseTarget interprets content as the general "[fuzzy] name[(args)]" tag
// form, merging withStack (outermost first) with any inline fuzzy prefix.
func parseTarget(content string, withStack []namespace.FuzzySpec, index int) (Target, error) {
	m := targetRe.FindStringSubmatch(content)
	if m == nil {
		return Target{}, fmt.Errorf("could not interpret %q", content)
	}
	groups := map[string]string{}
	for i, name := range targetRe.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	funcName := groups["func"]
	if funcName == "" {
		return Target{}, fmt.Errorf("could not interpret %q", content)
	}

	extraArgs, err := parseAssignments(groups["args"])
	if err != nil {
		return Target{}, fmt.Errorf("%s in %q", err, content)
	}

	return Target{
		Key:       fmt.Sprintf("%s#%d", funcName, index),
		Name:      funcName,
		Fuzzy:     mergeFuzzy(withStack, groups["fuzzy"]),
		ExtraArgs: extraArgs,
	}, nil
}

// mergeFuzzy concatenates every enclosing with-scope, outermost first, with
// the tag's own inline fuzzy prefix, mirroring templateparser.py's
// with_fuzzy accumulator.
func mergeFuzzy(withStack []namespace.FuzzySpec, inline string) namespace.FuzzySpec {
	var out namespace.FuzzySpec
	for _, scope := range withStack {
		out = append(out, scope...)
	}
	if inline != "" {
		out = append(out, namespace.TokenizeFuzzy(inline)...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseAssignments splits a "k1=v1, k2=v2" extra-args string on commas and
// parses each piece, mirroring templateparser.py's parse_assignments.
func parseAssignments(args string) ([]config.ExtraArg, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil, nil
	}
	parts := strings.Split(args, ",")
	out := make([]config.ExtraArg, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		m := assignRe.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("malformed argument %q at position %d", part, i+1)
		}
		out = append(out, config.ExtraArg{Name: m[1], Value: literalValue(m[2])})
	}
	return out, nil
}

// literalValue interprets a bare extra-args token as a quoted string, a
// bool, a number, or, failing those, the token itself.
func literalValue(tok string) namespace.Value {
	tok = strings.TrimSpace(tok)
	if len(tok) >= 2 {
		quote := tok[0]
		if (quote == '\'' || quote == '"') && tok[len(tok)-1] == quote {
			return tok[1 : len(tok)-1]
		}
	}
	switch tok {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(tok); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}

// splitLinesKeepEnds splits source into lines, each still carrying its
// trailing "\n" (when present), mirroring Python's splitlines(keepends=True)
// so the rewritten text reproduces the source's line structure exactly.
func splitLinesKeepEnds(source string) []string {
	if source == "" {
		return nil
	}
	return strings.SplitAfter(source, "\n")
}

func templateErr(line, pos int, msg string) error {
	return rerrors.New(rerrors.TemplateError, "line %d, position %d: %s", line, pos, msg)
}

package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/cache"
	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/executor"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
	"github.com/matzehuels/reportengine/pkg/template"
)

// Options configures a single engine run.
type Options struct {
	// Registry resolves the input document's own keys (parse_X/produce_X
	// handlers). Required.
	Registry *config.Registry
	// Modules supplies provider signatures, consulted in order. Required.
	Modules []*builder.Module
	// Parallel selects executor.Parallel over executor.Sequential.
	Parallel bool
	// Workers bounds the parallel driver's goroutine pool (0 uses
	// executor.DefaultWorkers); ignored when Parallel is false.
	Workers int
	// OutputDir, RunID and Extra are forwarded to every CallSpec's Prepare
	// hook via builder.Environment. RunID defaults to a fresh UUID4 when
	// left empty.
	OutputDir string
	RunID     string
	Extra     map[string]any
	// TemplateText, when non-empty, is scanned for "{@ ... @}" tags; each
	// discovered target is resolved alongside the document's own actions_
	// and the rendered report is returned as Result.Rendered.
	TemplateText string
	// OnGraph, if set, is called with the built graph as soon as Run has
	// resolved it, before execution starts - the hook "serve" uses to
	// publish /graph without Engine depending on internal/api itself.
	OnGraph func(*builder.Graph)
}

// Engine holds the state that can outlive a single Run - the parsed
// document a long-lived "serve" command reuses across repeated
// inspections, and the template-scan cache that avoids re-scanning an
// unchanged report template for its tags on every Run.
type Engine struct {
	opts  Options
	cache cache.Cache
	keyer cache.Keyer

	mu       sync.Mutex
	docCache map[string]namespace.Map
}

// New creates an Engine. opts.Registry and opts.Modules must be set.
func New(opts Options) *Engine {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Engine{
		opts:     opts,
		cache:    cache.NewMemoryCache(),
		keyer:    cache.NewDefaultKeyer(),
		docCache: map[string]namespace.Map{},
	}
}

// Result is what a completed Run produced.
type Result struct {
	// RunID identifies this run, echoed from Options or freshly generated.
	RunID string
	// Graph is the fully-built dependency graph the executor drained.
	Graph *builder.Graph
	// Values holds the result of every CallSpec in the graph (targets and
	// their dependencies alike), keyed by result name.
	Values map[string]namespace.Value
	// Rendered is the executed template's output, set only when
	// Options.TemplateText was non-empty.
	Rendered string
}

// Load reads path into a namespace.Map, keeping the parsed document in
// memory so a long-lived "serve" run doesn't re-parse the same file on
// every status request. Unlike the byte-oriented [cache.Cache], this never
// round-trips through a serialization format, so the document's own value
// types (int vs. float64, in particular) survive untouched across repeated
// calls.
func (e *Engine) Load(_ context.Context, path string) (namespace.Map, error) {
	e.mu.Lock()
	if root, ok := e.docCache[path]; ok {
		e.mu.Unlock()
		return root, nil
	}
	e.mu.Unlock()

	root, err := Load(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.docCache[path] = root
	e.mu.Unlock()
	return root, nil
}

// InvalidateLoad drops path from the in-memory document cache, forcing the
// next Load to re-read and re-parse the file.
func (e *Engine) InvalidateLoad(path string) {
	e.mu.Lock()
	delete(e.docCache, path)
	e.mu.Unlock()
}

// RunID returns this engine's run identifier, generated fresh by New when
// Options.RunID was left empty.
func (e *Engine) RunID() string {
	return e.opts.RunID
}

// OnGraph registers fn as the Options.OnGraph hook, called once Run has
// resolved the graph and before execution starts.
func (e *Engine) OnGraph(fn func(*builder.Graph)) {
	e.opts.OnGraph = fn
}

// Build resolves root's actions_ (and, if Options.TemplateText is set, the
// template's own tags) into a single graph, without running anything.
func (e *Engine) Build(ctx context.Context, root namespace.Map) (*builder.Graph, *template.Scanned, error) {
	cfg := config.New(root, e.opts.Registry)
	targets, err := cfg.Actions()
	if err != nil {
		return nil, nil, rerrors.Wrap(rerrors.ConfigError, err, "reading actions_")
	}

	var scanned *template.Scanned
	if e.opts.TemplateText != "" {
		scanned, err = e.scanTemplate(ctx, e.opts.TemplateText)
		if err != nil {
			return nil, nil, err
		}
		for _, t := range scanned.Targets {
			targets = append(targets, t.ToFuzzyTarget())
		}
	}

	env := &builder.Environment{OutputDir: e.opts.OutputDir, RunID: e.opts.RunID, Extra: e.opts.Extra}
	b := builder.New(cfg, e.opts.Modules, env)
	graph, err := b.BuildTargets(targets)
	if err != nil {
		return nil, nil, err
	}
	return graph, scanned, nil
}

// Run builds the graph for root and drains it with the configured driver,
// rendering the template (if any) once every target has a value.
func (e *Engine) Run(ctx context.Context, root namespace.Map) (*Result, error) {
	graph, scanned, err := e.Build(ctx, root)
	if err != nil {
		return nil, err
	}
	if e.opts.OnGraph != nil {
		e.opts.OnGraph(graph)
	}

	env := &builder.Environment{OutputDir: e.opts.OutputDir, RunID: e.opts.RunID, Extra: e.opts.Extra}
	var drv interface {
		Run(ctx context.Context, g *builder.Graph, root namespace.Map) error
	}
	if e.opts.Parallel {
		drv = executor.NewParallel(env, e.opts.Workers)
	} else {
		drv = executor.NewSequential(env)
	}
	if err := drv.Run(ctx, graph, root); err != nil {
		return nil, err
	}

	values := map[string]namespace.Value{}
	for cs := range graph.TopologicalIter() {
		values[cs.ResultName] = cs.Defaults[cs.ResultName]
	}

	result := &Result{RunID: e.opts.RunID, Graph: graph, Values: values}
	if scanned != nil {
		rendered, err := template.Render(scanned, func(key string) (namespace.Value, bool) {
			return resolveTemplateKey(graph, key)
		})
		if err != nil {
			return nil, err
		}
		result.Rendered = rendered
	}
	return result, nil
}

// scanTemplate runs template.Scan, caching the result under a hash of text
// so a "serve" run re-rendering the same static template against fresh
// results doesn't re-run the tag-scanning regex pass every poll.
func (e *Engine) scanTemplate(ctx context.Context, text string) (*template.Scanned, error) {
	key := e.keyer.TemplateKey(hashText(text), "scan")
	if data, hit, err := e.cache.Get(ctx, key); err == nil && hit {
		var scanned template.Scanned
		if err := json.Unmarshal(data, &scanned); err == nil {
			return &scanned, nil
		}
	}

	scanned, err := template.Scan(text)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(scanned); err == nil {
		_ = e.cache.Set(ctx, key, data, 10*time.Minute)
	}
	return scanned, nil
}

// hashText returns a short, stable identifier for text, used to key
// per-template cache entries.
func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}

// resolveTemplateKey maps a template.Target.Key ("name#index") back to the
// CallSpec that produced "name". A template tag never expands to more than
// one concrete CallSpec in practice (tags resolve at a single, already
// fully-qualified fuzzy prefix), so the first match by result name is the
// right one.
func resolveTemplateKey(g *builder.Graph, key string) (namespace.Value, bool) {
	name := key
	for i, r := range key {
		if r == '#' {
			name = key[:i]
			break
		}
	}
	for cs := range g.TopologicalIter() {
		if cs.ResultName == name {
			return cs.Defaults[name], true
		}
	}
	return nil, false
}

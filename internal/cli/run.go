package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/engine"
	"github.com/matzehuels/reportengine/pkg/providers"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// runFlags carries every flag the run command declares, passed by value to
// the handful of helpers that build an engine.Options from it.
type runFlags struct {
	output         string
	logLevel       string
	parallel       bool
	extraProviders string
	formats        []string
	style          string
	noTUI          bool
	logFile        string
	banner         bool
	template       string
}

func (c *CLI) runCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <input.yaml>",
		Short: "resolve and execute a runcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRun(cmd.Context(), args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.output, "output", "", "directory provider Prepare hooks should write artifacts to")
	f.StringVar(&flags.logLevel, "log-level", "normal", "quiet|normal|debug (mutually exclusive with --verbose)")
	f.BoolVar(&flags.parallel, "parallel", true, "execute the graph in parallel")
	f.StringVar(&flags.extraProviders, "extra-providers", "", "comma-separated names of optional provider modules to register")
	f.StringArrayVar(&flags.formats, "format", nil, "output format(s) for a report template (repeatable)")
	f.StringVar(&flags.style, "style", "", "report style, forwarded to providers via the Environment's Extra map")
	f.BoolVar(&flags.noTUI, "no-tui", false, "disable the interactive progress bar")
	f.StringVar(&flags.logFile, "log-file", "", "tee logs to this file, rotated via lumberjack")
	f.BoolVar(&flags.banner, "banner", false, "print a banner before running")
	f.StringVar(&flags.template, "template", "", "report template file to scan and render")
	f.Bool("no-parallel", false, "alias for --parallel=false")
	f.MarkHidden("no-parallel")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if noParallel, _ := cmd.Flags().GetBool("no-parallel"); noParallel {
			flags.parallel = false
		}
		if cmd.Flags().Changed("log-level") && cmd.Flags().Changed("verbose") {
			return rerrors.New(rerrors.ConfigError, "--log-level and --verbose are mutually exclusive")
		}
		return nil
	}

	return cmd
}

func (c *CLI) runRun(ctx context.Context, path string, flags runFlags) error {
	if flags.banner {
		figure.NewFigure(appName, "", true).Print()
	}
	if flags.logFile != "" {
		c.Logger.SetOutput(&lumberjack.Logger{Filename: flags.logFile, MaxSize: 10, MaxBackups: 3})
	}
	c.applyLogLevel(flags.logLevel)

	templateText, err := loadTemplate(flags.template)
	if err != nil {
		return err
	}

	opts := engine.Options{
		Registry:     config.NewRegistry(),
		Parallel:     flags.parallel,
		OutputDir:    flags.output,
		TemplateText: templateText,
		Extra: map[string]any{
			"style":   flags.style,
			"formats": flags.formats,
		},
	}
	env := &builder.Environment{OutputDir: opts.OutputDir, Extra: opts.Extra}
	opts.Modules = append(opts.Modules, providers.WithEnvironment(env))
	for _, name := range splitCommaList(flags.extraProviders) {
		factory, ok := providers.Named[name]
		if !ok {
			return rerrors.New(rerrors.ConfigError, "unknown --extra-providers module %q", name)
		}
		opts.Modules = append(opts.Modules, factory())
	}

	eng := engine.New(opts)
	root, err := eng.Load(ctx, path)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !flags.noTUI {
		bar = progressbar.Default(-1, "running")
	}

	start := time.Now()
	result, err := eng.Run(ctx, root)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	c.printRunSummary(result, time.Since(start))
	if result.Rendered != "" {
		fmt.Println(result.Rendered)
	}
	return nil
}

// printRunSummary renders one row per resolved target as a table, the same
// shape run's --format flag's values end up feeding into a report.
func (c *CLI) printRunSummary(result *engine.Result, elapsed time.Duration) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Target", "Value"})
	table.SetAutoWrapText(false)
	for _, cs := range sortedCallSpecs(result.Graph) {
		table.Append([]string{cs.ResultName, fmt.Sprintf("%v", result.Values[cs.ResultName])})
	}
	table.Render()
	printKeyValue("run_id", result.RunID)
	printKeyValue("elapsed", elapsed.Round(time.Millisecond).String())
}

func sortedCallSpecs(g *builder.Graph) []*builder.CallSpec {
	var out []*builder.CallSpec
	for cs := range g.TopologicalIter() {
		out = append(out, cs)
	}
	return out
}

// applyLogLevel maps run's tri-state --log-level flag onto the shared
// logger: "quiet" and "debug" set the level outright, overriding whatever
// --verbose chose in main.go's PersistentPreRunE; "normal" leaves the
// current level unchanged.
func (c *CLI) applyLogLevel(level string) {
	switch level {
	case "quiet":
		c.SetLogLevel(LogQuiet)
	case "debug":
		c.SetLogLevel(LogDebug)
	default:
	}
}

func loadTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", rerrors.Wrap(rerrors.ResourceError, err, "reading template %q", path)
	}
	return string(data), nil
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

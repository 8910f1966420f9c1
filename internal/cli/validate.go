package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/engine"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/providers"
)

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.yaml>",
		Short: "resolve the namespace and build the dependency graph without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runValidate(ctx context.Context, path string) error {
	eng := engine.New(engine.Options{
		Registry: config.NewRegistry(),
		Modules:  []*builder.Module{providers.WithEnvironment(nil)},
	})
	root, err := eng.Load(ctx, path)
	if err != nil {
		return err
	}
	graph, _, err := eng.Build(ctx, root)
	if err != nil {
		return err
	}
	printSuccess("runcard is valid: %d targets resolved into %d graph nodes", len(actionList(root)), graph.Len())
	return nil
}

func actionList(root namespace.Map) []namespace.Value {
	actions, _ := root["actions_"].([]namespace.Value)
	return actions
}

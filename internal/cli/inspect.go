package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/engine"
	"github.com/matzehuels/reportengine/pkg/providers"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "inspect <input.yaml>",
		Short: "resolve a runcard and print a value at a dotted path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], path)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "dotted gjson path into the resolved targets, e.g. report.0.value")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, path string) error {
	eng := engine.New(engine.Options{
		Registry: config.NewRegistry(),
		Modules:  []*builder.Module{providers.WithEnvironment(nil)},
	})
	root, err := eng.Load(ctx, input)
	if err != nil {
		return err
	}
	result, err := eng.Run(ctx, root)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result.Values)
	if err != nil {
		return rerrors.Wrap(rerrors.Internal, err, "marshaling resolved values")
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}

	value := gjson.GetBytes(data, path)
	if !value.Exists() {
		return rerrors.New(rerrors.InputNotFound, "path %q not found among resolved targets", path)
	}
	fmt.Println(value.String())
	return nil
}

package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reportengine/internal/api"
	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/engine"
	"github.com/matzehuels/reportengine/pkg/providers"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <input.yaml>",
		Short: "run a runcard in the background behind a read-only HTTP status server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address the status server listens on")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, path, addr string) error {
	eng := engine.New(engine.Options{
		Registry: config.NewRegistry(),
		Modules:  []*builder.Module{providers.WithEnvironment(nil)},
	})
	root, err := eng.Load(ctx, path)
	if err != nil {
		return err
	}

	srv := api.New(eng.RunID())
	eng.OnGraph(srv.SetGraph)

	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	runDone := make(chan error, 1)
	go func() {
		_, runErr := eng.Run(ctx, root)
		srv.SetDone(runErr)
		runDone <- runErr
	}()

	serveErr := make(chan error, 1)
	go func() {
		c.Logger.Infof("status server listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case runErr := <-runDone:
		_ = httpSrv.Shutdown(context.Background())
		return runErr
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		_ = httpSrv.Shutdown(context.Background())
		return ctx.Err()
	}
}

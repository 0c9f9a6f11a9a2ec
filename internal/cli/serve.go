package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/server"
)

// shutdownTimeout bounds how long in-flight renders may finish after an
// interrupt.
const shutdownTimeout = 10 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var addr, input string
	var noCache bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered charts over HTTP",
		Long: `Serve rendered charts over HTTP.

Routes:
  GET /healthz
  GET /surveys
  GET /charts/{family}.{format}   e.g. /charts/timeline.svg?highlight=DESI`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			return c.runServe(cmd.Context(),
				firstNonEmpty(addr, cfg.Server.Addr),
				firstNonEmpty(input, cfg.Input),
				noCache)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "survey CSV file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, input string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Uploads belong to the chart commands; the server only renders in memory.
	runner.Publisher = nil

	srv := &http.Server{
		Addr: addr,
		Handler: server.New(runner, server.Options{
			Input:     input,
			Highlight: c.settings().Highlight,
		}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving charts on %s", StyleValue.Render(addr))
	printDetail("input %s", input)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	spin := newSpinner(context.Background(), "Shutting down...")
	spin.Start()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		spin.StopWithError("Shutdown failed")
		return err
	}
	spin.StopWithSuccess("Server stopped")
	return ctx.Err()
}

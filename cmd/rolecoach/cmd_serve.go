package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mentorinc/rolecoach/internal/webapi"
	"github.com/mentorinc/rolecoach/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		host        string
		port        int
		allowRemote bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP scoring API",
		Long: `Start the HTTP scoring API used by the simulator UI.

Endpoints:
  POST /api/score   Score a transcript: {"messages": [...], "scenario": "rm"}
  GET  /api/health  Health check

The server binds to loopback (127.0.0.1) unless --allow-remote is set.
The judge backend, model and temperature come from .rolecoach.yaml and the
environment (OPENAI_API_KEY, ROLECOACH_JUDGE_ENGINE, ...).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			scorer, err := opts.newScorer()
			if err != nil {
				return err
			}
			scenario, err := opts.defaultScenario()
			if err != nil {
				return err
			}

			if port == 0 {
				port = opts.cfg.Server.Port
			}
			host = resolveHost(host, allowRemote, logger)

			srv, err := webserver.New(webserver.Config{
				Host:           host,
				Port:           port,
				AllowedOrigins: opts.cfg.Server.AllowedOrigins,
				Handlers:       webapi.NewHandlers(scorer, scenario, logger),
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "rolecoach API listening on http://%s\n", srv.Addr()) //nolint:errcheck
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (default 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config, 3000)")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the judge to the network with no authentication)")

	return cmd
}

// resolveHost keeps the server on loopback unless --allow-remote is set.
func resolveHost(host string, allowRemote bool, logger *slog.Logger) string {
	if host == "" {
		return "127.0.0.1"
	}
	if allowRemote {
		logger.Warn("HTTP server binding to a non-loopback address with no authentication", "host", host)
		return host
	}
	if ip := net.ParseIP(host); (ip != nil && ip.IsLoopback()) || host == "localhost" {
		return host
	}
	logger.Info("Ignoring non-loopback host without --allow-remote", "host", host)
	return "127.0.0.1"
}

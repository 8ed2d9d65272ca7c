package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trialbench/trialbench/internal/catalog"
	"github.com/trialbench/trialbench/internal/config"
	"github.com/trialbench/trialbench/internal/jobs"
	"github.com/trialbench/trialbench/internal/session"
	"github.com/trialbench/trialbench/internal/webserver"
	"github.com/trialbench/trialbench/internal/workflow"
)

func newServeCommand() *cobra.Command {
	var (
		configFile    string
		host          string
		port          int
		jobServiceURL string
		eventLogDir   string
		origins       []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the workbench HTTP server",
		Long: `Start the workbench HTTP server.

The server exposes the workflow session, the example-trial catalog, and the
synthetic trial-data store as a JSON REST API on loopback by default.

Without --job-service the agent pipeline is simulated against the embedded
example catalog; with it, questions are submitted to the remote pipeline and
polled until completion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if configFile != "" {
				fileOpts, err := config.LoadFile(configFile)
				if err != nil {
					return err
				}
				opts = append(opts, fileOpts...)
			}
			// Flags win over the config file.
			opts = append(opts,
				config.WithHost(host),
				config.WithPort(port),
			)
			if cmd.Flags().Changed("job-service") {
				opts = append(opts, config.WithJobServiceURL(jobServiceURL))
			}
			if cmd.Flags().Changed("event-log-dir") {
				opts = append(opts, config.WithEventLogDir(eventLogDir))
			}
			if cmd.Flags().Changed("origin") {
				opts = append(opts, config.WithAllowedOrigins(origins))
			}
			cfg := config.NewServiceConfig(opts...)

			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading example catalog: %w", err)
			}

			logger := slog.Default()
			orchOpts := []workflow.Option{
				workflow.WithLogger(logger),
				workflow.WithPollInterval(cfg.PollInterval()),
			}
			if cfg.JobServiceURL() != "" {
				orchOpts = append(orchOpts,
					workflow.WithJobClient(jobs.NewHTTPClient(cfg.JobServiceURL())))
			}
			if cfg.EventLogDir() != "" {
				eventLogger, err := session.NewJSONLogger(session.DefaultLogPath(cfg.EventLogDir()))
				if err != nil {
					return fmt.Errorf("opening session log: %w", err)
				}
				orchOpts = append(orchOpts, workflow.WithEventLogger(eventLogger))
			}

			orch := workflow.New(cat, orchOpts...)
			defer orch.Close() //nolint:errcheck

			srv, err := webserver.New(webserver.Config{
				Host:           cfg.Host(),
				Port:           cfg.Port(),
				AllowedOrigins: cfg.AllowedOrigins(),
				Orchestrator:   orch,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx)
			})
			fmt.Fprintf(cmd.OutOrStdout(), "trialbench workbench: http://%s\n", srv.Addr())
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&host, "host", "", "Listen host (default 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default 8950)")
	cmd.Flags().StringVar(&jobServiceURL, "job-service", "", "Base URL of the pipeline job service (empty = simulate)")
	cmd.Flags().StringVar(&eventLogDir, "event-log-dir", "", "Directory for NDJSON session logs (empty = disabled)")
	cmd.Flags().StringArrayVar(&origins, "origin", nil, "Allowed CORS origin (repeatable)")

	return cmd
}

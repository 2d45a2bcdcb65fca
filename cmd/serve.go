package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"socialdash/internal/server"
)

var (
	port     int
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the HTTP server with the dashboard pages, the JSON API and the
Ask AI endpoint.

Ask AI is disabled (503) when no model API key is configured; the rest of
the dashboard keeps working.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context())
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 5000, "Port to run the server on (overrides config)")
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, appNeeds{primary: true, llm: true, optionalLLM: true})
	if err != nil {
		return fail(err, "Failed to initialize")
	}
	defer a.close()

	srvCfg := server.Config{
		Addr:           cfg.Server.Addr(),
		Store:          a.store,
		ReadOnly:       a.readOnly,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins(),
		AskRateLimit:   cfg.Server.AskRateLimit,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if a.pipeline != nil {
		srvCfg.Asker = a.pipeline
	}

	if err := server.Start(ctx, srvCfg); err != nil {
		return fail(err, "Server failed")
	}
	return nil
}

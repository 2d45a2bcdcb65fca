package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialdash/internal/config"
	"socialdash/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "socialdash",
		Short: "Social Dashboard - Explore post analytics and ask questions in plain English",
		Long: `Social Dashboard stores social media post analytics in PostgreSQL and
answers natural-language questions about them by generating read-only SQL.

When run without commands, it launches the interactive chat.
Use subcommands for the web server and CLI mode with JSON output.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			// The chat owns the terminal and MCP owns stdout, so neither may log to stderr noise.
			if terminalOwner(cmd) {
				logger, err = logging.NewFileOnly(cfg.Log)
			} else {
				logger, err = logging.New(cfg.Log)
			}
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file (environment variables are used when it does not exist)")
}

func terminalOwner(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "chat" || cmd.Name() == "mcp"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

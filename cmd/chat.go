package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"socialdash/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions in an interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context) error {
	a, err := openApp(ctx, appNeeds{llm: true})
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Run(a.pipeline, logger, cfg.Server.RequestTimeout)
}

package cmd

import (
	"github.com/spf13/cobra"

	"socialdash/internal/mcpserver"
)

// Version is reported to MCP clients.
var Version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the query tools over MCP (stdio)",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing:
  ask_database     answer a natural-language question
  run_query        run one read-only SQL statement
  describe_schema  describe the tables

Example client config:
  {"command": "socialdash", "args": ["mcp"]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appNeeds{llm: true, optionalLLM: true})
		if err != nil {
			return err
		}
		defer a.close()

		deps := mcpserver.Deps{Executor: a.executor, Logger: logger}
		if a.pipeline != nil {
			deps.Asker = a.pipeline
		}
		return mcpserver.ServeStdio(mcpserver.NewServer("socialdash", Version, deps))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"socialdash/internal/askai"
	"socialdash/internal/tui"
)

const askRenderWidth = 100

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your posts in plain English",
	Long: `Ask a natural language question. The model writes a read-only SQL query,
it runs under the read-only database user and the answer is rendered in the
terminal. Analytical questions also get a short written analysis. Use --json
for the raw response.

Example:
  socialdash ask "Which 5 posts had the most impressions?"
  socialdash ask --json "Which topics perform best on median likes and why?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		a, err := openApp(ctx, appNeeds{llm: true})
		if err != nil {
			return fail(err, "Failed to initialize")
		}
		defer a.close()

		resp, err := a.pipeline.Answer(ctx, question)
		if err != nil {
			if sql := askai.SQLOf(err); sql != "" {
				fmt.Printf("SQL: %s\n", sql)
			}
			return fail(err, "Failed to answer question")
		}

		if !askJSON {
			fmt.Print(tui.RenderAnswer(question, resp, askRenderWidth))
			return nil
		}
		if err := printJSON(resp); err != nil {
			return fail(err, "Failed to print response")
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the response as JSON")
	rootCmd.AddCommand(askCmd)
}

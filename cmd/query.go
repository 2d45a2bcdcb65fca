package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"socialdash/internal/askai"
)

var queryString string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the database (read-only PostgreSQL)",
	Long: `Execute the requested QUERY under the read-only database user.
The statement must start with SELECT, WITH, SHOW, DESCRIBE or EXPLAIN.
Results are sanitized the same way as Ask AI results (post ids and large
integers as text).

Examples:
  socialdash query --sql "SELECT * FROM posts ORDER BY post_datetime DESC LIMIT 5"
  socialdash query --sql "SELECT COUNT(*) AS total FROM topics"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryString == "" {
			return fail(fmt.Errorf("query is required"), "Missing query parameter")
		}
		if err := askai.Validate(queryString); err != nil {
			return fail(err, "Only read-only statements are allowed")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		a, err := openApp(ctx, appNeeds{readOnly: true})
		if err != nil {
			return fail(err, "Failed to initialize database")
		}
		defer a.close()

		rows, err := a.executor.Execute(ctx, queryString)
		if err != nil {
			return fail(err, "Failed to execute query")
		}

		if err := printJSON(askai.Sanitize(rows)); err != nil {
			return fail(err, "Failed to print rows")
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryString, "sql", "q", "", "SQL query to execute (required)")
	_ = queryCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(queryCmd)
}

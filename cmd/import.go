package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"socialdash/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [csv files...]",
	Short: "Import post analytics from CSV exports",
	Long: `Import one or more CSV exports into the posts table. Columns are matched
by header name (e.g. "Post ID" or post_id). An optional "topics" column holds
";"-separated topic names. Posts that already exist are skipped.

Example:
  socialdash import exports/2025-q1.csv exports/2025-q2.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, appNeeds{primary: true})
		if err != nil {
			return fail(err, "Failed to initialize database")
		}
		defer a.close()

		im := importer.New(a.store, logger)
		var total importer.Result
		for _, path := range args {
			res, err := im.ImportCSV(ctx, path)
			if err != nil {
				return fail(err, fmt.Sprintf("Failed to import %s", path))
			}
			fmt.Printf("%s: %d imported, %d duplicates skipped, %d invalid rows\n", path, res.Imported, res.Duplicates, res.Failed)
			total.Imported += res.Imported
			total.Duplicates += res.Duplicates
			total.Failed += res.Failed
		}
		if len(args) > 1 {
			fmt.Printf("Total: %d imported, %d duplicates skipped, %d invalid rows\n", total.Imported, total.Duplicates, total.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

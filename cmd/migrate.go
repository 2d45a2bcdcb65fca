package cmd

import (
	"github.com/spf13/cobra"

	"socialdash/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Create or upgrade the posts, topics and topic_posts tables using the
primary (read-write) database user.

Grant the read-only user SELECT on these tables afterwards, e.g.
  GRANT SELECT ON ALL TABLES IN SCHEMA public TO dashboard_ro;`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.Migrate(cfg.Database.PrimaryDSN(), logger); err != nil {
			HandleError(err, "Migration failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

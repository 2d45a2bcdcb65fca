package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"socialdash/internal/askai"
	"socialdash/internal/models"
)

// SchemaOutput represents the schema information for a table
type SchemaOutput struct {
	TableName   string       `json:"table_name"`
	ColumnCount int          `json:"column_count"`
	Columns     []ColumnInfo `json:"columns"`
}

// ColumnInfo represents information about a single column
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
}

var schemaLive bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the database schema the assistant queries against",
	Long: `Print the schema description given to the model when it writes SQL.
With --live, read the actual column list from the database instead, using
the read-only user.

Examples:
  socialdash schema
  socialdash schema --live`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !schemaLive {
			fmt.Println(askai.SchemaDescriptor)
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		a, err := openApp(ctx, appNeeds{readOnly: true})
		if err != nil {
			return fail(err, "Failed to initialize database")
		}
		defer a.close()

		tables := []string{"posts", "topics", "topic_posts"}
		schemas := make([]SchemaOutput, 0, len(tables))
		for _, tableName := range tables {
			schema, err := getTableSchema(ctx, a.executor, tableName)
			if err != nil {
				return fail(err, "Failed to read schema")
			}
			// Skip tables that don't exist
			if schema.ColumnCount == 0 {
				continue
			}
			schemas = append(schemas, schema)
		}

		if err := printJSON(schemas); err != nil {
			return fail(err, "Failed to print schema")
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaLive, "live", false, "Read columns from the database")
	rootCmd.AddCommand(schemaCmd)
}

// getTableSchema retrieves schema information for a specific table
func getTableSchema(ctx context.Context, exec askai.Executor, tableName string) (SchemaOutput, error) {
	// tableName only ever comes from the fixed list above.
	query := fmt.Sprintf(`SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = '%s'
		ORDER BY ordinal_position`, tableName)

	rows, err := exec.Execute(ctx, query)
	if err != nil {
		return SchemaOutput{}, err
	}

	return SchemaOutput{
		TableName:   tableName,
		ColumnCount: len(rows),
		Columns:     columnsFromRows(rows),
	}, nil
}

func columnsFromRows(rows []models.Row) []ColumnInfo {
	columns := make([]ColumnInfo, 0, len(rows))
	for _, r := range rows {
		name, _ := r.Get("column_name")
		typ, _ := r.Get("data_type")
		nullable, _ := r.Get("is_nullable")
		columns = append(columns, ColumnInfo{
			Name:     fmt.Sprint(name),
			Type:     fmt.Sprint(typ),
			Nullable: fmt.Sprint(nullable),
		})
	}
	return columns
}

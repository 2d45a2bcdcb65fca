package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdash/internal/models"
)

type fakeExecutor struct {
	rows []models.Row
	err  error
	sql  string
}

func (f *fakeExecutor) Execute(ctx context.Context, sql string) ([]models.Row, error) {
	f.sql = sql
	return f.rows, f.err
}

func columnRow(name, typ, nullable string) models.Row {
	return models.NewRow(
		[]string{"column_name", "data_type", "is_nullable"},
		[]any{name, typ, nullable},
	)
}

func TestGetTableSchema(t *testing.T) {
	exec := &fakeExecutor{rows: []models.Row{
		columnRow("post_id", "bigint", "NO"),
		columnRow("caption", "text", "YES"),
	}}

	schema, err := getTableSchema(context.Background(), exec, "posts")
	require.NoError(t, err)

	assert.Equal(t, "posts", schema.TableName)
	assert.Equal(t, 2, schema.ColumnCount)
	assert.Equal(t, []ColumnInfo{
		{Name: "post_id", Type: "bigint", Nullable: "NO"},
		{Name: "caption", Type: "text", Nullable: "YES"},
	}, schema.Columns)
	assert.True(t, strings.Contains(exec.sql, "table_name = 'posts'"))
}

func TestGetTableSchema_Error(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("permission denied")}

	_, err := getTableSchema(context.Background(), exec, "posts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestTerminalOwner(t *testing.T) {
	testCases := []struct {
		name string
		cmd  string
		want bool
	}{
		{name: "chat", cmd: "chat", want: true},
		{name: "mcp", cmd: "mcp", want: true},
		{name: "serve", cmd: "serve", want: false},
		{name: "ask", cmd: "ask", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub, _, err := rootCmd.Find([]string{tc.cmd})
			require.NoError(t, err)
			assert.Equal(t, tc.want, terminalOwner(sub))
		})
	}

	assert.True(t, terminalOwner(rootCmd))
}

func TestFail_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")

	err := fail(cause, "Failed to initialize database")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to initialize database: connection refused", err.Error())
}

func TestQueryCmd_RejectsWritesBeforeConnecting(t *testing.T) {
	orig := queryString
	defer func() { queryString = orig }()

	testCases := []struct {
		name string
		sql  string
		want string
	}{
		{name: "empty", sql: "", want: "Missing query parameter"},
		{name: "write statement", sql: "DROP TABLE posts", want: "Only read-only statements are allowed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			queryString = tc.sql
			err := queryCmd.RunE(queryCmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

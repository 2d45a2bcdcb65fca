package askai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		sql     string
		allowed bool
	}{
		{name: "select", sql: "SELECT * FROM posts", allowed: true},
		{name: "lowercase with whitespace", sql: "  \n select likes from posts  ", allowed: true},
		{name: "cte", sql: "WITH t AS (SELECT 1) SELECT * FROM t", allowed: true},
		{name: "show", sql: "SHOW search_path", allowed: true},
		{name: "describe", sql: "describe posts", allowed: true},
		{name: "explain", sql: "EXPLAIN SELECT 1", allowed: true},
		{name: "one leading paren", sql: "(SELECT 1) UNION (SELECT 2)", allowed: true},
		{name: "paren then space", sql: "( select 1)", allowed: true},
		{name: "two leading parens", sql: "((SELECT 1))", allowed: false},
		{name: "delete", sql: "DELETE FROM posts", allowed: false},
		{name: "drop", sql: "DROP TABLE posts", allowed: false},
		{name: "update", sql: "update posts set likes = 0", allowed: false},
		{name: "empty", sql: "", allowed: false},
		{name: "whitespace only", sql: "   ", allowed: false},
		{name: "prose", sql: "I cannot answer that", allowed: false},
		{name: "comment first", sql: "-- hi\nSELECT 1", allowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.sql)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidQuery))
			assert.Equal(t, tc.sql, SQLOf(err), "rejected SQL is carried unchanged")
		})
	}
}

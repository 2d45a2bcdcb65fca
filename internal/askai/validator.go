package askai

import "strings"

// AllowedPrefixes are the statement keywords Validate accepts.
var AllowedPrefixes = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN"}

// Validate rejects SQL that does not start with a read-only keyword.
//
// This is a textual prefix check and nothing more: a query can pass it and
// still try to write (for example a data-modifying CTE). The real guarantee is
// that the executor connects with a read-only role inside read-only transactions.
func Validate(sql string) error {
	normalized := strings.TrimSpace(sql)
	normalized = strings.TrimPrefix(normalized, "(")
	normalized = strings.ToUpper(strings.TrimLeft(normalized, " \t\r\n"))

	for _, prefix := range AllowedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return nil
		}
	}
	return &Error{Kind: ErrInvalidQuery, SQL: sql}
}

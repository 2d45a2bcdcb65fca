package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a post or topic does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePost is returned when saving a post whose id already exists.
	ErrDuplicatePost = errors.New("post already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

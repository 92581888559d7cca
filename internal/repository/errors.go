package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateEmail indica que el indice unico sobre lower(email) rechazo el insert.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateName indica un nombre repetido (case-insensitive) en villas o amenities.
	ErrDuplicateName = errors.New("name already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

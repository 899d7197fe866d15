package sqlite

import (
	"database/sql"
	"errors"
)

var errNilDatabase = errors.New("nil database connection")

// Store is a registry.Store backed by sqlite. A selector is one row in the
// selector table and each tested strategy one row in tested_strategy.
type Store struct {
	db *sql.DB
}

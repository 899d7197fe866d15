package database

import "errors"

// Supported drivers
const (
	DBSQLite3 = "sqlite3"
	DBSQLite  = "sqlite"
)

// MigrationDir is the default goose migration folder for the registry schema.
// It is relative, so it only resolves when running from the repository root;
// set migration-dir to an absolute path otherwise.
const MigrationDir = "registry/sqlite/migrations"

var (
	// ErrNoDatabaseProvided is returned when no database file is configured
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrDatabaseSupportDisabled is returned when a database operation is
	// requested while database support is disabled
	ErrDatabaseSupportDisabled = errors.New("database support disabled")

	errUnsupportedDriver = errors.New("unsupported database driver")
	errNilConnection     = errors.New("nil database connection")

	// ErrMigrationDirNotFound is returned when the migration folder does not
	// exist, relative folders resolve from the working directory
	ErrMigrationDirNotFound = errors.New("migration folder not found")
)

// Config holds the database settings
type Config struct {
	Enabled      bool   `json:"enabled"`
	Driver       string `json:"driver"`
	Database     string `json:"database"`
	MigrationDir string `json:"migration-dir"`
}

package database

import (
	"database/sql"
	"fmt"

	"github.com/thrasher-corp/goose"
	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/log"
)

// Validate checks the config when database support is enabled and fills in
// defaults
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Driver {
	case DBSQLite3, DBSQLite:
		c.Driver = DBSQLite3
	case "":
		log.Warnf(log.DatabaseMgr, "no database driver set, defaulting to %s", DBSQLite3)
		c.Driver = DBSQLite3
	default:
		return fmt.Errorf("%w %q", errUnsupportedDriver, c.Driver)
	}
	if c.Database == "" {
		return ErrNoDatabaseProvided
	}
	if c.MigrationDir == "" {
		c.MigrationDir = MigrationDir
	}
	return nil
}

// Migrate runs a goose command such as status, up or down against db using
// the migrations in dir
func Migrate(db *sql.DB, dir, command, args string) error {
	if db == nil {
		return errNilConnection
	}
	if command == "" {
		command = "up"
	}
	if !file.Exists(dir) {
		return fmt.Errorf("%w: %q", ErrMigrationDirNotFound, dir)
	}
	log.Debugf(log.DatabaseMgr, "running migration command %q in %s", command, dir)
	if err := goose.Run(command, db, DBSQLite3, dir, args); err != nil {
		return fmt.Errorf("migration %s: %w", command, err)
	}
	return nil
}

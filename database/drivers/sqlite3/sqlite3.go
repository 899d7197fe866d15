package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/database"
	"github.com/thrasher-corp/strategyfit/log"
)

// Connect opens a connection to the sqlite database at path, creating the
// parent folder when needed
func Connect(path string) (*sql.DB, error) {
	if path == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, file.DefaultPermissionOctal); err != nil {
			return nil, err
		}
	}
	dbConn, err := sql.Open(database.DBSQLite3, path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// sqlite only supports one writer
	dbConn.SetMaxOpenConns(1)
	if err = dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	log.Debugf(log.DatabaseMgr, "connected to sqlite database %s", path)
	return dbConn, nil
}

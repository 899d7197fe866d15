package main

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/config"
	"github.com/thrasher-corp/strategyfit/database"
	dbsqlite3 "github.com/thrasher-corp/strategyfit/database/drivers/sqlite3"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/optimiser"
	"github.com/thrasher-corp/strategyfit/portfolio/live"
	"github.com/thrasher-corp/strategyfit/registry"
	"github.com/thrasher-corp/strategyfit/registry/jsonstore"
	"github.com/thrasher-corp/strategyfit/registry/sqlite"
)

const debugLevels = "INFO|WARN|DEBUG|ERROR"

// session holds everything a command needs, built from the loaded config
type session struct {
	cfg       *config.Config
	db        *sql.DB
	store     registry.Store
	positions *live.Store
	engine    *optimiser.Engine
}

// loadConfig reads the config at configPath, falling back to defaults rooted
// in dataDir when the file does not exist, then applies the logging flags
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if file.Exists(configPath) {
		var err error
		cfg, err = config.ReadConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.GenerateDefault(dataDir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	if quiet {
		cfg.DisableLogging()
	}
	if verbose {
		cfg.Logging.Level = debugLevels
	}
	if err := log.SetGlobalLogConfig(&cfg.Logging, filepath.Join(dataDir, "logs")); err != nil {
		return nil, err
	}
	if file.Exists(configPath) {
		log.Debugf(log.ConfigMgr, "loaded config %s", configPath)
	} else {
		log.Debugf(log.ConfigMgr, "config %s not found, using defaults in %s", configPath, dataDir)
	}
	return cfg, nil
}

// connect opens the configured database
func connect(cfg *config.Config) (*sql.DB, error) {
	if !cfg.Database.Enabled {
		return nil, database.ErrDatabaseSupportDisabled
	}
	return dbsqlite3.Connect(cfg.Database.Database)
}

// newSession builds the registry store, position store and search engine
func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}
	switch cfg.RegistrySettings.Backend {
	case config.RegistryMemory:
		s.store = registry.NewMemoryStore()
	case config.RegistrySQLite:
		s.db, err = connect(cfg)
		if err != nil {
			return nil, err
		}
		var store *sqlite.Store
		store, err = sqlite.New(s.db)
		if err != nil {
			s.close()
			return nil, err
		}
		if err = store.Migrate(cfg.Database.MigrationDir); err != nil {
			s.close()
			return nil, err
		}
		s.store = store
	default:
		s.store, err = jsonstore.New(cfg.RegistrySettings.Path)
		if err != nil {
			return nil, err
		}
	}
	s.positions, err = live.New(cfg.PortfolioSettings.Path, cfg.PortfolioSettings.MaxPositions)
	if err != nil {
		s.close()
		return nil, err
	}
	search, err := cfg.SearchConfig()
	if err != nil {
		s.close()
		return nil, err
	}
	s.engine, err = optimiser.Setup(s.store, s.positions, search)
	if err != nil {
		s.close()
		return nil, err
	}
	log.Debugf(log.ConfigMgr, "%s registry backend ready, %d open positions", cfg.RegistrySettings.Backend, s.positions.Len())
	return s, nil
}

func (s *session) close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		log.Errorln(log.DatabaseMgr, err)
	}
	s.db = nil
}

package config

import (
	"errors"

	"github.com/thrasher-corp/strategyfit/database"
	"github.com/thrasher-corp/strategyfit/log"
)

// Registry backends
const (
	RegistryJSON   = "json"
	RegistrySQLite = "sqlite"
	RegistryMemory = "memory"
)

// Defaults
const (
	DefaultFileName         = "strategyfit.json"
	DefaultRegistryFileName = "strategies.json"
	DefaultPositionFileName = "positions.json"
	DefaultDatabaseFileName = "strategyfit.db"
	DefaultMaxPositions     = 9
)

var (
	errFileNotFound           = errors.New("config file not found")
	errUnknownRegistryBackend = errors.New("unknown registry backend")
	errDatabaseRequired       = errors.New("sqlite registry requires database support to be enabled")
	errEmptyPath              = errors.New("path is empty")
	errInvalidMaxBars         = errors.New("max bars must not be negative")
	errInvalidMaxPositions    = errors.New("max positions must not be negative")
)

// Config defines the strategyfit settings
type Config struct {
	Nickname          string            `json:"nickname"`
	DataSettings      DataSettings      `json:"data-settings"`
	RegistrySettings  RegistrySettings  `json:"registry-settings"`
	SearchSettings    SearchSettings    `json:"search-settings"`
	PortfolioSettings PortfolioSettings `json:"portfolio-settings"`
	APISettings       APISettings       `json:"api-settings"`
	Database          database.Config   `json:"database"`
	Logging           log.Config        `json:"logging"`
}

// DataSettings controls how price files are read
type DataSettings struct {
	// MaxBars caps a loaded series to the most recent bars
	MaxBars int `json:"max-bars"`
}

// RegistrySettings selects where search state is kept
type RegistrySettings struct {
	Backend string `json:"backend"`
	// Path is the JSON document for the json backend
	Path string `json:"path"`
}

// SearchSettings holds the parameter search policy
type SearchSettings struct {
	Priority       []string `json:"priority"`
	Fallback       string   `json:"fallback"`
	MaxSearchCalls int      `json:"max-search-calls"`
	Seed           int64    `json:"seed"`
}

// PortfolioSettings holds the live position store settings
type PortfolioSettings struct {
	Path         string `json:"path"`
	MaxPositions int    `json:"max-positions"`
}

// APISettings holds the REST server settings
type APISettings struct {
	ListenAddress string `json:"listen-address"`
}

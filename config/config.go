package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thrasher-corp/strategyfit/apiserver"
	"github.com/thrasher-corp/strategyfit/backtester/strategies"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common"
	"github.com/thrasher-corp/strategyfit/common/convert"
	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/database"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/optimiser"
	"github.com/thrasher-corp/strategyfit/prices"
)

// ReadConfigFromFile will take a config from a path
func ReadConfigFromFile(path string) (*Config, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("%w: %s", errFileNotFound, path)
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(fileData)
}

// LoadConfig unmarshalls byte data into a config struct
func LoadConfig(data []byte) (resp *Config, err error) {
	err = json.Unmarshal(data, &resp)
	return resp, err
}

// GenerateDefault returns a config storing everything under dir
func GenerateDefault(dir string) *Config {
	search := optimiser.DefaultConfig()
	priority := make([]string, len(search.Priority))
	for i := range search.Priority {
		priority[i] = string(search.Priority[i])
	}
	return &Config{
		Nickname: "strategyfit",
		DataSettings: DataSettings{
			MaxBars: prices.DefaultSeriesCap,
		},
		RegistrySettings: RegistrySettings{
			Backend: RegistryJSON,
			Path:    filepath.Join(dir, DefaultRegistryFileName),
		},
		SearchSettings: SearchSettings{
			Priority:       priority,
			Fallback:       string(search.Fallback),
			MaxSearchCalls: search.MaxSearchCalls,
		},
		PortfolioSettings: PortfolioSettings{
			Path:         filepath.Join(dir, DefaultPositionFileName),
			MaxPositions: DefaultMaxPositions,
		},
		APISettings: APISettings{
			ListenAddress: apiserver.DefaultListenAddress,
		},
		Database: database.Config{
			Driver:       database.DBSQLite3,
			Database:     filepath.Join(dir, DefaultDatabaseFileName),
			MigrationDir: database.MigrationDir,
		},
		Logging: log.GenDefaultSettings(),
	}
}

// SaveConfig writes the config to path
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errEmptyPath
	}
	data, err := json.MarshalIndent(c, "", " ")
	if err != nil {
		return err
	}
	return file.Write(path, data)
}

// Validate checks all config settings, filling in defaults where a setting
// was left empty
func (c *Config) Validate() error {
	var errs error
	if c.DataSettings.MaxBars < 0 {
		errs = common.AppendError(errs, fmt.Errorf("%w: %d", errInvalidMaxBars, c.DataSettings.MaxBars))
	} else if c.DataSettings.MaxBars == 0 {
		c.DataSettings.MaxBars = prices.DefaultSeriesCap
	}
	errs = common.AppendError(errs, c.validateRegistry())
	if _, err := c.SearchConfig(); err != nil {
		errs = common.AppendError(errs, err)
	}
	if c.PortfolioSettings.MaxPositions < 0 {
		errs = common.AppendError(errs, fmt.Errorf("%w: %d", errInvalidMaxPositions, c.PortfolioSettings.MaxPositions))
	}
	if c.APISettings.ListenAddress == "" {
		c.APISettings.ListenAddress = apiserver.DefaultListenAddress
	}
	if c.Logging.Enabled == nil {
		c.Logging = log.GenDefaultSettings()
	}
	return errs
}

func (c *Config) validateRegistry() error {
	c.RegistrySettings.Backend = strings.ToLower(strings.TrimSpace(c.RegistrySettings.Backend))
	switch c.RegistrySettings.Backend {
	case "":
		c.RegistrySettings.Backend = RegistryJSON
		fallthrough
	case RegistryJSON:
		if c.RegistrySettings.Path == "" {
			c.RegistrySettings.Path = DefaultRegistryFileName
		}
	case RegistrySQLite:
		if !c.Database.Enabled {
			return errDatabaseRequired
		}
	case RegistryMemory:
		log.Warnln(log.ConfigMgr, "registry backend is memory, search state will be lost on exit")
	default:
		return fmt.Errorf("%w %q", errUnknownRegistryBackend, c.RegistrySettings.Backend)
	}
	return c.Database.Validate()
}

// SearchConfig converts the search settings into the optimiser config
func (c *Config) SearchConfig() (*optimiser.Config, error) {
	def := optimiser.DefaultConfig()
	resp := &optimiser.Config{
		Priority:       def.Priority,
		Fallback:       def.Fallback,
		MaxSearchCalls: c.SearchSettings.MaxSearchCalls,
		Seed:           c.SearchSettings.Seed,
	}
	if len(c.SearchSettings.Priority) > 0 {
		resp.Priority = make([]base.Kind, len(c.SearchSettings.Priority))
		for i := range c.SearchSettings.Priority {
			k, err := strategies.ParseKind(c.SearchSettings.Priority[i])
			if err != nil {
				return nil, fmt.Errorf("search priority %w", err)
			}
			resp.Priority[i] = k
		}
	}
	if c.SearchSettings.Fallback != "" {
		k, err := strategies.ParseKind(c.SearchSettings.Fallback)
		if err != nil {
			return nil, fmt.Errorf("search fallback %w", err)
		}
		resp.Fallback = k
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

// LoggingEnabled reports whether logging output is switched on
func (c *Config) LoggingEnabled() bool {
	return c.Logging.Enabled != nil && *c.Logging.Enabled
}

// DisableLogging switches logging output off
func (c *Config) DisableLogging() {
	c.Logging.Enabled = convert.BoolPtr(false)
}

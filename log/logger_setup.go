package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/thrasher-corp/strategyfit/common/convert"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errConfigNil             = errors.New("log config is nil")
	errSubLoggerNotFound     = errors.New("sub logger not found")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(outputWriters[x]) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if !fileLoggingConfiguredCorrectly || globalLogFile == nil {
				continue
			}
			writer = globalLogFile
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: convert.BoolPtr(true),
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		LoggerFileConfig: &loggerFileConfig{
			FileName: "log.txt",
			MaxSize:  0,
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: convert.BoolPtr(true),
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

// SetGlobalLogConfig sets the global config with the supplied config and
// applies it to every registered sub logger. Log files are written to path
// when file output is requested.
func SetGlobalLogConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errConfigNil
	}
	mu.Lock()
	defer mu.Unlock()
	globalLogConfig = cfg
	logPath = path
	fileLoggingConfiguredCorrectly = false
	if globalLogFile != nil {
		if err := globalLogFile.Close(); err != nil {
			displayError(err)
		}
		globalLogFile = nil
	}
	if cfg.LoggerFileConfig != nil && cfg.LoggerFileConfig.FileName != "" &&
		strings.Contains(strings.ToLower(cfg.Output), "file") {
		if err := os.MkdirAll(logPath, 0o770); err != nil {
			return err
		}
		globalLogFile = &fileWriter{
			FileName: filepath.Join(logPath, cfg.LoggerFileConfig.FileName),
			MaxSize:  cfg.LoggerFileConfig.MaxSize,
		}
		fileLoggingConfiguredCorrectly = true
	}

	logger = newLogger(cfg)
	enabled := cfg.Enabled == nil || *cfg.Enabled
	for _, sl := range subLoggers {
		if !enabled {
			sl.Levels = Levels{}
			continue
		}
		output, err := getWriters(&cfg.SubLoggerConfig)
		if err != nil {
			return err
		}
		sl.output = output
		sl.Levels = splitLevel(cfg.Level)
	}
	if !enabled {
		return nil
	}
	for x := range cfg.SubLoggers {
		output, err := getWriters(&cfg.SubLoggers[x])
		if err != nil {
			return err
		}
		err = configureSubLogger(strings.ToUpper(cfg.SubLoggers[x].Name), cfg.SubLoggers[x].Level, output)
		if err != nil {
			return err
		}
	}
	return nil
}

// CloseLogger closes the log file if one has been opened
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	fileLoggingConfiguredCorrectly = false
	return err
}

func newLogger(c *Config) Logger {
	l := Logger{
		TimestampFormat: c.AdvancedSettings.TimeStampFormat,
		Spacer:          c.AdvancedSettings.Spacer,
		InfoHeader:      c.AdvancedSettings.Headers.Info,
		WarnHeader:      c.AdvancedSettings.Headers.Warn,
		DebugHeader:     c.AdvancedSettings.Headers.Debug,
		ErrorHeader:     c.AdvancedSettings.Headers.Error,
	}
	if c.AdvancedSettings.ShowLogSystemName != nil {
		l.ShowLogSystemName = *c.AdvancedSettings.ShowLogSystemName
	}
	return l
}

func configureSubLogger(subLogger, levels string, output io.Writer) error {
	logPtr, found := subLoggers[subLogger]
	if !found {
		return fmt.Errorf("%w: %v", errSubLoggerNotFound, subLogger)
	}
	logPtr.output = output
	logPtr.Levels = splitLevel(levels)
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(enabledLevels[x]) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
	}
	temp.Levels = splitLevel("INFO|WARN|ERROR")
	subLoggers[temp.name] = &temp
	return &temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")
	Optimiser = registerNewSubLogger("OPTIMISER")
	Strategy = registerNewSubLogger("STRATEGY")
	Registry = registerNewSubLogger("REGISTRY")
	PortfolioMgr = registerNewSubLogger("PORTFOLIO")
	ConfigMgr = registerNewSubLogger("CONFIG")
	DatabaseMgr = registerNewSubLogger("DATABASE")
	DataSource = registerNewSubLogger("DATASOURCE")
	RESTSys = registerNewSubLogger("REST")

	logger = newLogger(&Config{AdvancedSettings: GenDefaultSettings().AdvancedSettings})
}

package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
	// DefaultMaxFileSize for logger rotation file, in megabytes
	DefaultMaxFileSize int64 = 100
)

var (
	logger = Logger{}
	// fileLoggingConfiguredCorrectly flag set during config check if file logging meets requirements
	fileLoggingConfiguredCorrectly bool
	// globalLogConfig holds global configuration options for logger
	globalLogConfig = &Config{}
	// globalLogFile holds the file writer when file logging is enabled
	globalLogFile *fileWriter

	// logPath system path to store log files in
	logPath string

	// read/write mutex for logger
	mu = &sync.RWMutex{}
)

// Config holds configuration settings loaded from the application config
type Config struct {
	Enabled *bool `json:"enabled"`
	SubLoggerConfig
	LoggerFileConfig *loggerFileConfig `json:"fileSettings,omitempty"`
	AdvancedSettings advancedSettings  `json:"advancedSettings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty"`
}

type advancedSettings struct {
	ShowLogSystemName *bool   `json:"showLogSystemName"`
	Spacer            string  `json:"spacer"`
	TimeStampFormat   string  `json:"timeStampFormat"`
	Headers           headers `json:"headers"`
}

type headers struct {
	Info  string `json:"info"`
	Warn  string `json:"warn"`
	Debug string `json:"debug"`
	Error string `json:"error"`
}

// SubLoggerConfig holds sub logger configuration settings loaded from config
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty"`
	Level  string `json:"level"`
	Output string `json:"output"`
}

type loggerFileConfig struct {
	FileName string `json:"filename,omitempty"`
	MaxSize  int64  `json:"maxsize,omitempty"`
}

// Logger each instance of logger settings
type Logger struct {
	ShowLogSystemName                                bool
	TimestampFormat                                  string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
	Spacer                                           string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

type multiWriter struct {
	writers []io.Writer
	mu      sync.RWMutex
}

// fileWriter appends log output to a file, truncating it once MaxSize
// megabytes have been written
type fileWriter struct {
	FileName string
	MaxSize  int64

	size   int64
	output io.WriteCloser
	mu     sync.Mutex
}

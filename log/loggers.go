package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to stage
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.InfoHeader, sl.enabled(logger.InfoHeader), func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface sends to stage
func Infoln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.InfoHeader, sl.enabled(logger.InfoHeader), func() string { return fmt.Sprintln(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to stage
func Infof(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.InfoHeader, sl.enabled(logger.InfoHeader), func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to stage
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.DebugHeader, sl.enabled(logger.DebugHeader), func() string { return data })
}

// Debugln takes a pointer subLogger struct, string and interface sends to stage
func Debugln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.DebugHeader, sl.enabled(logger.DebugHeader), func() string { return fmt.Sprintln(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to stage
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.DebugHeader, sl.enabled(logger.DebugHeader), func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to stage
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.WarnHeader, sl.enabled(logger.WarnHeader), func() string { return data })
}

// Warnln takes a pointer subLogger struct & interface formats and sends to stage
func Warnln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.WarnHeader, sl.enabled(logger.WarnHeader), func() string { return fmt.Sprintln(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to stage
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.WarnHeader, sl.enabled(logger.WarnHeader), func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & interface formats and sends to stage
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.ErrorHeader, sl.enabled(logger.ErrorHeader), func() string { return data })
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to stage
func Errorln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.ErrorHeader, sl.enabled(logger.ErrorHeader), func() string { return fmt.Sprintln(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to stage
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sl.stage(logger.ErrorHeader, sl.enabled(logger.ErrorHeader), func() string { return fmt.Sprintf(data, v...) })
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

// enabled checks if the log level is enabled
func (sl *SubLogger) enabled(header string) bool {
	if sl == nil {
		return false
	}
	switch header {
	case logger.InfoHeader:
		return sl.Info
	case logger.WarnHeader:
		return sl.Warn
	case logger.ErrorHeader:
		return sl.Error
	case logger.DebugHeader:
		return sl.Debug
	}
	return false
}

// stage formats and writes a log event when the level is enabled. The data
// func is only invoked when the event is going to be written.
func (sl *SubLogger) stage(header string, enabled bool, data func() string) {
	if !enabled || sl.output == nil {
		return
	}
	var b strings.Builder
	b.WriteString(header)
	if logger.ShowLogSystemName {
		b.WriteString(logger.Spacer)
		b.WriteString(sl.name)
	}
	b.WriteString(logger.Spacer)
	if logger.TimestampFormat != "" {
		b.WriteString(time.Now().Format(logger.TimestampFormat))
		b.WriteString(logger.Spacer)
	}
	msg := data()
	b.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		b.WriteByte('\n')
	}
	_, err := sl.output.Write([]byte(b.String()))
	displayError(err)
}

// Name returns the sub logger's name
func (sl *SubLogger) Name() string {
	if sl == nil {
		return ""
	}
	return sl.name
}

// Package applog is the process-wide leveled logger used by the pipeline, the HTTP trigger and the CLI.
package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level is a log severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var currentLevel int32 = int32(LevelInfo)

var baseLogger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// SetLogLevel parses and sets the global level. Unknown names return false and leave it unchanged.
func SetLogLevel(s string) bool {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return false
	}
	atomic.StoreInt32(&currentLevel, int32(l))
	return true
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	_, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// GetLogLevel returns the current global level.
func GetLogLevel() Level { return Level(atomic.LoadInt32(&currentLevel)) }

// SetOutput redirects log output (tests capture it in a buffer).
func SetOutput(w io.Writer) { baseLogger.SetOutput(w) }

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "INFO"
}

func logf(l Level, format string, args ...interface{}) {
	if GetLogLevel() > l {
		return
	}
	// No args: print verbatim so a literal % in an error string is not mangled.
	if len(args) == 0 {
		baseLogger.Printf("[%s] %s", l, format)
		return
	}
	baseLogger.Printf("[%s] %s", l, fmt.Sprintf(format, args...))
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// TimeTrack logs the elapsed time of a phase at debug level. Use with defer.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}

// Logger tags every line with a component name, e.g. "[pipeline] ".
type Logger struct {
	prefix string
}

// For returns the logger of a component.
func For(component string) Logger {
	return Logger{prefix: "[" + component + "] "}
}

// Component returns the tag without brackets.
func (l Logger) Component() string {
	return strings.TrimSuffix(strings.TrimPrefix(l.prefix, "["), "] ")
}

func (l Logger) logf(lv Level, format string, args ...interface{}) {
	if len(args) == 0 {
		logf(lv, l.prefix+format)
		return
	}
	logf(lv, "%s", l.prefix+fmt.Sprintf(format, args...))
}

func (l Logger) Debugf(format string, a ...interface{}) { l.logf(LevelDebug, format, a...) }
func (l Logger) Infof(format string, a ...interface{})  { l.logf(LevelInfo, format, a...) }
func (l Logger) Warnf(format string, a ...interface{})  { l.logf(LevelWarn, format, a...) }
func (l Logger) Errorf(format string, a ...interface{}) { l.logf(LevelError, format, a...) }

// TimeTrack is the component-tagged TimeTrack.
func (l Logger) TimeTrack(start time.Time, label string) {
	l.Debugf("%s took %s", label, time.Since(start))
}

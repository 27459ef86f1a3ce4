// Package stdlogger exposes the global zerolog logger through the printf style
// interfaces of third party libraries, e.g. gorm's logger.Writer.
package stdlogger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to the global zerolog logger.
type Logger struct {
	// level used by Printf.
	level zerolog.Level
}

// New returns a Logger whose Printf writes at info level.
func New() *Logger {
	return &Logger{level: zerolog.InfoLevel}
}

// NewWithLevel returns a Logger whose Printf writes at level.
func NewWithLevel(level zerolog.Level) *Logger {
	return &Logger{level: level}
}

// Printf implements gorm.io/gorm/logger.Writer.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.write(l.level, format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(zerolog.DebugLevel, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(zerolog.InfoLevel, format, args...)
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.write(zerolog.WarnLevel, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(zerolog.ErrorLevel, format, args...)
}

func (l *Logger) write(level zerolog.Level, format string, args ...interface{}) {
	// gorm prefixes its messages with the caller and a newline
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	log.WithLevel(level).Msg(strings.ReplaceAll(msg, "\n", " "))
}

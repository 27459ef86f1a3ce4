package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

// ErrorHandler reports log lines that could not be written, e.g. to a full disk.
// Init installs it as zerolog.ErrorHandler.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: could not write log event: %v\n", os.Args[0], err)
}

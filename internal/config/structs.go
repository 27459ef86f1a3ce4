package config

import (
	"time"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Access    Access
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Access holds the permission engine settings.
type Access struct {
	// EventsViewableByAllRoles opens the events section to responsable and user.
	EventsViewableByAllRoles bool

	// DefaultDepartments are created on first start when no department exists.
	DefaultDepartments []string
}

// EngineOptions converts the settings into permission engine options.
func (a Access) EngineOptions() access.Options {
	return access.Options{EventsViewableByAllRoles: a.EventsViewableByAllRoles}
}

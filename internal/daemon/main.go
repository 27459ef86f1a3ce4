package daemon

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/dsn"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/logger/adapter/stdlogger"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/session"
)

const (
	sessionTable       = "sessions"
	slowQueryThreshold = 200 * time.Millisecond
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it was shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, web.ErrConfigNil
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	if err = seed(cfg, db); err != nil {
		return nil, errors.Wrap(err, "failed to seed database")
	}

	session.Init(sessionStorage(cfg))

	webService, err := web.New(cfg, db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create web service")
	}

	return &Daemon{
		cfg:        cfg,
		webService: webService,
	}, nil
}

// Open connects to the database selected by DB.GormEngine.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.GormEnginePostgres:
		dialector = gormpostgres.Open(dsn.Postgres(cfg))
	case config.GormEngineSQLite:
		dialector = sqlite.Open(cfg.DB.Name)
	default:
		dialector = gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(cfg.DevMode)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", cfg.DB.GormEngine)
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Str("name", cfg.DB.Name).Msg("database connected")

	return db, nil
}

// newGormLogger routes gorm output through zerolog. Dev mode logs every statement.
func newGormLogger(devMode bool) gormlogger.Interface {
	level, writer := gormlogger.Warn, stdlogger.NewWithLevel(zerolog.WarnLevel)
	if devMode {
		level, writer = gormlogger.Info, stdlogger.New()
	}

	return gormlogger.New(writer, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Member{},
		&models.Event{},
		&models.Attendance{},
		&models.HomeContent{},
	); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}

// sessionStorage keeps sessions next to the data. With sqlite sessions live in memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.GormEnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         sessionTable,
		})
	case config.GormEngineSQLite:
		log.Warn().Msg("sqlite engine: sessions are kept in memory and lost on restart")
		return nil
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}
}

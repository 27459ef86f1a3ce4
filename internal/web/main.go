package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	fiberlog "github.com/AttendanceAdmin/AttendanceAdmin/internal/logger/adapter/fiber"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/admin/user"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/attendance"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/dashboard"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/department"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/event"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/home"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/login"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/logout"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/member"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/report"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/rolecontext"
	authmw "github.com/AttendanceAdmin/AttendanceAdmin/internal/web/middleware/auth"
)

const (
	// HealthPath answers 200 while the service accepts traffic.
	HealthPath = "/health"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// ErrConfigNil is returned by New without configuration.
var ErrConfigNil = errors.New("config cannot be nil")

// ErrDBNil is returned by New without database.
var ErrDBNil = errors.New("db cannot be nil")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and shuts the http server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// AuthService returns the auth service shared by all handlers.
func (s *Service) AuthService() *auth.Service {
	return s.authService
}

// New creates the JSON web service with every handler registered.
// Sessions must be initialized before the service handles requests.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if db == nil {
		return nil, ErrDBNil
	}

	authService, err := auth.NewService(db, access.NewEngine(cfg.Access.EngineOptions()))
	if err != nil {
		return nil, err
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	// access log first so it sees the locals set by the auth middleware
	app.Use(fiberlog.New(fiberlog.Config{
		Config:        cfg.Log,
		CheckAliveURI: HealthPath,
		LocalsFields:  []string{auth.LocalsRole, auth.LocalsDepartment},
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	if cfg.Webserver.CleanPath {
		app.Use(func(c *fiber.Ctx) error {
			if p := c.Path(); p != "/" {
				c.Path(path.Clean(p))
			}

			return c.Next()
		})
	}

	app.Get(HealthPath, service.health)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(authmw.New(authService, cfg.Webserver.Session.ExpiryTime))

	// init handlers (they register their own routes with permission checks)
	for _, h := range []handler.Service{
		&login.Handler,
		&logout.Handler,
		&rolecontext.Handler,
		&dashboard.Handler,
		&member.Handler,
		&department.Handler,
		&event.Handler,
		&attendance.Handler,
		&report.Handler,
		&user.Handler,
		&home.Handler,
	} {
		h.Init(app, cfg, db, authService)
	}

	return service, nil
}

func (s *Service) health(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

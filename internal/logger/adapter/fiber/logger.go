// Package fiber provides the access log middleware of the web service.
// Every request is written as one zerolog JSON line and counted in prometheus.
package fiber

import (
	"io"
	"os"
	"path"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/logger"
)

const logDirPerm = 0o750

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "http_requests_total",
		Help: "Number of handled http requests by method, route and status.",
	}, []string{"method", "route", "status"})

	latency = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "http_request_duration_seconds",
		Help:    "Duration of handled http requests by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Config of the logger. File and console settings decide where access lines go.
	Config logger.Log

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set. Default "/health".
	CheckAliveURI string

	// LocalsFields names string values in fiber.Locals added to every access line,
	// e.g. the acting role set by the auth middleware.
	LocalsFields []string
}

// New creates the access log middleware.
func New(cfg Config) fiber.Handler {
	if cfg.CheckAliveURI == "" {
		cfg.CheckAliveURI = "/health"
	}

	access := zerolog.New(zerolog.MultiLevelWriter(writers(cfg.Config)...)).
		With().
		Timestamp().
		Logger()

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler write the status before it is logged
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logRequest(access, c, cfg, start, chainErr)

		return nil
	}
}

func logRequest(access zerolog.Logger, c *fiber.Ctx, cfg Config, start time.Time, chainErr error) {
	elapsed := time.Since(start).Seconds()
	status := c.Response().StatusCode()
	route := c.Route().Path

	requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	latency.WithLabelValues(c.Method(), route).Observe(elapsed)

	if cfg.Config.DisableCheckAlive && c.Path() == cfg.CheckAliveURI {
		return
	}

	// fasthttp normalizes the path, the raw request URI is logged instead
	uri := string(c.Request().RequestURI())

	event := access.WithLevel(level(status)).
		Str("IP", c.IP()).
		Int("status", status).
		Float64("duration", elapsed).
		Str("URI", uri).
		Str("route", route).
		Str("method", c.Method()).
		Bytes("host", c.Request().Host()).
		Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent)).
		Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor))

	for _, key := range cfg.LocalsFields {
		if v, ok := c.Locals(key).(string); ok && v != "" {
			event.Str(key, v)
		}
	}

	if chainErr != nil {
		event.Err(chainErr)
	}

	event.Send()
}

// level of an access line. Refused requests are warnings so denials stand out.
func level(status int) zerolog.Level {
	switch {
	case status >= fiber.StatusInternalServerError:
		return zerolog.ErrorLevel
	case slices.Contains([]int{fiber.StatusUnauthorized, fiber.StatusForbidden}, status):
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func writers(cfg logger.Log) []io.Writer {
	var out []io.Writer

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.File.Path, logDirPerm); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create access log directory")
		} else {
			out = append(out, &lumberjack.Logger{
				Filename:   path.Join(cfg.File.Path, cfg.File.AccessLog),
				MaxSize:    cfg.File.AccessMaxSize,
				MaxAge:     cfg.File.AccessMaxAge,
				MaxBackups: cfg.File.AccessMaxBackups,
			})
		}
	}

	// console output needs both the console and the access log switch
	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		if cfg.Console.UseConsoleWriter {
			out = append(out, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat})
		} else {
			out = append(out, os.Stdout)
		}
	}

	return out
}

package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var base zerolog.Logger

// Init configures the process-wide logger. Unknown levels fall back to
// info. Debug level switches to the human-readable console writer; every
// other level emits JSON lines on stdout.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if lvl == zerolog.DebugLevel {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	base = zerolog.New(out).Level(lvl).With().Timestamp().Caller().Logger()
}

func init() {
	Init("info")
}

func Debug() *zerolog.Event { return base.Debug() }
func Info() *zerolog.Event  { return base.Info() }
func Warn() *zerolog.Event  { return base.Warn() }
func Error() *zerolog.Event { return base.Error() }
func Fatal() *zerolog.Event { return base.Fatal() }

// Printf-style shorthands for call sites that have nothing structured to add.

func Infof(format string, v ...interface{})  { base.Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { base.Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { base.Error().Msgf(format, v...) }

// Fatalf logs and exits the process.
func Fatalf(format string, v ...interface{}) { base.Fatal().Msgf(format, v...) }

// Get exposes the underlying zerolog.Logger.
func Get() zerolog.Logger {
	return base
}

// GinLogger logs one line per request: 2xx/3xx at info, 4xx at warn,
// 5xx at error.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = base.Error()
		case status >= http.StatusBadRequest:
			event = base.Warn()
		default:
			event = base.Info()
		}

		event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Int("size", c.Writer.Size()).
			Msg("request")
	}
}

// GinRecovery converts panics into logged 500 responses.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		base.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Msg("panic recovered")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

package utils

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/constants"
)

// InitLogger initializes the application logger with the given configuration.
// Format "console" produces human-readable output for development; anything
// else emits structured JSON.
func InitLogger(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if strings.ToLower(cfg.Logging.Format) == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	log.Info().
		Str("level", level.String()).
		Str("format", cfg.Logging.Format).
		Msg("Logger initialized")
}

// LogHTTPRequest logs a completed HTTP request with latency and status.
func LogHTTPRequest(requestID, method, path, remoteAddr string, statusCode int, latency time.Duration) {
	event := log.Info()
	if statusCode >= 500 {
		event = log.Error()
	} else if statusCode >= 400 {
		event = log.Warn()
	}

	event.
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Str("remote_addr", remoteAddr).
		Int("status", statusCode).
		Dur("latency", latency).
		Msg("HTTP request")
}

// LogDBQuery logs a database query execution. Sensitive argument values
// must be redacted by the caller before being passed in.
func LogDBQuery(query string, args []interface{}, duration time.Duration, err error) {
	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}

	event.
		Str("query", TruncateString(strings.Join(strings.Fields(query), " "), constants.MaxLoggedQueryLength)).
		Interface("args", args).
		Dur("duration", duration).
		Msg("Database query")
}

// LogAuth logs an authentication event (login, signup, password change).
func LogAuth(event string, userID, email string, success bool, reason string) {
	logEvent := log.Info()
	if !success {
		logEvent = log.Warn()
	}

	logEvent.
		Str("event", event).
		Str("user_id", userID).
		Str("email", MaskEmail(email)).
		Bool("success", success)

	if reason != "" {
		logEvent.Str("reason", reason)
	}

	logEvent.Msg("Auth event")
}

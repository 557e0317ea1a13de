package observability

import (
	"github.com/danmuck/scorchedearth/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the logging profile and tags the global logger with
// the application name.
func InitLogger(app string, profile logging.Profile) zerolog.Logger {
	logging.Configure(profile)
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

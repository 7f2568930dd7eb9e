package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/vestfab-as/quoting-api/internal/config"
	"go.uber.org/zap"
)

func isDevEnvironment(environment string) bool {
	return environment == "development" || environment == "local" || environment == ""
}

// CORS builds the CORS middleware from config. A "*" entry (or an empty
// origin list in development) allows every origin; an empty list outside
// development denies all cross-origin requests.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAny := func(r *http.Request, origin string) bool { return origin != "" }
	denyAll := func(r *http.Request, origin string) bool { return false }

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !isDevEnvironment(environment) {
			logger.Warn("wildcard CORS origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured", zap.Strings("origins", cfg.AllowedOrigins))

	case isDevEnvironment(environment):
		options.AllowOriginFunc = allowAny

	default:
		// An empty AllowedOrigins list would default to "*" inside the cors
		// package, so deny explicitly.
		options.AllowOriginFunc = denyAll
		logger.Warn("no CORS origins configured, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

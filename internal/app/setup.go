// Package app contains the application setup for the inventory console.
package app

import (
	"log/slog"
	"net/http"

	"github.com/ankit-modi39/fi-inventory-management/internal/config"
	"github.com/ankit-modi39/fi-inventory-management/internal/gateway"
	"github.com/ankit-modi39/fi-inventory-management/internal/session"
	"github.com/ankit-modi39/fi-inventory-management/internal/transport/rest"
	"github.com/ankit-modi39/fi-inventory-management/pkg/bootstrap"
	restclient "github.com/ankit-modi39/fi-inventory-management/pkg/client/rest"
	"github.com/ankit-modi39/fi-inventory-management/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Sessions *session.Manager
	Logger   *slog.Logger
}

// SetupDependencies wires the gateway client, circuit breaker, and session
// manager from the configuration.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	doer := restclient.NewBreakerDoer("inventory-gateway", bootstrap.NewHTTPClient(cfg.Gateway.Timeout), cfg.Breaker)
	gw := gateway.NewClient(cfg.Gateway.URL, doer, logger)
	sessions := session.NewManager(gw, cfg.Session.TTL, cfg.PageSize, logger)

	return &Dependencies{
		Sessions: sessions,
		Logger:   logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the console.
// Used by tests to exercise the full router without a listener.
func SetupHttpHandler(deps *Dependencies, cookieName string) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cookieName)
	return mux
}

// wireRoutes sets up the HTTP routes for the console.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cookieName string) {
	consoleHandler := rest.NewHandler(deps.Sessions, cookieName, deps.Logger)
	consoleHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the console HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg.Session.CookieName)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

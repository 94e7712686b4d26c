// Package app contains the application setup for the catalog service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockroom/catalog/internal/config"
	"github.com/stockroom/catalog/internal/service"
	"github.com/stockroom/catalog/internal/store"
	"github.com/stockroom/catalog/internal/transport/rest"
	"github.com/stockroom/catalog/pkg/server"
)

type Dependencies struct {
	ProductService service.ProductService
	StockService   service.StockService
	Logger         *slog.Logger
}

// SetupDependencies wires the Postgres-backed store into the catalog services.
func SetupDependencies(dbPool *pgxpool.Pool, maxAttempts int, logger *slog.Logger) *Dependencies {
	return SetupDependenciesWithStore(store.NewPgStore(dbPool), maxAttempts, logger)
}

// SetupDependenciesWithStore wires an arbitrary ProductStore into the catalog services.
// Used by tests to run the full application against the in-memory store.
func SetupDependenciesWithStore(productStore store.ProductStore, maxAttempts int, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore),
		StockService:   service.NewStockManager(productStore, maxAttempts),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the catalog application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := rest.NewHandler(deps.ProductService, deps.StockService, deps.Logger)
	catalogHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the catalog application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

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

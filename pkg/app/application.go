package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"villacal/pkg/config"
	"villacal/pkg/contracts"
	"villacal/pkg/middleware"
)

// Application wires the HTTP server. Admin endpoints sit behind the full
// security chain including the role gate; public and health endpoints get
// the minimal chain.
type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.IPRateLimiter
	adminHandler     http.Handler
	publicHandler    http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(adminHandler, publicHandler, healthHandler contracts.Handler) {
	a.setPublicHandler(publicHandler, healthHandler)
	a.setAdminHandler(adminHandler)
	a.setServer()
}

func (a *Application) setPublicHandler(publicHandler, healthHandler contracts.Handler) {
	router := httprouter.New()
	publicHandler.RegisterRoutes(router)
	healthHandler.RegisterRoutes(router)

	a.rateLimiter = middleware.NewIPRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		a.cfg.Log,
	)

	var h http.Handler = router
	h = middleware.IPRateLimit(a.rateLimiter)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.publicHandler = h
	a.cfg.Log.Info("Public endpoints configured")
}

func (a *Application) setAdminHandler(adminHandler contracts.Handler) {
	router := httprouter.New()
	adminHandler.RegisterRoutes(router)

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)

	var h http.Handler = router
	h = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.AdminAuth(a.cfg.JWTSecret, a.cfg.AdminRole, a.cfg.Log)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.adminHandler = h
	a.cfg.Log.Info("Admin endpoints configured with authentication and full middleware chain")
}

func (a *Application) setServer() {
	mux := http.NewServeMux()
	mux.Handle("/public/", a.publicHandler)
	mux.Handle("/health", a.publicHandler)
	mux.Handle("/ready", a.publicHandler)
	mux.Handle("/bookings", a.adminHandler)
	mux.Handle("/bookings/", a.adminHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}

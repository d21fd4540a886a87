package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"backoffice/internal/handlers"
	applog "backoffice/internal/log"
)

const (
	defaultSessionLifetime = 12 * time.Hour
	defaultCookieName      = "backoffice_session"
	defaultShutdownTimeout = 5 * time.Second
)

// Config captures the runtime configuration for the costing console.
type Config struct {
	Addr     string
	Session  SessionConfig
	Database *gorm.DB
	// CurrencySymbol prefixes every cost and price the console renders.
	CurrencySymbol  string
	ShutdownTimeout time.Duration
}

// SessionConfig controls the staff session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

func (c Config) withDefaults() Config {
	if c.Session.Lifetime <= 0 {
		c.Session.Lifetime = defaultSessionLifetime
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		c.Session.CookieName = defaultCookieName
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return c
}

// Server serves the back-office console over HTTP.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New wires the handlers to cfg's database and session settings. Handler
// dependencies are package-level, so one Server is expected per process.
func New(cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()

	sessionManager := newSessionManager(cfg.Session)
	handlers.Configure(sessionManager, cfg.Database)
	handlers.ConfigureCosting(cfg.CurrencySymbol)

	applog.Debug(context.Background(), "console configured",
		"addr", cfg.Addr,
		"sessionCookie", cfg.Session.CookieName,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"currency", cfg.CurrencySymbol,
		"hasDatabase", cfg.Database != nil,
	)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           withRequestID(sessionManager.LoadAndSave(newRouter())),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}, nil
}

// newSessionManager returns an in-memory staff session store with HTTP-only,
// SameSite=Lax cookies.
func newSessionManager(cfg SessionConfig) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.Name = cfg.CookieName
	sm.Cookie.Domain = cfg.CookieDomain
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.CookieSecure
	return sm
}

// Start serves until Stop is called. It returns http.ErrServerClosed after a
// graceful shutdown.
func (s *Server) Start() error {
	applog.Info(context.Background(), "costing console listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop drains in-flight requests for at most the configured shutdown timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	applog.Info(ctx, "costing console shutting down", "timeout", s.config.ShutdownTimeout.String())
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware chain for integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

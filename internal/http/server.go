// Package http is the web surface: server-rendered pages and HTMX partials
// over net/http, with sessions, rate limiting and security headers.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/work4inventions/financeInsight/internal/actions"
	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/blob"
	"github.com/work4inventions/financeInsight/internal/cache"
	"github.com/work4inventions/financeInsight/internal/gateway"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/store"
	appweb "github.com/work4inventions/financeInsight/web"
)

type Server struct {
	http.Server
	templates *template.Template

	store         *store.Store
	actions       *actions.Service
	profiles      gateway.ProfileStore
	blobs         *blob.FSStore
	sessions      *auth.Sessions
	authenticator auth.Authenticator
	sessionTTL    time.Duration
	logger        *log.Logger

	rateLimiter *rateLimiter

	// stateCache holds in-flight OAuth state tokens.
	stateCache *cache.LRU[struct{}]
	// chartCache holds rendered PNGs keyed by user and snapshot time.
	chartCache *cache.LRU[[]byte]

	shutdownOnce sync.Once
}

// Config bundles the dependencies NewServer wires into routes.
type Config struct {
	Addr          string
	Store         *store.Store
	Actions       *actions.Service
	Profiles      gateway.ProfileStore
	Blobs         *blob.FSStore
	Sessions      *auth.Sessions
	Authenticator auth.Authenticator
	SessionTTL    time.Duration
	Logger        *log.Logger
}

// NewServer configures routes and templates, returning a ready-to-run server.
// The returned caches should be registered with the cache manager by the
// caller.
func NewServer(cfg Config) *Server {
	mux := http.NewServeMux()

	sessionTTL := cfg.SessionTTL
	if sessionTTL == 0 {
		sessionTTL = 12 * time.Hour
	}

	s := &Server{
		Server: http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
		store:         cfg.Store,
		actions:       cfg.Actions,
		profiles:      cfg.Profiles,
		blobs:         cfg.Blobs,
		sessions:      cfg.Sessions,
		authenticator: cfg.Authenticator,
		sessionTTL:    sessionTTL,
		logger:        cfg.Logger.WithComponent(log.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		stateCache:    cache.NewLRU[struct{}](500, 10*time.Minute),
		chartCache:    cache.NewLRU[[]byte](200, 5*time.Minute),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	if s.blobs != nil {
		blobsFS := http.StripPrefix("/blobs/", http.FileServer(http.Dir(s.blobs.Root())))
		mux.Handle("/blobs/", s.withMiddleware(s.requireSession(func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
			blobsFS.ServeHTTP(w, r)
		})))
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.withMiddleware(s.handleLoginPage))
	mux.HandleFunc("/auth/login", s.withMiddleware(s.handleAuthStart))
	mux.HandleFunc("/auth/callback", s.withMiddleware(s.handleAuthCallback))
	mux.HandleFunc("/auth/logout", s.withMiddleware(s.requireSession(s.handleLogout)))

	mux.HandleFunc("/", s.withMiddleware(s.requireSession(s.handleDashboard)))
	mux.HandleFunc("/transactions", s.withMiddleware(s.requireSession(s.handleTransactionsPage)))
	mux.HandleFunc("/transactions/add", s.withMiddleware(s.requireSession(s.handleAdd)))
	mux.HandleFunc("/transactions/update", s.withMiddleware(s.requireSession(s.handleUpdate)))
	mux.HandleFunc("/transactions/delete", s.withMiddleware(s.requireSession(s.handleDelete)))

	mux.HandleFunc("/ui/balance", s.withMiddleware(s.requireSession(s.handleBalancePartial)))
	mux.HandleFunc("/ui/table", s.withMiddleware(s.requireSession(s.handleTablePartial)))

	mux.HandleFunc("/charts/monthly.png", s.withMiddleware(s.requireSession(s.handleMonthlyChart)))
	mux.HandleFunc("/charts/tags.png", s.withMiddleware(s.requireSession(s.handleTagChart)))

	mux.HandleFunc("/profile", s.withMiddleware(s.requireSession(s.handleProfile)))
	mux.HandleFunc("/profile/avatar", s.withMiddleware(s.requireSession(s.handleAvatarUpload)))

	return s
}

// Caches returns the internal caches so the cache manager can sweep them.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.stateCache, s.chartCache}
}

// Shutdown stops the rate limiter and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

package router

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/foundry-guide/internal/http/middleware"
	"github.com/wolfman30/foundry-guide/internal/webchat"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	// StaticDir is served at / when it exists.
	StaticDir string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	h := cfg.ChatHandler
	r.Get("/health", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

		// Upgraded connections skip compression.
		api.Get("/ws", h.HandleWebSocket)

		api.Group(func(rest chi.Router) {
			rest.Use(middleware.Compress(5))
			rest.Post("/session", h.CreateSession)
			rest.Post("/session/{session_id}/reset", h.ResetSession)
			rest.Post("/chat", h.Chat)
			rest.Post("/ask", h.Ask)
			rest.Get("/faq", h.ListFAQ)
			rest.Get("/faq/{id}", h.GetFAQ)
		})
	})

	if dir := cfg.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else if cfg.Logger != nil {
			cfg.Logger.Warn("router: static dir not found, front-end disabled", "dir", dir)
		}
	}

	return r
}

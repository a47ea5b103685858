// internal/httpserver/server.go
//
// HTTP server wiring for the Nerdle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): mounted by routes_game.go.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: mounted by routes_auth.go.
//   - Background work: websocket hub and the expired-game janitor.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every game is subscribed once at creation; its events are broadcast to
//     websocket clients and persisted best-effort to SQLite.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/nerdle/internal/auth"
	"github.com/robalobadob/nerdle/internal/challenge"
	"github.com/robalobadob/nerdle/internal/config"
	"github.com/robalobadob/nerdle/internal/daily"
	"github.com/robalobadob/nerdle/internal/store"
	"github.com/robalobadob/nerdle/internal/ws"
)

// janitorInterval is how often expired games are swept from the store.
const janitorInterval = 10 * time.Minute

// Server bundles the router with the game store, database and hub.
type Server struct {
	r      *chi.Mux
	cfg    config.Config
	store  store.Store
	db     *sql.DB
	users  *auth.Users
	tokens *auth.Tokens
	pool   *challenge.Pool
	hub    *ws.Hub
	daily  *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB, pool *challenge.Pool) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		cfg:   cfg,
		store: st,
		db:    db,
		users: auth.NewUsers(db),
		tokens: &auth.Tokens{
			Secret:      []byte(cfg.JWTSecret),
			ExpiresDays: cfg.JWTExpiresDays,
			CookieName:  cfg.CookieName,
			Production:  cfg.Production,
		},
		pool: pool,
	}
	s.hub = ws.NewHub(s.wsInput, s.checkOrigin)

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "nerdle-go",
			"endpoints": []string{
				"/health", "POST /game/new", "GET /game/{id}", "POST /game/{id}/input",
				"POST /game/guess", "GET /game/{id}/ws", "/daily/*", "/auth/*",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "games": s.store.Len()})
	})

	optional := s.r.With(auth.Optional(s.tokens, s.users))

	// Game endpoints - OPTIONAL AUTH (guests can play)
	s.mountGame(optional)

	// Daily Challenge - OPTIONAL AUTH (guests can play; result persisted on win)
	s.mountDaily(optional)

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Run drives the websocket hub and the janitor until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)

	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now)
		}
	}
}

// sweep drops games older than the configured TTL and stale daily sessions.
func (s *Server) sweep(ctx context.Context, now time.Time) {
	n := s.store.Expire(ctx, now.Add(-s.cfg.GameTTL))
	d := s.daily.prune(daily.DateKey(now))
	if n > 0 || d > 0 {
		log.Info().Int("games", n).Int("dailySessions", d).Msg("expired sessions")
	}
}

// Start serves HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// checkOrigin accepts same-host upgrades and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	o := r.Header.Get("Origin")
	return o == "" || o == s.cfg.ClientOrigin || o == "http://"+r.Host || o == "https://"+r.Host
}

// writeError writes a JSON {"error": msg} body with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

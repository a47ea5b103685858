// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's daily game (creates or reuses session)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Daily games are ordinary games with Mode "daily": tokens and guesses go
// through the /game routes. Each player can finish the daily once per date
// (enforced by DB + in-memory session). A subscription on the game stores the
// result when it is won. The target is chosen deterministically from
// date + salt.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/nerdle/internal/daily"
	"github.com/robalobadob/nerdle/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	sessions map[string]*dailySession // active sessions keyed by playerID|date
	mu       sync.Mutex               // guards sessions
	now      func() time.Time
}

// dailySession links a player and date to the game they are playing.
type dailySession struct {
	GameID    string
	PlayerID  string
	Date      string
	Challenge int
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		sessions: make(map[string]*dailySession),
		now:      time.Now,
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// prune drops sessions that do not belong to today and reports how many.
func (d *dailyServer) prune(today string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k, sess := range d.sessions {
		if sess.Date != today {
			delete(d.sessions, k)
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
	Result int    `json:"result,omitempty"`
	Rows   int    `json:"rows,omitempty"`
	Cols   int    `json:"cols,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
//   - If the player already has a DB row for today → Played=true.
//   - If a live session exists → return its game.
//   - Otherwise start a new daily game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	o := d.srv.ownerOf(w, r)
	pid := o.ID()
	now := d.now().UTC()
	date := daily.DateKey(now)

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), pid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	// Reuse a live session. The game may have been expired from the store.
	key := pid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[key]; ok {
		if g, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			res := newGameResponse(g)
			_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: g.ID, Date: date, Result: res.Result, Rows: res.Rows, Cols: res.Cols})
			return
		}
		delete(d.sessions, key)
	}

	target, idx := d.srv.pool.Daily(now, d.srv.cfg.DailySalt)
	g, err := game.New(target, d.srv.gameConfig(target), game.ModeDaily)
	if err != nil {
		log.Error().Err(err).Str("formula", target.Formula).Msg("daily target rejected")
		writeError(w, http.StatusInternalServerError, "daily_unavailable")
		return
	}
	if err := d.srv.startGame(r.Context(), g, o); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	sess := &dailySession{GameID: g.ID, PlayerID: pid, Date: date, Challenge: idx}
	d.sessions[key] = sess
	g.Subscribe(d.recordWin(sess, g.CreatedAt))

	res := newGameResponse(g)
	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: g.ID, Date: date, Result: res.Result, Rows: res.Rows, Cols: res.Cols})
}

// recordWin stores the daily result when the game is won.
func (d *dailyServer) recordWin(sess *dailySession, start time.Time) func(game.Event) {
	return func(ev game.Event) {
		if ev.Status != game.StatusWon || ev.Feedback == nil {
			return
		}
		res := daily.Result{
			UserID:    sess.PlayerID,
			Date:      sess.Date,
			Challenge: sess.Challenge,
			Guesses:   ev.Row + 1,
			ElapsedMs: int(time.Since(start).Milliseconds()),
		}
		if err := d.store.InsertResult(context.Background(), res); err != nil {
			log.Warn().Err(err).Str("player", sess.PlayerID).Msg("insert daily result")
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := daily.DateKey(d.now())
	if q := strings.TrimSpace(r.URL.Query().Get("date")); q != "" {
		k, err := daily.ParseKey(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_date")
			return
		}
		date = k
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

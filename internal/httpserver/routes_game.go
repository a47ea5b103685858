// internal/httpserver/routes_game.go
//
// Game endpoints:
//   - POST /game/new          → start a free game (random or supplied target)
//   - GET  /game/{id}         → board snapshot
//   - POST /game/{id}/input   → one key token (on-screen keyboard)
//   - POST /game/guess        → type a whole guess and press Enter
//   - GET  /game/{id}/ws      → websocket stream of engine events
//
// Every path ends in game.Game.Submit, so all input sources share the same
// controller filter and engine rules.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/nerdle/internal/auth"
	"github.com/robalobadob/nerdle/internal/challenge"
	"github.com/robalobadob/nerdle/internal/game"
	"github.com/robalobadob/nerdle/internal/store"
	"github.com/robalobadob/nerdle/internal/ws"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Post("/game/guess", s.handleGuess)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/{id}/input", s.handleInput)
	r.Get("/game/{id}/ws", s.handleWS)
}

// gameConfig sizes the board for target.
func (s *Server) gameConfig(t game.Target) game.Config {
	return game.Config{Rows: s.cfg.Rows, Cols: utf8.RuneCountInString(t.Formula)}
}

// startGame stores g, writes its owner row and subscribes the broadcaster
// and the persistence hook to its events.
func (s *Server) startGame(ctx context.Context, g *game.Game, o owner) error {
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	// Persist owner row; the formula itself stays out of the DB
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (id, user_id, anonymous_id, mode, result, started_at, status, guesses)
	                     VALUES (?,?,?,?,?,?,?,0)`,
		g.ID, nullable(o.UserID), nullable(o.AnonID), string(g.Mode), g.Target.Result,
		g.CreatedAt.Format(time.RFC3339), string(game.StatusInProgress))
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}

	g.Subscribe(func(ev game.Event) {
		s.hub.Broadcast(&ws.Message{GameID: g.ID, Event: &ev})
		if ev.Feedback != nil {
			s.recordGuess(g.ID, o, ev)
		}
	})
	return nil
}

// recordGuess bumps the guess counter and, once the game ends, its status
// and the owner's stats. Best effort: failures are only logged.
func (s *Server) recordGuess(gameID string, o owner, ev game.Event) {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin guess tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET guesses = guesses + 1 WHERE id=?`, gameID); err != nil {
		log.Warn().Err(err).Msg("update guesses")
	}
	if ev.Status.Terminal() {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET status=?, finished_at=? WHERE id=?`,
			string(ev.Status), time.Now().UTC().Format(time.RFC3339), gameID); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		if o.UserID != "" {
			if err := auth.BumpStats(ctx, tx, o.UserID, ev.Status == game.StatusWon); err != nil {
				log.Warn().Err(err).Str("user", o.UserID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit guess tx")
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// lookup loads the game named by the {id} URL param, writing 404 on a miss.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id string) (*game.Game, bool) {
	g, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error")
		return nil, false
	}
	return g, true
}

// ------------------------------ new ----------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Formula string `json:"formula"` // optional fixed target (testing)
	Result  *int   `json:"result"`  // optional; must match formula when both are given
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	Mode   game.Mode `json:"mode"`
	Result int       `json:"result"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
}

func newGameResponse(g *game.Game) newGameRes {
	b := g.Board()
	return newGameRes{GameID: g.ID, Mode: g.Mode, Result: g.Target.Result, Rows: b.Rows, Cols: b.Cols}
}

// handleNewGame creates a new in-memory game and its DB owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	target := challenge.Random()
	if req.Formula != "" {
		t, err := challenge.Parse(req.Formula)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_formula")
			return
		}
		if req.Result != nil && *req.Result != t.Result {
			writeError(w, http.StatusBadRequest, "result_mismatch")
			return
		}
		target = t
	}

	g, err := game.New(target, s.gameConfig(target), game.ModeFree)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.startGame(r.Context(), g, s.ownerOf(w, r)); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Debug().Str("gameId", g.ID).Int("result", target.Result).Msg("game started")
	_ = json.NewEncoder(w).Encode(newGameResponse(g))
}

// ------------------------------ read ---------------------------------------

// gameView is the GET /game/{id} payload. The formula is revealed once the
// game has ended.
type gameView struct {
	GameID  string     `json:"gameId"`
	Mode    game.Mode  `json:"mode"`
	Result  int        `json:"result"`
	Formula string     `json:"formula,omitempty"`
	Board   game.Board `json:"board"`
}

func viewOf(g *game.Game) gameView {
	b := g.Board()
	v := gameView{GameID: g.ID, Mode: g.Mode, Result: g.Target.Result, Board: b}
	if b.Status.Terminal() {
		v.Formula = g.Target.Formula
	}
	return v
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(g))
}

// ------------------------------ input --------------------------------------

type inputReq struct {
	Token string `json:"token"`
}
type inputRes struct {
	Accepted bool        `json:"accepted"`
	Event    *game.Event `json:"event,omitempty"` // absent when the token was filtered out
	Board    game.Board  `json:"board"`
}

// handleInput forwards one key token through the game's controller.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ev, forwarded := g.Submit(req.Token)
	res := inputRes{Board: g.Board()}
	if forwarded {
		res.Accepted = ev.Accepted
		res.Event = &ev
	}
	_ = json.NewEncoder(w).Encode(res)
}

// ------------------------------ guess --------------------------------------

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Event game.Event `json:"event"`
	Board game.Board `json:"board"`
}

// handleGuess replaces the in-progress row with guess and submits it.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Guess == "" {
		writeError(w, http.StatusBadRequest, "empty_guess")
		return
	}
	g, ok := s.lookup(w, r, req.GameID)
	if !ok {
		return
	}
	ev := g.SubmitGuess(req.Guess)
	_ = json.NewEncoder(w).Encode(guessRes{Event: ev, Board: g.Board()})
}

// ------------------------------ websocket ----------------------------------

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.lookup(w, r, id); !ok {
		return
	}
	s.hub.ServeWS(w, r, id)
}

// wsInput routes a token received over a websocket to its game.
func (s *Server) wsInput(gameID, token string) {
	g, err := s.store.Get(context.Background(), gameID)
	if err != nil {
		return
	}
	g.Submit(token)
}

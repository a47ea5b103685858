// internal/game/game.go
//
// A single play session: one target, one engine, one controller.
// Responsibilities:
//   - Give every game an explicit identity instead of process-wide flags.
//   - Serialize access to the engine (HTTP handlers and websocket readers
//     may touch the same game concurrently).
//   - Route every token through the Controller, whatever its source.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Mode distinguishes free play from the daily challenge.
type Mode string

const (
	ModeFree  Mode = "free"
	ModeDaily Mode = "daily"
)

// Game holds the state of a single Nerdle session.
type Game struct {
	ID        string    // Unique game identifier (random hex string).
	Mode      Mode      // free | daily
	Target    Target    // Never mutated.
	CreatedAt time.Time // Start of play, used for daily elapsed time.

	mu     sync.Mutex
	engine *Engine
	input  *Controller
}

// New constructs a game for target using the standard evaluator.
func New(target Target, cfg Config, mode Mode) (*Game, error) {
	eng, err := NewEngine(cfg, target, NewEvaluator(target))
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ModeFree
	}
	return &Game{
		ID:        randomID(),
		Mode:      mode,
		Target:    target,
		CreatedAt: time.Now().UTC(),
		engine:    eng,
		input:     NewController(eng),
	}, nil
}

// Submit passes token through the controller. ok is false when the token
// was outside the accepted set and never reached the engine.
func (g *Game) Submit(token string) (ev Event, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.input.Submit(token)
}

// SubmitGuess clears the in-progress row, types guess and presses Enter.
// The returned event is the one produced by Enter.
func (g *Game) SubmitGuess(guess string) Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.engine.Cursor().Col > 0 && !g.engine.Status().Terminal() {
		g.input.Submit(TokenDelete)
	}
	for _, r := range guess {
		g.input.Submit(string(r))
	}
	ev, _ := g.input.Submit(TokenEnter)
	return ev
}

// Board returns a snapshot of the grid.
func (g *Game) Board() Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.Board()
}

// Status returns the current status.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.Status()
}

// Subscribe registers fn for every engine event. fn runs while the game
// is locked and must not call back into the game.
func (g *Game) Subscribe(fn func(Event)) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.engine.Subscribe(fn)
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		c()
	}
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

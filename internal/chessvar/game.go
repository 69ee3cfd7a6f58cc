// Package chessvar implements the capture-all chess variant: per-piece move
// geometry, an 8x8 board and the game state machine that ends the game once a
// color has no pieces left. Check, castling, en passant, promotion and
// stalemate do not exist in this variant.
package chessvar

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Validation selects how RequestMove checks a move before applying it.
type Validation uint8

const (
	// ValidationStrict runs IsValidMove plus the move path rules before mutating.
	ValidationStrict Validation = iota
	// ValidationNone relocates whatever is on the start square without any checks.
	ValidationNone
)

var ErrInvalidValidation = errors.New("invalid validation mode")

func (v Validation) String() string {
	if v == ValidationNone {
		return "none"
	}
	return "strict"
}

// ParseValidation accepts "strict" and "none" (alias "legacy").
func ParseValidation(s string) (Validation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ValidationStrict, nil
	case "none", "legacy":
		return ValidationNone, nil
	default:
		return ValidationStrict, fmt.Errorf("%w: %q", ErrInvalidValidation, s)
	}
}

// Game owns one board, the side to move and the outcome. All methods are safe
// for concurrent use; each call runs under the game's mutex.
type Game struct {
	mu         sync.Mutex
	board      Board
	current    Color
	state      State
	validation Validation
	moves      int
}

type Option func(*Game)

// WithValidation sets the validation mode. The default is ValidationStrict.
func WithValidation(v Validation) Option {
	return func(g *Game) { g.validation = v }
}

// WithBoard starts the game from a copy of b instead of an empty grid.
func WithBoard(b *Board) Option {
	return func(g *Game) {
		if b != nil {
			g.board = *b
		}
	}
}

// WithTurn sets the side to move, used when resuming a stored game.
func WithTurn(c Color) Option {
	return func(g *Game) { g.current = c }
}

// WithMoveCount seeds the applied-move counter of a resumed game.
func WithMoveCount(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.moves = n
		}
	}
}

// NewGame returns an unfinished game with white to move. Without WithBoard the
// board is empty.
func NewGame(opts ...Option) *Game {
	g := &Game{current: White, state: Unfinished}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GameState returns the current outcome.
func (g *Game) GameState() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CurrentPlayer returns the side to move.
func (g *Game) CurrentPlayer() Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Validation returns the configured validation mode.
func (g *Game) Validation() Validation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.validation
}

// Board returns a copy of the grid.
func (g *Game) Board() Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board
}

// Placement returns the grid in FEN placement form.
func (g *Game) Placement() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Placement()
}

// PieceCount returns the number of pieces color c has on the board.
func (g *Game) PieceCount(c Color) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Count(c)
}

// MoveCount returns how many moves have been applied.
func (g *Game) MoveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// RequestMove moves the piece on startSquare to endSquare for the side to move.
// It returns false with a nil error when the game is over or the move is
// rejected, and ErrInvalidSquare when a token is malformed. Rejected calls
// leave the board and the turn untouched.
func (g *Game) RequestMove(startSquare, endSquare string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Unfinished {
		return false, nil
	}

	from, err := ParseSquare(startSquare)
	if err != nil {
		return false, err
	}
	to, err := ParseSquare(endSquare)
	if err != nil {
		return false, err
	}

	if g.validation == ValidationStrict {
		if !g.isValidMove(from.Row, from.Col, to.Row, to.Col) || !g.pathAllowed(from, to) {
			return false, nil
		}
	}

	g.board.relocate(from, to)
	g.moves++

	captured := g.current.Opponent()
	g.updateGameState(captured)

	g.current = g.current.Opponent()
	return true, nil
}

// IsValidMove reports whether the side to move owns the piece on the start
// square and that piece's geometry allows the move. Destination occupancy is
// not considered.
func (g *Game) IsValidMove(startRow, startCol, endRow, endCol int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isValidMove(startRow, startCol, endRow, endCol)
}

func (g *Game) isValidMove(startRow, startCol, endRow, endCol int) bool {
	from := Square{Row: startRow, Col: startCol}
	to := Square{Row: endRow, Col: endCol}
	if !from.InBounds() || !to.InBounds() {
		return false
	}
	p, ok := g.board.At(from)
	if !ok || p.Color != g.current {
		return false
	}
	return p.ValidateMove(startRow, startCol, endRow, endCol)
}

// pathAllowed holds the rules the move path adds on top of IsValidMove: a
// piece must leave its square and may not land on its own side.
func (g *Game) pathAllowed(from, to Square) bool {
	if from == to {
		return false
	}
	if occupant, ok := g.board.At(to); ok && occupant.Color == g.current {
		return false
	}
	return true
}

// updateGameState ends the game when a color has no pieces left while the
// other still has some.
func (g *Game) updateGameState(captured Color) {
	mover := captured.Opponent()
	left := g.board.Count(captured)
	own := g.board.Count(mover)
	switch {
	case left == 0 && own > 0:
		g.state = wonBy(mover)
	case own == 0 && left > 0:
		g.state = wonBy(captured)
	default:
		g.state = Unfinished
	}
}

package pvpvar

import (
	"errors"
	"strings"
	"time"

	"github.com/park285/chessvar-bot/internal/chessvar"
)

// Side is the stored form of a color.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func sideOf(c chessvar.Color) Side {
	if c == chessvar.White {
		return White
	}
	return Black
}

// Color converts s back to an engine color. Unknown values map to white.
func (s Side) Color() chessvar.Color {
	if s == Black {
		return chessvar.Black
	}
	return chessvar.White
}

// Status represents a game lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusResigned Status = "RESIGNED"
)

// Game is the persisted state of a hosted match.
type Game struct {
	ID          string    `json:"id"`
	Placement   string    `json:"placement"`
	Moves       []string  `json:"moves"`
	Turn        Side      `json:"turn"`
	Status      Status    `json:"status"`
	Validation  string    `json:"validation"`
	WhiteID     string    `json:"white_id"`
	WhiteName   string    `json:"white_name"`
	BlackID     string    `json:"black_id"`
	BlackName   string    `json:"black_name"`
	OriginRoom  string    `json:"origin_room"`
	ResolveRoom string    `json:"resolve_room"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Winner      string    `json:"winner,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
}

// SideOf returns the side userID plays, or "" for spectators.
func (g *Game) SideOf(userID string) Side {
	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return ""
	case g.WhiteID == userID:
		return White
	case g.BlackID == userID:
		return Black
	default:
		return ""
	}
}

// NameOf returns the display name of side s.
func (g *Game) NameOf(s Side) string {
	if s == Black {
		return g.BlackName
	}
	return g.WhiteName
}

func (g *Game) opponentID(userID string) string {
	switch g.SideOf(userID) {
	case White:
		return g.BlackID
	case Black:
		return g.WhiteID
	default:
		return ""
	}
}

func (g *Game) inRoom(room string) bool {
	room = strings.TrimSpace(room)
	return room != "" && (strings.TrimSpace(g.OriginRoom) == room || strings.TrimSpace(g.ResolveRoom) == room)
}

// LastMove returns the latest move as "e2e4", or "".
func (g *Game) LastMove() string {
	if n := len(g.Moves); n > 0 {
		return g.Moves[n-1]
	}
	return ""
}

// MoveResult classifies a PlayMove attempt.
type MoveResult string

const (
	MoveApplied     MoveResult = "applied"
	MoveIllegal     MoveResult = "illegal"
	MoveNotYourTurn MoveResult = "not_your_turn"
	MoveConflict    MoveResult = "conflict"
	MoveBadSquare   MoveResult = "bad_square"
)

var (
	ErrNotInitialized      = errors.New("game manager not initialized")
	ErrInvalidParticipants = errors.New("invalid participants")
	ErrNotParticipant      = errors.New("user not in game")
	ErrGameNotInRoom       = errors.New("game not in room")
	ErrGameNotActive       = errors.New("game no longer active")
	ErrGameNotFound        = errors.New("game not found")
)

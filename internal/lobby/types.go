package lobby

import (
	"context"
	"time"

	"github.com/park285/chessvar-bot/internal/pvpvar"
)

// State is the lifecycle of a lobby code.
type State string

const (
	StateLobby  State = "LOBBY"
	StateActive State = "ACTIVE"
)

// Meta is stored as JSON under lobby:<code>.
type Meta struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`

	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	CreatorRoom string `json:"creator_room"`
	// Color is the creator's preferred side.
	Color string `json:"color,omitempty"`

	WhiteID   string `json:"white_id,omitempty"`
	WhiteName string `json:"white_name,omitempty"`
	BlackID   string `json:"black_id,omitempty"`
	BlackName string `json:"black_name,omitempty"`

	GameID string `json:"game_id,omitempty"`
}

type MakeResult struct {
	Code string
	Meta *Meta
}

type JoinResult struct {
	Started bool
	Game    *pvpvar.Game
	Meta    *Meta
}

// GameHost is the subset of the game manager a lobby needs.
type GameHost interface {
	GetActiveGameByUserInRoom(ctx context.Context, userID, room string) (*pvpvar.Game, error)
	CreateGame(ctx context.Context, originRoom, resolveRoom, challengerID, challengerName, targetID, targetName, colorChoice string) (*pvpvar.Game, error)
}

var (
	ErrInvalidArgs      = errf("invalid arguments")
	ErrLobbyGone        = errf("lobby not found or expired")
	ErrLobbyActive      = errf("lobby already started")
	ErrFull             = errf("lobby already has two participants")
	ErrAlreadyJoined    = errf("user already in lobby")
	ErrPlayerBusyInRoom = errf("player has active game in this room")
	ErrCreatorHasLobby  = errf("user already has an open lobby")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

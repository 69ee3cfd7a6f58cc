package presenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/chessvar-bot/internal/challenge"
	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/lobby"
	"github.com/park285/chessvar-bot/internal/obslog"
	"github.com/park285/chessvar-bot/internal/pvpvar"
	"go.uber.org/zap"
)

// Templates renders a catalog entry.
type Templates interface {
	Render(key string, data any) (string, error)
}

// Formatter turns game events into reply text. A missing or broken template
// falls back to a built-in English line.
type Formatter struct {
	tpl    Templates
	prefix string
}

func NewFormatter(tpl Templates, prefix string) *Formatter {
	return &Formatter{tpl: tpl, prefix: strings.TrimSpace(prefix)}
}

func (f *Formatter) Prefix() string {
	if f == nil {
		return ""
	}
	return f.prefix
}

func (f *Formatter) render(key, fallback string, data map[string]any) string {
	if f == nil || f.tpl == nil {
		return fallback
	}
	if data == nil {
		data = map[string]any{}
	}
	data["Prefix"] = f.prefix
	out, err := f.tpl.Render(key, data)
	if err != nil {
		obslog.L().Warn("msgcat_render_error", zap.String("key", key), zap.Error(err))
		return fallback
	}
	return out
}

func (f *Formatter) Help() string {
	return foldLong(f.render("help.text", "Capture every opposing piece to win. Try "+f.Prefix()+"var @user to start.", nil))
}

func (f *Formatter) Start(g *pvpvar.Game) string {
	return f.render("game.start",
		fmt.Sprintf("New game: %s (white) vs %s (black)", g.WhiteName, g.BlackName),
		map[string]any{"GameID": shortID(g.ID), "White": g.WhiteName, "Black": g.BlackName})
}

func (f *Formatter) Status(g *pvpvar.Game) string {
	white, black := 0, 0
	if e, err := pvpvar.Engine(g); err == nil {
		white, black = e.PieceCount(chessvar.White), e.PieceCount(chessvar.Black)
	}
	return f.render("game.status",
		fmt.Sprintf("%s vs %s, %s to move", g.WhiteName, g.BlackName, g.Turn.Color()),
		map[string]any{
			"White":      g.WhiteName,
			"Black":      g.BlackName,
			"Turn":       g.NameOf(g.Turn),
			"MoveNo":     len(g.Moves) + 1,
			"WhiteCount": white,
			"BlackCount": black,
		})
}

func (f *Formatter) NoGame() string {
	return f.render("game.none", "You have no active game in this room.", nil)
}

func (f *Formatter) AlreadyPlaying() string {
	return f.render("game.already", "You already have an active game in this room.", nil)
}

func (f *Formatter) MoveUsage() string {
	return f.render("move.usage", "Usage: "+f.Prefix()+"var <from> <to>", nil)
}

// Move describes the outcome of a move attempt by userID.
func (f *Formatter) Move(g *pvpvar.Game, res pvpvar.MoveResult, userID, move string) string {
	switch res {
	case pvpvar.MoveApplied:
		if g.Status == pvpvar.StatusFinished {
			return f.Finished(g)
		}
		return f.render("move.applied", fmt.Sprintf("%s: %s", g.NameOf(g.SideOf(userID)), move),
			map[string]any{"Player": g.NameOf(g.SideOf(userID)), "Move": move})
	case pvpvar.MoveNotYourTurn:
		return f.render("move.not_your_turn", "It is not your turn.", map[string]any{"Turn": g.NameOf(g.Turn)})
	case pvpvar.MoveConflict:
		return f.render("move.conflict", "The game changed meanwhile. Please retry.", nil)
	case pvpvar.MoveBadSquare:
		return f.render("move.bad_square", "Could not read that square.", nil)
	default:
		return f.render("move.illegal", move+" is not a legal move.", map[string]any{"Move": move})
	}
}

func (f *Formatter) Finished(g *pvpvar.Game) string {
	winner := g.NameOf(pvpvar.Side(g.Outcome))
	return f.render("result.finished", winner+" wins by capture.", map[string]any{"Winner": winner})
}

func (f *Formatter) Resigned(g *pvpvar.Game, resignerID string) string {
	loserSide := g.SideOf(resignerID)
	winnerSide := pvpvar.White
	if loserSide == pvpvar.White {
		winnerSide = pvpvar.Black
	}
	loser, winner := g.NameOf(loserSide), g.NameOf(winnerSide)
	return f.render("result.resigned", fmt.Sprintf("%s resigned. %s wins.", loser, winner),
		map[string]any{"Loser": loser, "Winner": winner})
}

func (f *Formatter) ChallengeUsage() string {
	return f.render("challenge.usage", "Usage: "+f.Prefix()+"var @user [white|black|random]", nil)
}

// ChallengeError maps challenge registry errors to replies.
func (f *Formatter) ChallengeError(err error, target string) string {
	switch {
	case errors.Is(err, challenge.ErrSelfChallenge):
		return f.render("challenge.self", "You cannot challenge yourself.", nil)
	case errors.Is(err, challenge.ErrAlreadyPending):
		return f.render("challenge.pending", target+" already has a pending challenge.", map[string]any{"Target": target})
	case errors.Is(err, challenge.ErrNoPendingForUser):
		return f.render("challenge.none", "You have no pending challenge.", nil)
	case errors.Is(err, challenge.ErrInvalidArgs):
		return f.ChallengeUsage()
	default:
		return f.Internal()
	}
}

// ChallengeSent asks the target to answer a pending challenge.
func (f *Formatter) ChallengeSent(ch *challenge.Challenge) string {
	return f.render("challenge.sent",
		fmt.Sprintf("%s challenges %s.", ch.ChallengerName, ch.TargetName),
		map[string]any{"Challenger": ch.ChallengerName, "Target": ch.TargetName})
}

func (f *Formatter) ChallengeDeclined(ch *challenge.Challenge) string {
	return f.render("challenge.declined",
		fmt.Sprintf("%s declined the challenge.", ch.TargetName),
		map[string]any{"Challenger": ch.ChallengerName, "Target": ch.TargetName})
}

func (f *Formatter) LobbyMade(code string) string {
	return f.render("lobby.made", "Lobby "+code+" is open.", map[string]any{"Code": code})
}

func (f *Formatter) LobbyJoined(code string) string {
	return f.render("lobby.joined", "Joined lobby "+code+".", map[string]any{"Code": code})
}

// LobbyList renders open lobbies, one per line.
func (f *Formatter) LobbyList(metas []*lobby.Meta) string {
	if len(metas) == 0 {
		return f.render("lobby.empty", "No open lobbies right now.", nil)
	}
	lines := []string{f.render("lobby.list_header", "Open lobbies:", nil)}
	for _, m := range metas {
		lines = append(lines, f.render("lobby.list_item", "- "+m.ID,
			map[string]any{"Code": m.ID, "Creator": m.CreatorName}))
	}
	return foldLong(strings.Join(lines, "\n"))
}

// LobbyError maps lobby errors to replies.
func (f *Formatter) LobbyError(err error, code string) string {
	data := map[string]any{"Code": code}
	switch {
	case errors.Is(err, lobby.ErrLobbyGone):
		return f.render("lobby.gone", "Lobby "+code+" does not exist.", data)
	case errors.Is(err, lobby.ErrFull):
		return f.render("lobby.full", "Lobby "+code+" is full.", data)
	case errors.Is(err, lobby.ErrLobbyActive), errors.Is(err, lobby.ErrAlreadyJoined):
		return f.render("lobby.active", "Lobby "+code+" already started.", data)
	case errors.Is(err, lobby.ErrPlayerBusyInRoom):
		return f.render("lobby.busy", "Finish your current game first.", nil)
	case errors.Is(err, lobby.ErrCreatorHasLobby):
		return f.render("lobby.has_lobby", "You already have an open lobby.", nil)
	default:
		return f.Internal()
	}
}

func (f *Formatter) Internal() string {
	return f.render("error.internal", "Something went wrong. Please try again later.", nil)
}

func shortID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/park285/chessvar-bot/internal/challenge"
	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/irisfast"
	"github.com/park285/chessvar-bot/internal/lobby"
	"github.com/park285/chessvar-bot/internal/obslog"
	"github.com/park285/chessvar-bot/internal/presenter"
	"github.com/park285/chessvar-bot/internal/pvpvar"
	"go.uber.org/zap"
)

type bot struct {
	prefix       string
	allowedRooms []string
	timeout      time.Duration

	games      *pvpvar.Manager
	challenges *challenge.Manager
	lobbies    *lobby.Manager
	present    *presenter.Presenter
	format     *presenter.Formatter
}

// accepts reports whether msg should be handled at all.
func (b *bot) accepts(msg *irisfast.Message) bool {
	if msg == nil || strings.TrimSpace(msg.Msg) == "" {
		return false
	}
	if len(b.allowedRooms) > 0 && !roomAllowed(b.allowedRooms, msg.Room) {
		obslog.L().Debug("ignore_room", zap.String("room", msg.Room))
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(msg.Msg), b.prefix)
}

func (b *bot) handle(msg *irisfast.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(msg.Msg), b.prefix))
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		b.reply(ctx, msg.Room, b.format.Help())
		return
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]
	switch cmd {
	case "help":
		b.reply(ctx, msg.Room, b.format.Help())
	case "var":
		b.handleVar(ctx, msg, args)
	}
}

func (b *bot) handleVar(ctx context.Context, msg *irisfast.Message, args []string) {
	user := msg.UserID()
	if user == "" {
		return
	}
	if len(args) == 0 {
		b.reply(ctx, msg.Room, b.format.Help())
		return
	}
	if strings.HasPrefix(args[0], "@") {
		b.challenge(ctx, msg, args)
		return
	}

	switch strings.ToLower(args[0]) {
	case "status":
		b.status(ctx, msg)
	case "resign":
		b.resign(ctx, msg)
	case "accept":
		b.accept(ctx, msg)
	case "decline":
		ch, err := b.challenges.Decline(user, msg.Room)
		if err != nil {
			b.reply(ctx, msg.Room, b.format.ChallengeError(err, user))
			return
		}
		b.reply(ctx, msg.Room, b.format.ChallengeDeclined(ch))
		if ch.OriginRoom != msg.Room {
			b.reply(ctx, ch.OriginRoom, b.format.ChallengeDeclined(ch))
		}
	case "make":
		color := ""
		if len(args) > 1 {
			color = args[1]
		}
		res, err := b.lobbies.Make(ctx, msg.Room, user, msg.SenderName(), color)
		if err != nil {
			b.logErr("lobby_make", err)
			b.reply(ctx, msg.Room, b.format.LobbyError(err, ""))
			return
		}
		b.reply(ctx, msg.Room, b.format.LobbyMade(res.Code))
	case "join":
		if len(args) < 2 {
			b.reply(ctx, msg.Room, b.format.LobbyError(lobby.ErrLobbyGone, ""))
			return
		}
		code := strings.ToUpper(args[1])
		res, err := b.lobbies.Join(ctx, msg.Room, code, user, msg.SenderName())
		if err != nil {
			b.logErr("lobby_join", err)
			b.reply(ctx, msg.Room, b.format.LobbyError(err, code))
			return
		}
		b.reply(ctx, msg.Room, b.format.LobbyJoined(code))
		b.showGame(ctx, res.Game, b.format.Start(res.Game))
	case "lobby":
		metas, err := b.lobbies.ListLobby(ctx)
		if err != nil {
			b.logErr("lobby_list", err)
			b.reply(ctx, msg.Room, b.format.Internal())
			return
		}
		b.reply(ctx, msg.Room, b.format.LobbyList(metas))
	default:
		b.move(ctx, msg, args)
	}
}

func (b *bot) challenge(ctx context.Context, msg *irisfast.Message, args []string) {
	user := msg.UserID()
	target := strings.TrimSpace(strings.TrimPrefix(args[0], "@"))
	if target == "" {
		b.reply(ctx, msg.Room, b.format.ChallengeUsage())
		return
	}
	for _, id := range []string{user, target} {
		if g, _ := b.games.GetActiveGameByUserInRoom(ctx, id, msg.Room); g != nil {
			b.reply(ctx, msg.Room, b.format.AlreadyPlaying())
			return
		}
	}
	color := challenge.ColorRandom
	if len(args) > 1 {
		color = challenge.ParseColorChoice(args[1])
	}
	ch, err := b.challenges.CreateChallenge(msg.Room, user, msg.SenderName(), target, target, color)
	if err != nil {
		b.reply(ctx, msg.Room, b.format.ChallengeError(err, target))
		return
	}
	if ch.Status == challenge.StatusPending {
		b.reply(ctx, msg.Room, b.format.ChallengeSent(ch))
		return
	}
	b.startChallenge(ctx, ch)
}

// accept answers the caller's pending challenge and starts the game.
func (b *bot) accept(ctx context.Context, msg *irisfast.Message) {
	user := msg.UserID()
	if g, _ := b.games.GetActiveGameByUserInRoom(ctx, user, msg.Room); g != nil {
		b.reply(ctx, msg.Room, b.format.AlreadyPlaying())
		return
	}
	ch, err := b.challenges.Accept(user, msg.Room)
	if err != nil {
		b.reply(ctx, msg.Room, b.format.ChallengeError(err, user))
		return
	}
	if name := msg.SenderName(); name != "" {
		ch.TargetName = name
	}
	b.startChallenge(ctx, ch)
}

func (b *bot) startChallenge(ctx context.Context, ch *challenge.Challenge) {
	g, err := b.games.CreateGame(ctx, ch.OriginRoom, ch.ResolveRoom, ch.ChallengerID, ch.ChallengerName, ch.TargetID, ch.TargetName, string(ch.Color))
	if err != nil {
		b.logErr("var_game_create", err)
		b.reply(ctx, ch.ResolveRoom, b.format.Internal())
		return
	}
	b.showGame(ctx, g, b.format.Start(g))
}

func (b *bot) move(ctx context.Context, msg *irisfast.Message, args []string) {
	from, to, ok := chessvar.SplitMove(strings.Join(args, " "))
	if !ok {
		b.reply(ctx, msg.Room, b.format.MoveUsage())
		return
	}
	user := msg.UserID()
	g, res, err := b.games.PlayMoveByRoom(ctx, user, msg.Room, from, to)
	if err != nil {
		b.logErr("var_move", err)
		b.reply(ctx, msg.Room, b.format.Internal())
		return
	}
	if g == nil {
		b.reply(ctx, msg.Room, b.format.NoGame())
		return
	}
	text := b.format.Move(g, res, user, from+to)
	if res != pvpvar.MoveApplied {
		b.reply(ctx, msg.Room, text)
		return
	}
	b.showGame(ctx, g, text)
}

func (b *bot) status(ctx context.Context, msg *irisfast.Message) {
	user := msg.UserID()
	g, err := b.games.GetActiveGameByUserInRoom(ctx, user, msg.Room)
	if err != nil {
		b.logErr("var_status", err)
	}
	if g == nil {
		b.reply(ctx, msg.Room, b.format.NoGame())
		return
	}
	png, err := b.games.View(ctx, g, user)
	if err != nil {
		b.logErr("var_render", err)
	}
	if err := b.present.Board(ctx, msg.Room, b.format.Status(g), png); err != nil {
		b.logErr("reply", err)
	}
}

func (b *bot) resign(ctx context.Context, msg *irisfast.Message) {
	user := msg.UserID()
	g, err := b.games.ResignByRoom(ctx, user, msg.Room)
	if err != nil && !errors.Is(err, pvpvar.ErrGameNotActive) {
		b.logErr("var_resign", err)
		b.reply(ctx, msg.Room, b.format.Internal())
		return
	}
	if g == nil {
		b.reply(ctx, msg.Room, b.format.NoGame())
		return
	}
	b.showGame(ctx, g, b.format.Resigned(g, user))
}

// showGame sends text and the white-side board to both rooms of g.
func (b *bot) showGame(ctx context.Context, g *pvpvar.Game, text string) {
	png, err := b.games.View(ctx, g, g.WhiteID)
	if err != nil {
		b.logErr("var_render", err)
	}
	if err := b.present.Broadcast(ctx, []string{g.OriginRoom, g.ResolveRoom}, text, png); err != nil {
		b.logErr("reply", err)
	}
}

func (b *bot) reply(ctx context.Context, room, text string) {
	if err := b.present.Text(ctx, room, text); err != nil {
		b.logErr("reply", err)
	}
}

func (b *bot) logErr(event string, err error) {
	obslog.L().Warn(event+"_error", zap.Error(err))
}

func roomAllowed(allowed []string, room string) bool {
	for _, r := range allowed {
		if r == room {
			return true
		}
	}
	return false
}

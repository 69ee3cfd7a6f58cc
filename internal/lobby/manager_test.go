package lobby

import (
	"context"
	"errors"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/pvpvar"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*Manager, *pvpvar.Manager) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	games, err := pvpvar.NewManager(rdb, pvpvar.WithStartPlacement(chessvar.StandardPlacement))
	if err != nil {
		t.Fatalf("pvpvar.NewManager: %v", err)
	}
	return NewManager(rdb, games), games
}

func TestMakeJoinStartsGame(t *testing.T) {
	m, games := newTestManager(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "roomA", "u1", "alice", "white")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if !strings.HasPrefix(mk.Code, "CH-") || len(mk.Code) != 9 {
		t.Fatalf("code = %q", mk.Code)
	}
	open, err := m.ListLobby(ctx)
	if err != nil || len(open) != 1 || open[0].ID != mk.Code {
		t.Fatalf("ListLobby = %+v %v", open, err)
	}

	res, err := m.Join(ctx, "roomB", strings.ToLower(mk.Code), "u2", "bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !res.Started || res.Game == nil || res.Meta.State != StateActive {
		t.Fatalf("join result = %+v", res)
	}
	if res.Game.WhiteID != "u1" || res.Game.BlackID != "u2" || res.Game.BlackName != "bob" {
		t.Fatalf("colors = %+v", res.Game)
	}

	if res.Game.OriginRoom != "roomA" || res.Game.ResolveRoom != "roomB" {
		t.Fatalf("rooms = %q/%q", res.Game.OriginRoom, res.Game.ResolveRoom)
	}

	if g, _ := games.GetActiveGameByUserInRoom(ctx, "u2", "roomB"); g == nil || g.ID != res.Game.ID {
		t.Fatalf("joiner game not indexed: %+v", g)
	}
	open, _ = m.ListLobby(ctx)
	if len(open) != 0 {
		t.Fatalf("started lobby still listed: %+v", open)
	}

	if _, err := m.Join(ctx, "roomC", mk.Code, "u3", "carol"); !errors.Is(err, ErrLobbyActive) {
		t.Fatalf("third join err = %v", err)
	}
}

type flakyHost struct {
	GameHost
	failures int
}

func (f *flakyHost) CreateGame(ctx context.Context, originRoom, resolveRoom, challengerID, challengerName, targetID, targetName, colorChoice string) (*pvpvar.Game, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("redis unavailable")
	}
	return f.GameHost.CreateGame(ctx, originRoom, resolveRoom, challengerID, challengerName, targetID, targetName, colorChoice)
}

func TestJoinRollsBackWhenGameCreationFails(t *testing.T) {
	m, games := newTestManager(t)
	host := &flakyHost{GameHost: games, failures: 1}
	m.games = host
	ctx := context.Background()

	mk, err := m.Make(ctx, "roomA", "u1", "alice", "")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Join(ctx, "roomB", mk.Code, "u2", "bob"); err == nil {
		t.Fatalf("expected join to fail")
	}
	members, err := m.rdb.SMembers(ctx, m.store.keyParticipants(mk.Code)).Result()
	if err != nil || len(members) != 1 || members[0] != "u1" {
		t.Fatalf("participants after failed join = %v %v", members, err)
	}
	if open, _ := m.ListLobby(ctx); len(open) != 1 {
		t.Fatalf("lobby should still be open: %+v", open)
	}

	res, err := m.Join(ctx, "roomB", mk.Code, "u2", "bob")
	if err != nil || !res.Started {
		t.Fatalf("retry join: %+v %v", res, err)
	}
	if open, _ := m.ListLobby(ctx); len(open) != 0 {
		t.Fatalf("started lobby still listed: %+v", open)
	}
}

func TestMakeRejections(t *testing.T) {
	m, games := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Make(ctx, "", "u1", "alice", ""); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("missing room err = %v", err)
	}
	mk, err := m.Make(ctx, "roomA", "u1", "alice", "")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Make(ctx, "roomB", "u1", "alice", ""); !errors.Is(err, ErrCreatorHasLobby) {
		t.Fatalf("second lobby err = %v", err)
	}
	if _, err := m.Join(ctx, "roomA", mk.Code, "u1", "alice"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("self join err = %v", err)
	}
	if _, err := m.Join(ctx, "roomA", "CH-NOPE00", "u2", "bob"); !errors.Is(err, ErrLobbyGone) {
		t.Fatalf("unknown code err = %v", err)
	}

	if _, err := games.CreateGame(ctx, "roomZ", "roomZ", "u9", "zed", "u8", "yan", "white"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := m.Make(ctx, "roomZ", "u9", "zed", ""); !errors.Is(err, ErrPlayerBusyInRoom) {
		t.Fatalf("busy make err = %v", err)
	}
	if _, err := m.Join(ctx, "roomZ", mk.Code, "u8", "yan"); !errors.Is(err, ErrPlayerBusyInRoom) {
		t.Fatalf("busy join err = %v", err)
	}
}

func TestCodeGenShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := codeGen()
		if err != nil {
			t.Fatalf("codeGen: %v", err)
		}
		if len(code) != 9 || code[:3] != "CH-" || strings.ToUpper(code) != code {
			t.Fatalf("code = %q", code)
		}
	}
}

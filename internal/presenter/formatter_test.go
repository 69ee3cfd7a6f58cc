package presenter

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/chessvar-bot/internal/challenge"
	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/lobby"
	"github.com/park285/chessvar-bot/internal/msgcat"
	"github.com/park285/chessvar-bot/internal/pvpvar"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return NewFormatter(cat, "!")
}

func sampleGame() *pvpvar.Game {
	return &pvpvar.Game{
		ID:         "0123456789abcdef",
		Placement:  chessvar.StandardPlacement,
		Turn:       pvpvar.Black,
		Status:     pvpvar.StatusActive,
		Validation: "strict",
		WhiteID:    "u1",
		WhiteName:  "alice",
		BlackID:    "u2",
		BlackName:  "bob",
		Moves:      []string{"e2e4"},
	}
}

func TestFormatterMoveOutcomes(t *testing.T) {
	f := newFormatter(t)
	g := sampleGame()

	if got := f.Move(g, pvpvar.MoveApplied, "u1", "e2e4"); got != "alice: e2e4" {
		t.Fatalf("applied = %q", got)
	}
	if got := f.Move(g, pvpvar.MoveNotYourTurn, "u1", "d2d4"); got != "It is bob's turn." {
		t.Fatalf("not your turn = %q", got)
	}
	if got := f.Move(g, pvpvar.MoveIllegal, "u2", "e7e4"); !strings.Contains(got, "e7e4") {
		t.Fatalf("illegal = %q", got)
	}

	g.Status, g.Outcome, g.Winner = pvpvar.StatusFinished, "white", "u1"
	if got := f.Move(g, pvpvar.MoveApplied, "u1", "e1d2"); !strings.HasPrefix(got, "alice captured every") {
		t.Fatalf("finished = %q", got)
	}
}

func TestFormatterStatusAndStart(t *testing.T) {
	f := newFormatter(t)
	g := sampleGame()
	status := f.Status(g)
	for _, want := range []string{"bob to move, move 2", "White pieces: 16 / Black pieces: 16"} {
		if !strings.Contains(status, want) {
			t.Fatalf("status missing %q:\n%s", want, status)
		}
	}
	start := f.Start(g)
	if !strings.Contains(start, "01234567") || !strings.Contains(start, "!var <from> <to>") {
		t.Fatalf("start = %q", start)
	}
	if got := f.Resigned(g, "u2"); got != "bob resigned. alice wins." {
		t.Fatalf("resigned = %q", got)
	}
}

func TestFormatterErrorsAndLobby(t *testing.T) {
	f := newFormatter(t)
	if got := f.ChallengeError(challenge.ErrSelfChallenge, "u1"); got != "You cannot challenge yourself." {
		t.Fatalf("self = %q", got)
	}
	if got := f.ChallengeError(challenge.ErrNoPendingForUser, "u1"); got != "You have no pending challenge." {
		t.Fatalf("none = %q", got)
	}
	ch := &challenge.Challenge{ChallengerName: "alice", TargetName: "bob"}
	if got := f.ChallengeSent(ch); got != "alice challenges bob.\nbob: reply !var accept or !var decline" {
		t.Fatalf("sent = %q", got)
	}
	if got := f.ChallengeDeclined(ch); got != "bob declined the challenge from alice." {
		t.Fatalf("declined = %q", got)
	}
	if got := f.LobbyError(lobby.ErrLobbyGone, "CH-ABC123"); !strings.Contains(got, "CH-ABC123") {
		t.Fatalf("gone = %q", got)
	}
	if got := f.LobbyError(errors.New("redis down"), ""); got != f.Internal() {
		t.Fatalf("unknown = %q", got)
	}
	list := f.LobbyList([]*lobby.Meta{{ID: "CH-AAAAAA", CreatorName: "alice"}})
	if list != "Open lobbies:\n- CH-AAAAAA by alice" {
		t.Fatalf("list = %q", list)
	}
	if got := f.LobbyList(nil); got != "No open lobbies right now." {
		t.Fatalf("empty list = %q", got)
	}
}

type brokenTemplates struct{}

func (brokenTemplates) Render(string, any) (string, error) { return "", errors.New("broken") }

func TestFormatterFallsBack(t *testing.T) {
	f := NewFormatter(brokenTemplates{}, "?")
	if got := f.Move(sampleGame(), pvpvar.MoveConflict, "u1", ""); got != "The game changed meanwhile. Please retry." {
		t.Fatalf("fallback = %q", got)
	}
	if got := f.MoveUsage(); got != "Usage: ?var <from> <to>" {
		t.Fatalf("usage fallback = %q", got)
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/park285/chessvar-bot/internal/chessvar"
)

func TestSessionPlaysToCapture(t *testing.T) {
	g, err := newGame("8/8/8/8/8/8/3k4/4K3", "strict", "white")
	if err != nil {
		t.Fatalf("newGame: %v", err)
	}
	var out bytes.Buffer
	in := strings.NewReader("z9 e2\ne1 e3\nboard\ne1-d2\ne2e4\n")
	if err := newSession(g, &out).run(in); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{`bad square in "z9 e2"`, "e1e3 is not allowed for WHITE", "WHITE wins"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	// the session stops at the capture, so the trailing line is never read
	if g.MoveCount() != 1 || g.GameState() != chessvar.WhiteWon {
		t.Fatalf("moves=%d state=%s", g.MoveCount(), g.GameState())
	}
}

func TestSessionQuit(t *testing.T) {
	g, err := newGame("standard", "none", "black")
	if err != nil {
		t.Fatalf("newGame: %v", err)
	}
	var out bytes.Buffer
	if err := newSession(g, &out).run(strings.NewReader("e7e4\nquit\ne2e4\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if g.MoveCount() != 1 || g.CurrentPlayer() != chessvar.White {
		t.Fatalf("moves=%d player=%s", g.MoveCount(), g.CurrentPlayer())
	}
}

func TestNewGameRejectsBadOptions(t *testing.T) {
	if _, err := newGame("nonsense", "strict", "white"); err == nil {
		t.Fatalf("expected layout error")
	}
	if _, err := newGame("empty", "loose", "white"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := newGame("empty", "strict", "green"); err == nil {
		t.Fatalf("expected side error")
	}
}

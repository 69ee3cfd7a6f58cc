package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/obslog"
	"go.uber.org/zap"
)

type session struct {
	game *chessvar.Game
	out  io.Writer
}

func newSession(g *chessvar.Game, out io.Writer) *session {
	return &session{game: g, out: out}
}

// run reads commands until quit, EOF or a finished game.
func (s *session) run(in io.Reader) error {
	s.showBoard()
	s.prompt()
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
		case "quit", "exit":
			return nil
		case "board":
			s.showBoard()
		case "help":
			fmt.Fprintln(s.out, "commands: <from> <to> (e2 e4 or e2e4), board, quit")
		default:
			s.move(line)
		}
		if s.game.GameState().Finished() {
			return nil
		}
		s.prompt()
	}
	return sc.Err()
}

func (s *session) move(line string) {
	from, to, ok := chessvar.SplitMove(line)
	if !ok {
		fmt.Fprintln(s.out, "enter a move like e2 e4")
		return
	}
	mover := s.game.CurrentPlayer()
	applied, err := s.game.RequestMove(from, to)
	switch {
	case errors.Is(err, chessvar.ErrInvalidSquare):
		fmt.Fprintf(s.out, "bad square in %q\n", line)
		return
	case err != nil:
		fmt.Fprintln(s.out, err)
		return
	case !applied:
		fmt.Fprintf(s.out, "%s%s is not allowed for %s\n", from, to, mover)
		return
	}
	obslog.L().Debug("local_move", zap.String("side", mover.String()), zap.String("from", from), zap.String("to", to))
	s.showBoard()
	if winner, done := s.game.GameState().Winner(); done {
		fmt.Fprintf(s.out, "%s wins\n", winner)
	}
}

func (s *session) showBoard() {
	b := s.game.Board()
	fmt.Fprint(s.out, b.Draw())
}

func (s *session) prompt() {
	fmt.Fprintf(s.out, "%s> ", s.game.CurrentPlayer())
}

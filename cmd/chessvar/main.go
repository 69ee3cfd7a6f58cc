// Command chessvar plays a capture-all game on one terminal, both sides
// taking turns.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/park285/chessvar-bot/internal/chessvar"
	appcfg "github.com/park285/chessvar-bot/internal/config"
	"github.com/park285/chessvar-bot/internal/obslog"
	"go.uber.org/zap"
)

var (
	layoutFlag     = flag.String("layout", "standard", "Start layout: standard, empty, or a FEN placement")
	validationFlag = flag.String("validation", "strict", "Move validation: strict or none")
	startFlag      = flag.String("start", "white", "Side to move first")
)

func main() {
	flag.Parse()
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	game, err := newGame(*layoutFlag, *validationFlag, *startFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := newSession(game, os.Stdout).run(os.Stdin); err != nil {
		obslog.L().Error("session_error", zap.Error(err))
		os.Exit(1)
	}
}

func newGame(layout, validation, start string) (*chessvar.Game, error) {
	placement, err := appcfg.ResolveLayout(layout)
	if err != nil {
		return nil, err
	}
	board, err := chessvar.ParsePlacement(placement)
	if err != nil {
		return nil, err
	}
	mode, err := chessvar.ParseValidation(validation)
	if err != nil {
		return nil, err
	}
	first, ok := chessvar.ParseColor(start)
	if !ok {
		return nil, fmt.Errorf("unknown side %q", start)
	}
	return chessvar.NewGame(chessvar.WithBoard(board), chessvar.WithValidation(mode), chessvar.WithTurn(first)), nil
}

package chessvar

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Valid reports whether c is White or Black.
func (c Color) Valid() bool { return c <= Black }

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "WHITE"
	}
	return "BLACK"
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

// Kind is the closed set of piece kinds the board can hold.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

// Valid reports whether k is one of the six piece kinds.
func (k Kind) Valid() bool { return int(k) < len(kindLetters) }

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// State is the game outcome.
type State uint8

const (
	Unfinished State = iota
	WhiteWon
	BlackWon
)

func (s State) String() string {
	switch s {
	case WhiteWon:
		return "WHITE_WON"
	case BlackWon:
		return "BLACK_WON"
	default:
		return "UNFINISHED"
	}
}

// Finished reports whether s is terminal.
func (s State) Finished() bool { return s != Unfinished }

// Winner returns the winning color of a terminal state.
func (s State) Winner() (Color, bool) {
	switch s {
	case WhiteWon:
		return White, true
	case BlackWon:
		return Black, true
	default:
		return White, false
	}
}

func wonBy(c Color) State {
	if c == White {
		return WhiteWon
	}
	return BlackWon
}

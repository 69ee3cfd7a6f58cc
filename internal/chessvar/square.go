package chessvar

import (
	"errors"
	"fmt"
	"strings"
)

// BoardSize is the fixed edge length of the grid.
const BoardSize = 8

var ErrInvalidSquare = errors.New("invalid square")

// Square is a grid coordinate. Row 0 is rank 8, row 7 is rank 1.
type Square struct {
	Row int
	Col int
}

// InBounds reports whether both coordinates are in [0,7].
func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < BoardSize && s.Col >= 0 && s.Col < BoardSize
}

// String encodes the square as a file-rank token such as "e4".
// Out-of-range squares encode as "-".
func (s Square) String() string {
	if !s.InBounds() {
		return "-"
	}
	return string([]byte{byte('a' + s.Col), byte('0' + BoardSize - s.Row)})
}

// ParseSquare decodes a two-character token: lowercase file 'a'-'h' then rank '1'-'8'.
func ParseSquare(token string) (Square, error) {
	if len(token) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, token)
	}
	file, rank := token[0], token[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, token)
	}
	return Square{Row: BoardSize - int(rank-'0'), Col: int(file - 'a')}, nil
}

// MustSquare is ParseSquare for constant tokens.
func MustSquare(token string) Square {
	sq, err := ParseSquare(token)
	if err != nil {
		panic(err)
	}
	return sq
}

// SplitMove splits user input such as "e2e4", "e2 e4" or "e2-e4" into two
// square tokens. It lowercases but does not validate the tokens.
func SplitMove(text string) (from, to string, ok bool) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	})
	switch len(fields) {
	case 1:
		if len(fields[0]) != 4 {
			return "", "", false
		}
		return fields[0][:2], fields[0][2:], true
	case 2:
		return fields[0], fields[1], true
	default:
		return "", "", false
	}
}

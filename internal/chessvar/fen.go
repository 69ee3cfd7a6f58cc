package chessvar

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// StandardPlacement is the orthodox starting array in FEN placement form.
const StandardPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// EmptyPlacement is a board with no pieces.
const EmptyPlacement = "8/8/8/8/8/8/8/8"

var ErrInvalidPlacement = errors.New("invalid board placement")

var toNKind = map[Kind]nchess.PieceType{
	Pawn:   nchess.Pawn,
	Knight: nchess.Knight,
	Bishop: nchess.Bishop,
	Rook:   nchess.Rook,
	Queen:  nchess.Queen,
	King:   nchess.King,
}

// Placement encodes the grid as a FEN piece-placement field.
func (b *Board) Placement() string {
	m := make(map[nchess.Square]nchess.Piece)
	b.each(func(sq Square, p Piece) {
		m[toNSquare(sq)] = nchess.NewPiece(toNKind[p.Kind], toNColor(p.Color))
	})
	return nchess.NewBoard(m).String()
}

// ParsePlacement decodes a FEN piece-placement field. A full FEN string is
// accepted as well; only its first field is used.
func ParsePlacement(placement string) (*Board, error) {
	field := strings.TrimSpace(placement)
	if i := strings.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPlacement)
	}
	var nb nchess.Board
	if err := nb.UnmarshalText([]byte(field)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlacement, err)
	}
	b := &Board{}
	for nsq, np := range nb.SquareMap() {
		p, ok := fromNPiece(np)
		if !ok {
			continue
		}
		b.cells[BoardSize-1-int(nsq.Rank())][int(nsq.File())] = p.Letter()
	}
	return b, nil
}

func toNSquare(sq Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.Col), nchess.Rank(BoardSize-1-sq.Row))
}

func toNColor(c Color) nchess.Color {
	if c == White {
		return nchess.White
	}
	return nchess.Black
}

func fromNPiece(np nchess.Piece) (Piece, bool) {
	if np == nchess.NoPiece {
		return Piece{}, false
	}
	color := White
	if np.Color() == nchess.Black {
		color = Black
	}
	for k, t := range toNKind {
		if t == np.Type() {
			return Piece{Color: color, Kind: k}, true
		}
	}
	return Piece{}, false
}

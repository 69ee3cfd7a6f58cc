package chessvar

import (
	"errors"
	"fmt"
)

const empty byte = 0

var ErrInvalidPiece = errors.New("invalid piece")

// Board is the 8x8 grid. Each cell is empty or holds one piece letter.
type Board struct {
	cells [BoardSize][BoardSize]byte
}

// At returns the piece on sq, if any.
func (b *Board) At(sq Square) (Piece, bool) {
	if !sq.InBounds() {
		return Piece{}, false
	}
	c := b.cells[sq.Row][sq.Col]
	if c == empty {
		return Piece{}, false
	}
	return PieceFromLetter(c)
}

// Place puts p on sq, replacing any occupant.
func (b *Board) Place(sq Square, p Piece) error {
	if !sq.InBounds() {
		return fmt.Errorf("%w: row=%d col=%d", ErrInvalidSquare, sq.Row, sq.Col)
	}
	if !p.Valid() {
		return fmt.Errorf("%w: color=%d kind=%d", ErrInvalidPiece, p.Color, p.Kind)
	}
	b.cells[sq.Row][sq.Col] = p.Letter()
	return nil
}

// Clear empties sq. Out-of-range squares are ignored.
func (b *Board) Clear(sq Square) {
	if sq.InBounds() {
		b.cells[sq.Row][sq.Col] = empty
	}
}

func (b *Board) relocate(from, to Square) {
	b.cells[to.Row][to.Col] = b.cells[from.Row][from.Col]
	b.cells[from.Row][from.Col] = empty
}

// Count returns how many pieces of color c remain.
func (b *Board) Count(c Color) int {
	n := 0
	b.each(func(_ Square, p Piece) {
		if p.Color == c {
			n++
		}
	})
	return n
}

func (b *Board) each(fn func(Square, Piece)) {
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.cells[r][c] == empty {
				continue
			}
			if p, ok := PieceFromLetter(b.cells[r][c]); ok {
				fn(Square{Row: r, Col: c}, p)
			}
		}
	}
}

// Pieces returns every occupied square.
func (b *Board) Pieces() map[Square]Piece {
	out := make(map[Square]Piece)
	b.each(func(sq Square, p Piece) { out[sq] = p })
	return out
}

// Draw returns a text diagram, rank 8 first, '.' for empty cells.
func (b *Board) Draw() string {
	buf := make([]byte, 0, (BoardSize*2+3)*(BoardSize+1))
	for r := 0; r < BoardSize; r++ {
		buf = append(buf, byte('0'+BoardSize-r), ' ')
		for c := 0; c < BoardSize; c++ {
			cell := b.cells[r][c]
			if cell == empty {
				cell = '.'
			}
			buf = append(buf, cell)
			if c < BoardSize-1 {
				buf = append(buf, ' ')
			}
		}
		buf = append(buf, '\n')
	}
	buf = append(buf, "  a b c d e f g h\n"...)
	return string(buf)
}

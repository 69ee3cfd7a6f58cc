package chessvar

// Piece is a transient color+kind value built from a cell for one validation call.
type Piece struct {
	Color Color
	Kind  Kind
}

// Valid reports whether p has a known color and kind.
func (p Piece) Valid() bool { return p.Color.Valid() && p.Kind.Valid() }

// Letter returns the board encoding: uppercase for white, lowercase for black.
// Unknown kinds encode as 0, the empty cell.
func (p Piece) Letter() byte {
	if !p.Kind.Valid() {
		return empty
	}
	l := kindLetters[p.Kind]
	if p.Color == White {
		return l - ('a' - 'A')
	}
	return l
}

// PieceFromLetter decodes a board letter. Kind matching is case-insensitive,
// color is taken from the case.
func PieceFromLetter(b byte) (Piece, bool) {
	color := Black
	lower := b
	if b >= 'A' && b <= 'Z' {
		color = White
		lower = b + ('a' - 'A')
	}
	for k, l := range kindLetters {
		if l == lower {
			return Piece{Color: color, Kind: Kind(k)}, true
		}
	}
	return Piece{}, false
}

// ValidateMove checks the geometry of a move for this piece. It never looks at
// the board: occupancy, friendly destinations and blocked paths are the game's concern.
func (p Piece) ValidateMove(startRow, startCol, endRow, endCol int) bool {
	return ValidateMove(p.Color, p.Kind, startRow, startCol, endRow, endCol)
}

// ValidateMove reports whether a piece of the given color and kind may move from
// (startRow, startCol) to (endRow, endCol) by movement geometry alone.
func ValidateMove(color Color, kind Kind, startRow, startCol, endRow, endCol int) bool {
	dr := abs(startRow - endRow)
	dc := abs(startCol - endCol)

	switch kind {
	case Pawn:
		if startCol != endCol {
			return false
		}
		forward, home := -1, 6
		if color == Black {
			forward, home = 1, 1
		}
		if endRow == startRow+forward {
			return true
		}
		return startRow == home && endRow == startRow+2*forward
	case Knight:
		return (dr == 2 && dc == 1) || (dr == 1 && dc == 2)
	case King:
		return dr <= 1 && dc <= 1
	case Queen:
		return dr == 0 || dc == 0 || dr == dc
	case Bishop, Rook:
		// unvalidated piece types pass unconditionally
		return true
	default:
		return true
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

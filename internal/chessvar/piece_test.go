package chessvar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func destinations(color Color, kind Kind, from Square) map[Square]bool {
	out := make(map[Square]bool)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if ValidateMove(color, kind, from.Row, from.Col, r, c) {
				out[Square{Row: r, Col: c}] = true
			}
		}
	}
	return out
}

func TestPawnGeometry(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		from  Square
		to    Square
		want  bool
	}{
		{"white one step", White, Square{6, 4}, Square{5, 4}, true},
		{"white two step from home", White, Square{6, 4}, Square{4, 4}, true},
		{"white stays", White, Square{6, 4}, Square{6, 4}, false},
		{"white sideways", White, Square{6, 4}, Square{6, 5}, false},
		{"white diagonal", White, Square{6, 4}, Square{5, 5}, false},
		{"white backwards", White, Square{5, 4}, Square{6, 4}, false},
		{"white two step off home", White, Square{5, 4}, Square{3, 4}, false},
		{"white three step", White, Square{6, 4}, Square{3, 4}, false},
		{"black one step", Black, Square{1, 3}, Square{2, 3}, true},
		{"black two step from home", Black, Square{1, 3}, Square{3, 3}, true},
		{"black stays", Black, Square{1, 3}, Square{1, 3}, false},
		{"black sideways", Black, Square{1, 3}, Square{1, 2}, false},
		{"black backwards", Black, Square{2, 3}, Square{1, 3}, false},
		{"black two step off home", Black, Square{2, 3}, Square{4, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateMove(tt.color, Pawn, tt.from.Row, tt.from.Col, tt.to.Row, tt.to.Col)
			if got != tt.want {
				t.Fatalf("pawn %v %v->%v = %v, want %v", tt.color, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestKnightDestinations(t *testing.T) {
	from := Square{4, 4}
	want := map[Square]bool{
		{2, 3}: true, {2, 5}: true, {6, 3}: true, {6, 5}: true,
		{3, 2}: true, {3, 6}: true, {5, 2}: true, {5, 6}: true,
	}
	for _, c := range []Color{White, Black} {
		if diff := cmp.Diff(want, destinations(c, Knight, from)); diff != "" {
			t.Fatalf("knight %v destinations mismatch (-want +got):\n%s", c, diff)
		}
	}
	if ValidateMove(White, Knight, 4, 4, 5, 5) {
		t.Fatalf("knight (4,4)->(5,5) should be illegal")
	}
}

func TestKingDestinations(t *testing.T) {
	from := Square{4, 4}
	want := make(map[Square]bool)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			want[Square{4 + dr, 4 + dc}] = true
		}
	}
	if diff := cmp.Diff(want, destinations(Black, King, from)); diff != "" {
		t.Fatalf("king destinations mismatch (-want +got):\n%s", diff)
	}
	if ValidateMove(White, King, 4, 4, 4, 6) {
		t.Fatalf("king (4,4)->(4,6) should be illegal")
	}
}

func TestQueenGeometry(t *testing.T) {
	for _, to := range []Square{{4, 7}, {7, 4}, {7, 7}, {0, 0}, {1, 7}, {4, 0}} {
		if !ValidateMove(White, Queen, 4, 4, to.Row, to.Col) {
			t.Fatalf("queen (4,4)->%v should be legal", to)
		}
	}
	for _, to := range []Square{{5, 7}, {6, 5}, {0, 3}} {
		if ValidateMove(White, Queen, 4, 4, to.Row, to.Col) {
			t.Fatalf("queen (4,4)->%v should be illegal", to)
		}
	}
}

func TestUnvalidatedKindsPass(t *testing.T) {
	for _, kind := range []Kind{Bishop, Rook} {
		got := destinations(White, kind, Square{0, 0})
		if len(got) != BoardSize*BoardSize {
			t.Fatalf("%v should accept every destination, got %d", kind, len(got))
		}
	}
}

func TestPieceLetters(t *testing.T) {
	for _, c := range []Color{White, Black} {
		for k := Pawn; k <= King; k++ {
			p := Piece{Color: c, Kind: k}
			back, ok := PieceFromLetter(p.Letter())
			if !ok || back != p {
				t.Fatalf("letter round trip %v -> %q -> %v", p, p.Letter(), back)
			}
		}
	}
	if p, _ := PieceFromLetter('Q'); p.Color != White || p.Kind != Queen {
		t.Fatalf("'Q' decoded as %v", p)
	}
	if p, _ := PieceFromLetter('n'); p.Color != Black || p.Kind != Knight {
		t.Fatalf("'n' decoded as %v", p)
	}
	if _, ok := PieceFromLetter('x'); ok {
		t.Fatalf("'x' should not decode")
	}
}

func TestPlaceRejectsUnknownPieces(t *testing.T) {
	b := &Board{}
	sq := Square{Row: 4, Col: 4}
	for _, p := range []Piece{{Color: White, Kind: 9}, {Color: Color(5), Kind: Queen}} {
		if err := b.Place(sq, p); !errors.Is(err, ErrInvalidPiece) {
			t.Fatalf("Place(%+v) err = %v, want ErrInvalidPiece", p, err)
		}
		if _, ok := b.At(sq); ok {
			t.Fatalf("Place(%+v) left a piece on the board", p)
		}
	}
	if l := (Piece{Color: Black, Kind: 9}).Letter(); l != empty {
		t.Fatalf("unknown kind letter = %q", l)
	}
	if err := b.Place(sq, Piece{Color: Black, Kind: King}); err != nil {
		t.Fatalf("Place king: %v", err)
	}
}

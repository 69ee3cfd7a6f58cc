package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/park285/chessvar-bot/internal/chessvar"
)

func TestRenderPNGDimensions(t *testing.T) {
	board, err := chessvar.ParsePlacement(chessvar.StandardPlacement)
	if err != nil {
		t.Fatalf("ParsePlacement: %v", err)
	}
	r := NewPNGRenderer()
	raw, err := r.RenderPNG(context.Background(), board, Options{
		Header:    "alice vs bob",
		Footer:    "WHITE to move",
		Highlight: &Highlight{From: chessvar.MustSquare("e2"), To: chessvar.MustSquare("e4")},
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}
}

func TestRenderPNGFlipDiffers(t *testing.T) {
	board, err := chessvar.ParsePlacement("k7/8/8/8/8/8/8/7K")
	if err != nil {
		t.Fatalf("ParsePlacement: %v", err)
	}
	r := NewPNGRenderer()
	ctx := context.Background()
	white, err := r.RenderPNG(ctx, board, Options{})
	if err != nil {
		t.Fatalf("white view: %v", err)
	}
	black, err := r.RenderPNG(ctx, board, Options{Flip: true})
	if err != nil {
		t.Fatalf("black view: %v", err)
	}
	if bytes.Equal(white, black) {
		t.Fatalf("expected flipped view to differ")
	}
}

func TestRenderPNGHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNGRenderer().RenderPNG(ctx, &chessvar.Board{}, Options{}); err == nil {
		t.Fatalf("expected context error")
	}
	if _, err := NewPNGRenderer().RenderPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected nil board error")
	}
}

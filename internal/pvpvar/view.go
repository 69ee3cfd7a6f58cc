package pvpvar

import (
	"context"
	"fmt"

	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/park285/chessvar-bot/internal/render"
)

// View renders g as PNG. viewerID picks the orientation; black players see their side at the bottom.
func (m *Manager) View(ctx context.Context, g *Game, viewerID string) ([]byte, error) {
	if m == nil || m.renderer == nil {
		return nil, ErrNotInitialized
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	board, err := chessvar.ParsePlacement(g.Placement)
	if err != nil {
		return nil, err
	}
	opts := render.Options{
		Header: fmt.Sprintf("%s (W) vs %s (B)", g.WhiteName, g.BlackName),
		Footer: footerFor(g),
		Flip:   g.SideOf(viewerID) == Black,
	}
	if hl, ok := highlightFor(g.LastMove()); ok {
		opts.Highlight = hl
	}
	return m.renderer.RenderPNG(ctx, board, opts)
}

func footerFor(g *Game) string {
	switch g.Status {
	case StatusActive:
		return fmt.Sprintf("%s to move | move %d", g.Turn.Color(), len(g.Moves)+1)
	case StatusFinished:
		return fmt.Sprintf("%s won by capture", Side(g.Outcome).Color())
	default:
		return string(g.Status)
	}
}

func highlightFor(move string) (*render.Highlight, bool) {
	from, to, ok := chessvar.SplitMove(move)
	if !ok {
		return nil, false
	}
	fs, err := chessvar.ParseSquare(from)
	if err != nil {
		return nil, false
	}
	ts, err := chessvar.ParseSquare(to)
	if err != nil {
		return nil, false
	}
	return &render.Highlight{From: fs, To: ts}, true
}

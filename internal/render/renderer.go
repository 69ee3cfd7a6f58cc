// Package render draws a chessvar board to PNG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"
	"sync"

	"github.com/park285/chessvar-bot/internal/chessvar"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	squareSize   = 64
	sideMargin   = 24
	topMargin    = 40
	bottomMargin = 24
	boardPixels  = squareSize * chessvar.BoardSize

	// Width and Height are the PNG dimensions.
	Width  = boardPixels + sideMargin*2
	Height = boardPixels + topMargin + bottomMargin
)

// Highlight marks the last move.
type Highlight struct {
	From chessvar.Square
	To   chessvar.Square
}

type Options struct {
	Header    string
	Footer    string
	Highlight *Highlight
	// Flip draws the board from black's side.
	Flip bool
}

// BoardRenderer renders boards to PNG bytes.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *chessvar.Board, opts Options) ([]byte, error)
}

type pngRenderer struct{}

func NewPNGRenderer() BoardRenderer { return &pngRenderer{} }

var (
	lightSquare    = color.RGBA{233, 207, 163, 255}
	darkSquare     = color.RGBA{187, 136, 96, 255}
	backgroundFill = color.RGBA{28, 31, 46, 255}
	highlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	labelColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
	headerColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	whiteLetter    = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	blackLetter    = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
)

func (r *pngRenderer) RenderPNG(ctx context.Context, board *chessvar.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundFill), image.Point{}, imagedraw.Src)
	origin := image.Point{X: sideMargin, Y: topMargin}

	for row := 0; row < chessvar.BoardSize; row++ {
		for col := 0; col < chessvar.BoardSize; col++ {
			clr := lightSquare
			if (row+col)%2 == 1 {
				clr = darkSquare
			}
			imagedraw.Draw(img, squareRect(origin, row, col), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}

	if h := opts.Highlight; h != nil {
		for _, sq := range []chessvar.Square{h.From, h.To} {
			if !sq.InBounds() {
				continue
			}
			row, col := screenPos(sq, opts.Flip)
			imagedraw.Draw(img, squareRect(origin, row, col), image.NewUniform(highlightFill), image.Point{}, imagedraw.Over)
		}
	}

	for sq, p := range board.Pieces() {
		disc, err := pieceImage(p, squareSize)
		if err != nil {
			return nil, err
		}
		row, col := screenPos(sq, opts.Flip)
		rect := squareRect(origin, row, col)
		imagedraw.Draw(img, rect, disc, image.Point{}, imagedraw.Over)
		letterClr := whiteLetter
		if p.Color == chessvar.Black {
			letterClr = blackLetter
		}
		drawCentered(img, rect, string(p.Letter()), letterClr)
	}

	drawCoordinates(img, origin, opts.Flip)
	if text := strings.TrimSpace(opts.Header); text != "" {
		drawCentered(img, image.Rect(0, 0, Width, topMargin), text, headerColor)
	}
	if text := strings.TrimSpace(opts.Footer); text != "" {
		drawCentered(img, image.Rect(0, Height-bottomMargin, Width, Height), text, headerColor)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func screenPos(sq chessvar.Square, flip bool) (int, int) {
	if flip {
		return chessvar.BoardSize - 1 - sq.Row, chessvar.BoardSize - 1 - sq.Col
	}
	return sq.Row, sq.Col
}

func squareRect(origin image.Point, row, col int) image.Rectangle {
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawCoordinates(img *image.RGBA, origin image.Point, flip bool) {
	for i := 0; i < chessvar.BoardSize; i++ {
		file := byte('a' + i)
		rank := byte('8' - i)
		if flip {
			file = byte('h' - i)
			rank = byte('1' + i)
		}
		x := origin.X + i*squareSize
		drawCentered(img, image.Rect(x, origin.Y+boardPixels, x+squareSize, origin.Y+boardPixels+bottomMargin/2+8), string(file), labelColor)
		y := origin.Y + i*squareSize
		drawCentered(img, image.Rect(0, y, sideMargin, y+squareSize), string(rank), labelColor)
	}
}

func drawCentered(dst imagedraw.Image, rect image.Rectangle, text string, clr color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(clr), Face: face}
	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	x := rect.Min.X + (rect.Dx()-width)/2
	baseline := rect.Min.Y + (rect.Dy()-textHeight)/2 + metrics.Ascent.Ceil()
	d.Dot = fixed.P(x, baseline)
	d.DrawString(text)
}

type pieceKey struct {
	piece chessvar.Piece
	size  int
}

var (
	pieceCache   = map[pieceKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// pieceImage rasterizes the disc behind a piece letter.
func pieceImage(p chessvar.Piece, size int) (image.Image, error) {
	key := pieceKey{piece: p, size: size}
	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(p)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}

func pieceSVG(p chessvar.Piece) string {
	fill, stroke := "#f4f1ea", "#2a2a2a"
	if p.Color == chessvar.Black {
		fill, stroke = "#2a2a2a", "#f4f1ea"
	}
	radius := 30
	switch p.Kind {
	case chessvar.Pawn:
		radius = 22
	case chessvar.Knight, chessvar.Bishop:
		radius = 26
	case chessvar.King, chessvar.Queen:
		radius = 34
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">`+
		`<circle cx="50" cy="50" r="%d" fill="%s" stroke="%s" stroke-width="5"/></svg>`, radius, fill, stroke)
}

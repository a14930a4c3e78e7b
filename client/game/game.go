package game

import (
	"context"
	"fmt"
	"image/color"

	"github.com/cbodonnell/blockfall/client/fonts"
	"github.com/cbodonnell/blockfall/client/input"
	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/scheduler"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const (
	// CellSize is the side of one board cell in pixels
	CellSize = 24
	// BoardX and BoardY locate the board on the screen
	BoardX = 40
	BoardY = 48
	// HUDX is where the status column starts
	HUDX = BoardX + board.Cols*CellSize + 40
)

var (
	backgroundColor = color.RGBA{0x10, 0x10, 0x18, 0xff}
	gridColor       = color.RGBA{0x30, 0x30, 0x40, 0xff}
	labelColor      = color.RGBA{0xa0, 0xa0, 0xb0, 0xff}
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// scheduler drives the session.
	scheduler *scheduler.Scheduler
	// devices feeds ebiten input to the scheduler's sources.
	devices *input.Devices
	// boardImage holds the painted board. Only dirty rows are repainted.
	boardImage *ebiten.Image
	// ctx is passed to the scheduler for saving and loading.
	ctx context.Context
}

type NewGameOptions struct {
	Debug     bool
	Context   context.Context
	Scheduler *scheduler.Scheduler
	Devices   *input.Devices
}

func NewGame(opts NewGameOptions) (*Game, error) {
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if opts.Devices == nil {
		return nil, fmt.Errorf("devices are required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	g := &Game{
		debug:      opts.Debug,
		scheduler:  opts.Scheduler,
		devices:    opts.Devices,
		boardImage: ebiten.NewImage(board.Cols*CellSize, board.Rows*CellSize),
		ctx:        ctx,
	}
	g.scheduler.AddSink(g)

	return g, nil
}

// Render implements display.RenderSink.
func (g *Game) Render(cache *display.Cache, bands []display.RowRange) {
	for _, band := range bands {
		for row := band.Start; row < band.End; row++ {
			for x := 0; x < board.Cols; x++ {
				g.paintCell(row, x, cache.Cell(row, x))
			}
		}
	}
	log.Trace("Repainted bands %v", bands)
}

func (g *Game) paintCell(row, x int, c blocks.Color) {
	px, py := float32(x*CellSize), float32(row*CellSize)
	if c == blocks.ColorEmpty {
		vector.DrawFilledRect(g.boardImage, px, py, CellSize, CellSize, backgroundColor, false)
		vector.StrokeRect(g.boardImage, px, py, CellSize, CellSize, 1, gridColor, false)
		return
	}
	vector.DrawFilledRect(g.boardImage, px+1, py+1, CellSize-2, CellSize-2, rgba(c), false)
}

func rgba(c blocks.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{r, g, b, 0xff}
}

func (g *Game) Update() error {
	if input.IsQuitJustPressed() {
		return ebiten.Termination
	}

	// Handle input
	g.devices.Update()

	// Advance the game
	g.scheduler.Tick(g.ctx)

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(BoardX, BoardY)
	screen.DrawImage(g.boardImage, op)

	g.drawHUD(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	status := g.scheduler.Status()

	drawText(screen, status.State.String(), fonts.LabelFont, HUDX, BoardY+14, color.White)
	drawText(screen, "SCORE", fonts.LabelFont, HUDX, BoardY+50, labelColor)
	drawText(screen, fmt.Sprintf("%d", status.Score), fonts.ScoreFont, HUDX, BoardY+74, color.White)
	drawText(screen, "HIGH", fonts.LabelFont, HUDX, BoardY+110, labelColor)
	drawText(screen, fmt.Sprintf("%d", status.HighScore), fonts.ScoreFont, HUDX, BoardY+134, color.White)
	drawText(screen, "ROWS", fonts.LabelFont, HUDX, BoardY+170, labelColor)
	drawText(screen, fmt.Sprintf("%d", status.RowsCleared), fonts.ScoreFont, HUDX, BoardY+194, color.White)
	drawText(screen, "NEXT", fonts.LabelFont, HUDX, BoardY+230, labelColor)

	if status.State == scheduler.StateIdle {
		return
	}
	next := status.Next
	pattern := next.Pattern()
	height, width := next.Height(), next.Width()
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if pattern[r]&(1<<c) == 0 {
				continue
			}
			// bit 0 of a pattern row is its rightmost cell
			px := float32(HUDX + (width-1-c)*CellSize)
			py := float32(BoardY + 244 + r*CellSize)
			vector.DrawFilledRect(screen, px+1, py+1, CellSize-2, CellSize-2, rgba(next.Color()), false)
		}
	}
}

func drawText(screen *ebiten.Image, t string, f font.Face, x, y float64, c color.Color) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.DrawWithOptions(screen, t, f, op)
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   State: %s", g.scheduler.State()))
}

const (
	DefaultScreenWidth  = 480
	DefaultScreenHeight = 480
)

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return DefaultScreenWidth, DefaultScreenHeight
}

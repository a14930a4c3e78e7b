package terminal

import (
	"fmt"
	"sync/atomic"

	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/input"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"github.com/cbodonnell/blockfall/pkg/scheduler"
	"github.com/gdamore/tcell/v2"
)

const (
	// CellWidth is how many terminal columns one board cell takes
	CellWidth = 2
	// OriginX and OriginY locate the top-left cell, inside the border
	OriginX = 1
	OriginY = 1
	// StatusX is the first terminal column of the status panel
	StatusX = OriginX + board.Cols*CellWidth + 3
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// CellStyle is the style a board cell of color c is drawn with.
func CellStyle(c blocks.Color) tcell.Style {
	r, g, b := c.RGB()
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

// Terminal draws the game on a tcell screen and turns key events into actions.
type Terminal struct {
	screen tcell.Screen
	keys   *input.Keys
	redraw atomic.Bool
}

// New wraps an initialized screen. keys may be nil for a viewer.
func New(screen tcell.Screen, keys *input.Keys) *Terminal {
	t := &Terminal{
		screen: screen,
		keys:   keys,
	}
	t.drawBorder()
	return t
}

func (t *Terminal) drawBorder() {
	right := OriginX + board.Cols*CellWidth
	bottom := OriginY + board.Rows
	for y := OriginY; y < bottom; y++ {
		t.screen.SetContent(OriginX-1, y, tcell.RuneVLine, nil, borderStyle)
		t.screen.SetContent(right, y, tcell.RuneVLine, nil, borderStyle)
	}
	for x := OriginX; x < right; x++ {
		t.screen.SetContent(x, OriginY-1, tcell.RuneHLine, nil, borderStyle)
		t.screen.SetContent(x, bottom, tcell.RuneHLine, nil, borderStyle)
	}
	t.screen.SetContent(OriginX-1, OriginY-1, tcell.RuneULCorner, nil, borderStyle)
	t.screen.SetContent(right, OriginY-1, tcell.RuneURCorner, nil, borderStyle)
	t.screen.SetContent(OriginX-1, bottom, tcell.RuneLLCorner, nil, borderStyle)
	t.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, borderStyle)
}

func (t *Terminal) drawCell(row, x int, c blocks.Color) {
	style := CellStyle(c)
	for i := 0; i < CellWidth; i++ {
		t.screen.SetContent(OriginX+x*CellWidth+i, OriginY+row, ' ', nil, style)
	}
}

// Render implements display.RenderSink.
func (t *Terminal) Render(cache *display.Cache, bands []display.RowRange) {
	for _, band := range bands {
		for row := band.Start; row < band.End; row++ {
			for x := 0; x < board.Cols; x++ {
				t.drawCell(row, x, cache.Cell(row, x))
			}
		}
	}
	t.screen.Show()
}

// RenderFrame draws a frame received from a render stream.
func (t *Terminal) RenderFrame(frame *messages.Frame) {
	for _, fr := range frame.Rows {
		if fr.Row < 0 || fr.Row >= board.Rows {
			continue
		}
		for x, c := range fr.Cells {
			t.drawCell(fr.Row, x, blocks.Color(c))
		}
	}
	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, s string) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, textStyle)
		x++
	}
}

// StatusChanged implements scheduler.StatusListener.
func (t *Terminal) StatusChanged(status scheduler.Status) {
	t.DrawStatus(status)
}

// DrawStatus draws the scoreboard and the next piece beside the board.
func (t *Terminal) DrawStatus(status scheduler.Status) {
	t.drawScores(status.State.String(), status.Score, status.HighScore, status.RowsCleared)

	// a 4x4 preview box under the scores
	for r := 0; r < blocks.MaxHeight; r++ {
		for x := 0; x < blocks.MaxHeight; x++ {
			t.drawPreviewCell(r, x, blocks.ColorEmpty)
		}
	}
	next := status.Next
	pattern := next.Pattern()
	for r := 0; r < next.Height(); r++ {
		for c := 0; c < next.Width(); c++ {
			if pattern[r]&(1<<c) != 0 {
				t.drawPreviewCell(r, next.Width()-1-c, next.Color())
			}
		}
	}
	t.screen.Show()
}

// DrawRemoteStatus draws a status received from a render stream.
func (t *Terminal) DrawRemoteStatus(status *messages.Status) {
	t.drawScores(status.State, status.Score, status.HighScore, status.RowsCleared)
	t.screen.Show()
}

func (t *Terminal) drawScores(state string, score, high, rows uint32) {
	t.drawText(StatusX, OriginY, fmt.Sprintf("%-10s", state))
	t.drawText(StatusX, OriginY+2, fmt.Sprintf("SCORE %6d", score))
	t.drawText(StatusX, OriginY+3, fmt.Sprintf("HIGH  %6d", high))
	t.drawText(StatusX, OriginY+4, fmt.Sprintf("ROWS  %6d", rows))
	t.drawText(StatusX, OriginY+6, "NEXT")
}

func (t *Terminal) drawPreviewCell(r, x int, c blocks.Color) {
	style := CellStyle(c)
	for i := 0; i < CellWidth; i++ {
		t.screen.SetContent(StatusX+x*CellWidth+i, OriginY+7+r, ' ', nil, style)
	}
}

// HandleEvent turns a screen event into an action on the key source. It
// returns false when the player asked to quit or the screen was finalized.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case nil:
		return false
	case *tcell.EventResize:
		t.screen.Sync()
		t.screen.Clear()
		t.drawBorder()
		t.redraw.Store(true)
	case *tcell.EventKey:
		if t.keys == nil {
			return ev.Key() != tcell.KeyEscape && ev.Key() != tcell.KeyCtrlC
		}
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			t.keys.PushAction(input.ActionLeft)
		case tcell.KeyRight:
			t.keys.PushAction(input.ActionRight)
		case tcell.KeyUp:
			t.keys.PushAction(input.ActionRotate)
		case tcell.KeyDown:
			t.keys.PushAction(input.ActionDrop)
		case tcell.KeyRune:
			t.keys.PushRune(ev.Rune())
		}
	}
	return true
}

// PollEvents handles screen events until HandleEvent returns false, then
// calls quit. It blocks, so run it on its own goroutine.
func (t *Terminal) PollEvents(quit func()) {
	for t.HandleEvent(t.screen.PollEvent()) {
	}
	quit()
}

// TakeRedraw reports whether the screen was resized since the last call, in
// which case the whole board has to be drawn again.
func (t *Terminal) TakeRedraw() bool {
	return t.redraw.Swap(false)
}

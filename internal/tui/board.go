package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yourusername/gomoku3d/internal/config"
	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/resolver"
)

// Board layout: a 4-column margin for row numbers, 2 columns per
// intersection and one header line for column letters.
const (
	marginLeft = 4
	marginTop  = 1
)

// BoardView is a tview primitive showing one game. Mouse clicks are mapped
// to intersections through a top-down orthographic camera.
type BoardView struct {
	*tview.Box
	app      *tview.Application
	engine   *engine.Engine
	resolver resolver.Resolver
	camera   resolver.Camera
	cfg      *config.Config
	hint     *tview.TextView
	model    *model
	styles   []tcell.Color
	selX     int
	selY     int
	down     resolver.Point
	replay   *engine.ReplayTask
	unsub    func()
}

// NewBoardView creates a view of e. Call Attach before running the
// application and Detach afterwards.
func NewBoardView(app *tview.Application, e *engine.Engine, cfg *config.Config) *BoardView {
	n := e.BoardSize()
	b := &BoardView{
		Box:      tview.NewBox(),
		app:      app,
		engine:   e,
		resolver: resolver.New(n),
		camera:   resolver.TopDownOrtho(n),
		cfg:      cfg,
		hint:     tview.NewTextView(),
		model:    newModel(e.Snapshot()),
		selX:     n / 2,
		selY:     n / 2,
	}
	b.styles = []tcell.Color{
		tcell.PaletteColor(cfg.Theme.Colors.BoardColor),        // 0
		tcell.PaletteColor(cfg.Theme.Colors.BlackColor),        // 1
		tcell.PaletteColor(cfg.Theme.Colors.WhiteColor),        // 2
		tcell.PaletteColor(cfg.Theme.Colors.LineColor),         // 3
		tcell.PaletteColor(cfg.Theme.Colors.CursorColorBG),     // 4
		tcell.PaletteColor(cfg.Theme.Colors.LastPlayedColorBG), // 5
		tcell.PaletteColor(cfg.Theme.Colors.WinLineColorBG),    // 6
	}
	b.hint.SetBorder(true)
	b.hint.SetTitle(" Status ")
	b.hint.SetTitleAlign(tview.AlignLeft)
	b.refreshHint()
	return b
}

// Layout returns the board with its status panel below it.
func (b *BoardView) Layout() tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b, 0, 1, true).
		AddItem(b.hint, 5, 0, false)
}

// Attach subscribes the view to engine events.
func (b *BoardView) Attach() {
	b.unsub = b.engine.Subscribe(engine.SinkFunc(b.notify))
}

// Detach stops following the engine and cancels a running replay.
func (b *BoardView) Detach() {
	if b.replay != nil {
		b.replay.Cancel()
	}
	if b.unsub != nil {
		b.unsub()
	}
}

// notify runs on whichever goroutine mutated the engine, which may be the
// tview event loop itself, so the redraw is queued from a new goroutine.
func (b *BoardView) notify(ev engine.Event) {
	b.model.apply(ev, b.engine.Snapshot)
	if b.app == nil {
		return
	}
	go b.app.QueueUpdateDraw(b.refreshHint)
}

func (b *BoardView) refreshHint() {
	text := b.model.statusText() + "\n  ←↑↓→/hjkl move  ⏎ play  u undo  r reset  p replay  q quit"
	b.hint.SetText(text)
}

// Draw draws the board.
func (b *BoardView) Draw(screen tcell.Screen) {
	b.Box.DrawForSubclass(screen, b)
	x, y, _, _ := b.GetInnerRect()

	b.model.mu.Lock()
	defer b.model.mu.Unlock()

	side := b.model.side()
	lineStyle := tcell.StyleDefault.Background(b.styles[0]).Foreground(b.styles[3])

	for col := 0; col < side; col++ {
		screen.SetContent(x+marginLeft+col*2, y, rune('a'+col), nil, tcell.StyleDefault)
	}
	for row := 0; row < side; row++ {
		label := fmt.Sprintf("%3d", row+1)
		for i, r := range label {
			screen.SetContent(x+i, y+marginTop+row, r, nil, tcell.StyleDefault)
		}

		for col := 0; col < side; col++ {
			c := engine.Cell{Col: col, Row: row}
			style := lineStyle
			r := gridRune(col, row, side)
			switch b.model.cell(col, row) {
			case engine.Black:
				r = b.cfg.Theme.Symbols.BlackStone
				style = style.Foreground(b.styles[1])
			case engine.White:
				r = b.cfg.Theme.Symbols.WhiteStone
				style = style.Foreground(b.styles[2])
			}

			switch {
			case col == b.selX && row == b.selY:
				style = style.Background(b.styles[4])
			case b.model.winLine[c]:
				style = style.Background(b.styles[6])
			case b.model.hasLast && b.model.last == c:
				style = style.Background(b.styles[5])
			}

			px := x + marginLeft + col*2
			py := y + marginTop + row
			screen.SetContent(px, py, r, nil, style)
			connector := '─'
			if col == side-1 {
				connector = ' '
			}
			screen.SetContent(px+1, py, connector, nil, lineStyle)
		}
	}
}

// gridRune returns the box-drawing character for an empty intersection.
func gridRune(x, y, side int) rune {
	isTop := y == 0
	isBottom := y == side-1
	isLeft := x == 0
	isRight := x == side-1

	switch {
	case isTop && isLeft:
		return '┌'
	case isTop && isRight:
		return '┐'
	case isBottom && isLeft:
		return '└'
	case isBottom && isRight:
		return '┘'
	case isTop:
		return '┬'
	case isBottom:
		return '┴'
	case isLeft:
		return '├'
	case isRight:
		return '┤'
	default:
		return '┼'
	}
}

// MoveSelection moves the cursor, staying on the board.
func (b *BoardView) MoveSelection(h, v int) {
	side := b.engine.BoardSize() + 1
	if b.selX+h >= 0 && b.selX+h < side {
		b.selX += h
	}
	if b.selY+v >= 0 && b.selY+v < side {
		b.selY += v
	}
}

// Play places a stone at the cursor.
func (b *BoardView) Play() engine.MoveResult {
	return b.engine.AttemptMove(b.selX, b.selY)
}

// StartReplay replays the game with the configured delay. The replay's
// events reach the view through its subscription.
func (b *BoardView) StartReplay() error {
	task, err := b.engine.StartReplay(context.Background(), b.cfg.Game.ReplayDelay(), nil)
	if err != nil {
		return err
	}
	b.replay = task
	return nil
}

// CancelReplay stops a running replay and reports whether there was one.
func (b *BoardView) CancelReplay() bool {
	return b.engine.CancelReplay()
}

// Reset cancels a running replay, or clears the board when none runs.
func (b *BoardView) Reset() {
	if b.CancelReplay() {
		return
	}
	b.engine.Reset()
}

// screenToViewport maps a terminal position to the resolver's viewport, in
// which every intersection is a 2x2 square.
func (b *BoardView) screenToViewport(sx, sy int) (resolver.Point, resolver.Viewport) {
	x, y, _, _ := b.GetInnerRect()
	side := float64(b.engine.BoardSize() + 1)
	p := resolver.Point{
		X: float64(sx-x-marginLeft) + 0.5,
		Y: (float64(sy-y-marginTop) + 0.5) * 2,
	}
	return p, resolver.Viewport{Width: side * 2, Height: side * 2}
}

// CellAt resolves a click released at a terminal position after a press at
// (downX, downY).
func (b *BoardView) CellAt(downX, downY, upX, upY int) (engine.Cell, bool) {
	down, vp := b.screenToViewport(downX, downY)
	up, _ := b.screenToViewport(upX, upY)
	cell, ok, isClick := b.resolver.ResolveClick(down, up, vp, b.camera)
	return cell, ok && isClick
}

// MouseHandler places a stone where the board is clicked.
func (b *BoardView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return b.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		mx, my := event.Position()
		if !b.InRect(mx, my) {
			return false, nil
		}
		switch action {
		case tview.MouseLeftDown:
			setFocus(b)
			b.down = resolver.Point{X: float64(mx), Y: float64(my)}
			return true, b
		case tview.MouseLeftUp:
			cell, ok := b.CellAt(int(b.down.X), int(b.down.Y), mx, my)
			if ok {
				b.selX, b.selY = cell.Col, cell.Row
				b.Play()
			}
			return true, nil
		}
		return false, nil
	})
}

// InputHandler handles the keyboard.
func (b *BoardView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return b.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyUp:
			b.MoveSelection(0, -1)
		case tcell.KeyDown:
			b.MoveSelection(0, 1)
		case tcell.KeyLeft:
			b.MoveSelection(-1, 0)
		case tcell.KeyRight:
			b.MoveSelection(1, 0)
		case tcell.KeyEnter:
			b.Play()
		case tcell.KeyEscape:
			b.CancelReplay()
		case tcell.KeyRune:
			switch event.Rune() {
			case 'h':
				b.MoveSelection(-1, 0)
			case 'j':
				b.MoveSelection(0, 1)
			case 'k':
				b.MoveSelection(0, -1)
			case 'l':
				b.MoveSelection(1, 0)
			case ' ':
				b.Play()
			case 'u':
				b.engine.Undo()
			case 'r':
				b.Reset()
			case 'p':
				b.StartReplay()
			case 'q':
				if b.app != nil {
					b.app.Stop()
				}
			}
		}
	})
}

package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultOptions())
	require.NoError(t, err)
	return e
}

// play places stones alternately starting with the current player and fails
// the test if any placement is rejected.
func play(t *testing.T, e *Engine, cells ...Cell) MoveResult {
	t.Helper()
	var res MoveResult
	for _, c := range cells {
		res = e.AttemptMove(c.Col, c.Row)
		require.Truef(t, res.Accepted, "move %v rejected: %v", c, res.Reason)
	}
	return res
}

// recorder collects engine events.
type recorder struct {
	events []Event
}

func (r *recorder) Notify(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func TestNewEngineDefaults(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 14, e.BoardSize())
	assert.Equal(t, 5, e.WinLength())
	assert.Equal(t, Black, e.CurrentPlayer())
	assert.Equal(t, InProgress, e.Phase())
	assert.Equal(t, Scores{}, e.Scores())

	snap := e.Snapshot()
	assert.Equal(t, 15, snap.Board.Side())
	assert.Zero(t, snap.Board.Count())
}

func TestNewEngineInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative size", Options{BoardSize: -1}},
		{"too large", Options{BoardSize: MaxBoardSize + 1}},
		{"win length one", Options{BoardSize: 14, WinLength: 1}},
		{"win length longer than side", Options{BoardSize: 4, WinLength: 6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine(tc.opts)
			assert.Error(t, err)
		})
	}
}

func TestAttemptMovePlacesAndSwaps(t *testing.T) {
	e := newTestEngine(t)

	res := e.AttemptMove(7, 7)
	require.True(t, res.Accepted)
	assert.False(t, res.Won)
	assert.NoError(t, res.Reason)
	assert.Equal(t, Move{Col: 7, Row: 7, Color: Black, Seq: 1}, res.Move)

	snap := e.Snapshot()
	assert.Equal(t, Black, snap.Board.At(7, 7))
	assert.Equal(t, 1, snap.Board.Count())
	assert.Equal(t, White, snap.CurrentPlayer)
	assert.Len(t, snap.History, 1)

	res = e.AttemptMove(8, 7)
	require.True(t, res.Accepted)
	assert.Equal(t, White, res.Move.Color)
	assert.Equal(t, 2, res.Move.Seq)
	assert.Equal(t, Black, e.CurrentPlayer())
}

func TestAttemptMoveRejectionsLeaveStateUnchanged(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{3, 3}, Cell{4, 4})
	before := e.Snapshot()

	tests := []struct {
		name     string
		col, row int
		want     error
	}{
		{"occupied by black", 3, 3, ErrOccupied},
		{"occupied by white", 4, 4, ErrOccupied},
		{"negative col", -1, 0, ErrOutOfBounds},
		{"negative row", 0, -1, ErrOutOfBounds},
		{"col past edge", 15, 0, ErrOutOfBounds},
		{"row past edge", 0, 15, ErrOutOfBounds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := e.AttemptMove(tc.col, tc.row)
			assert.False(t, res.Accepted)
			assert.ErrorIs(t, res.Reason, tc.want)
			assert.Equal(t, before, e.Snapshot())
		})
	}
}

func TestEdgeCellsAreValid(t *testing.T) {
	e := newTestEngine(t)
	for _, c := range []Cell{{0, 0}, {14, 0}, {0, 14}, {14, 14}} {
		res := e.AttemptMove(c.Col, c.Row)
		assert.Truef(t, res.Accepted, "edge cell %v rejected: %v", c, res.Reason)
	}
}

func TestHorizontalWinOnFifthStone(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 4; i++ {
		res := e.AttemptMove(i, 0) // black
		require.True(t, res.Accepted)
		require.False(t, res.Won, "won early after %d black stones", i+1)
		play(t, e, Cell{i, 5}) // white elsewhere
	}

	res := e.AttemptMove(4, 0)
	require.True(t, res.Accepted)
	assert.True(t, res.Won)
	assert.Equal(t, Black, res.Winner)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}, res.Line)

	snap := e.Snapshot()
	assert.Equal(t, Won, snap.Phase)
	assert.Equal(t, Black, snap.Winner)
	assert.Equal(t, Black, snap.CurrentPlayer, "winner keeps the turn")
	assert.Equal(t, Scores{Black: 1}, snap.Scores)
}

func TestWinOnEveryAxis(t *testing.T) {
	tests := []struct {
		name  string
		black []Cell
	}{
		{"vertical", []Cell{{2, 3}, {2, 4}, {2, 5}, {2, 6}, {2, 7}}},
		{"diagonal down-right", []Cell{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}},
		{"diagonal up-right", []Cell{{3, 9}, {4, 8}, {5, 7}, {6, 6}, {7, 5}}},
		{"filled from the middle", []Cell{{5, 10}, {7, 10}, {6, 10}, {9, 10}, {8, 10}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			for i, c := range tc.black {
				res := e.AttemptMove(c.Col, c.Row)
				require.True(t, res.Accepted)
				if i < len(tc.black)-1 {
					require.False(t, res.Won)
					play(t, e, Cell{14 - i, 14}) // white on the far edge
					continue
				}
				assert.True(t, res.Won)
				assert.Equal(t, Black, res.Winner)
				assert.Len(t, res.Line, 5)
			}
		})
	}
}

func TestWhiteCanWin(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{0, 14}) // black
	for i := 0; i < 4; i++ {
		play(t, e, Cell{10, i}, Cell{i*2 + 2, 14})
	}
	res := e.AttemptMove(10, 4)
	require.True(t, res.Accepted)
	assert.True(t, res.Won)
	assert.Equal(t, White, res.Winner)
	assert.Equal(t, Scores{White: 1}, e.Scores())
}

func TestBlockedFourDoesNotWin(t *testing.T) {
	e := newTestEngine(t)
	// Black: (1..4, 7); white blocks both ends at (0,7) and (5,7).
	play(t, e,
		Cell{1, 7}, Cell{0, 7},
		Cell{2, 7}, Cell{5, 7},
		Cell{3, 7}, Cell{10, 10},
	)
	res := e.AttemptMove(4, 7)
	require.True(t, res.Accepted)
	assert.False(t, res.Won)
	assert.Equal(t, InProgress, e.Phase())
}

func TestFourAgainstEdgeDoesNotWin(t *testing.T) {
	e := newTestEngine(t)
	// Black (11..14, 0) runs into the right edge; white blocks (10, 0).
	play(t, e,
		Cell{14, 0}, Cell{10, 0},
		Cell{13, 0}, Cell{0, 10},
		Cell{12, 0}, Cell{1, 10},
	)
	res := e.AttemptMove(11, 0)
	require.True(t, res.Accepted)
	assert.False(t, res.Won)
}

func TestOverlineWins(t *testing.T) {
	e := newTestEngine(t)
	// Black builds (0..2, 3) and (4..6, 3); (3, 3) joins them into seven.
	play(t, e,
		Cell{0, 3}, Cell{0, 9},
		Cell{1, 3}, Cell{1, 9},
		Cell{2, 3}, Cell{2, 9},
		Cell{4, 3}, Cell{4, 9},
		Cell{5, 3}, Cell{5, 9},
		Cell{6, 3}, Cell{10, 12},
	)
	res := e.AttemptMove(3, 3)
	require.True(t, res.Accepted)
	assert.True(t, res.Won)
	assert.Len(t, res.Line, 7)
}

func TestDoubleLineWinScoresOnce(t *testing.T) {
	e := newTestEngine(t)
	rec := &recorder{}
	e.Subscribe(rec)

	// Black prepares four horizontally and four vertically through (7, 7).
	play(t, e,
		Cell{3, 7}, Cell{0, 0},
		Cell{4, 7}, Cell{0, 1},
		Cell{5, 7}, Cell{0, 2},
		Cell{6, 7}, Cell{0, 3},
		Cell{7, 3}, Cell{0, 5},
		Cell{7, 4}, Cell{0, 6},
		Cell{7, 5}, Cell{0, 7},
		Cell{7, 6}, Cell{0, 9},
	)
	rec.events = nil

	res := e.AttemptMove(7, 7)
	require.True(t, res.Won)
	assert.Equal(t, Scores{Black: 1}, e.Scores())

	wins := 0
	for _, ev := range rec.events {
		if ev.Type == EventWin {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestMoveAfterWinIsRejected(t *testing.T) {
	e := newTestEngine(t)
	winBlack(t, e)
	before := e.Snapshot()

	res := e.AttemptMove(10, 10)
	assert.False(t, res.Accepted)
	assert.ErrorIs(t, res.Reason, ErrGameOver)
	assert.Equal(t, before, e.Snapshot())
}

// winBlack plays a quick horizontal win for black on row 0.
func winBlack(t *testing.T, e *Engine) {
	t.Helper()
	for i := 0; i < 4; i++ {
		play(t, e, Cell{i, 0}, Cell{i, 1})
	}
	res := play(t, e, Cell{4, 0})
	require.True(t, res.Won)
}

func TestUndoRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{7, 7}, Cell{8, 8}, Cell{6, 6})
	before := e.Snapshot()

	res := e.AttemptMove(9, 9)
	require.True(t, res.Accepted)

	undo := e.Undo()
	require.True(t, undo.Accepted)
	assert.Equal(t, res.Move, undo.Move)
	assert.Equal(t, before, e.Snapshot())
}

func TestUndoRestoresMoverTurn(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{1, 1}, Cell{2, 2})
	require.Equal(t, Black, e.CurrentPlayer())

	undo := e.Undo()
	require.True(t, undo.Accepted)
	assert.Equal(t, White, e.CurrentPlayer())
	assert.Equal(t, Empty, e.Snapshot().Board.At(2, 2))
}

func TestUndoEmptyHistory(t *testing.T) {
	e := newTestEngine(t)
	res := e.Undo()
	assert.False(t, res.Accepted)
	assert.ErrorIs(t, res.Reason, ErrEmptyHistory)
}

func TestUndoWinningMoveReopensRound(t *testing.T) {
	e := newTestEngine(t)
	winBlack(t, e)
	require.Equal(t, Scores{Black: 1}, e.Scores())

	res := e.Undo()
	require.True(t, res.Accepted)

	snap := e.Snapshot()
	assert.Equal(t, InProgress, snap.Phase)
	assert.Equal(t, Empty, snap.Winner)
	assert.Nil(t, snap.WinLine)
	assert.Equal(t, Black, snap.CurrentPlayer)
	assert.Equal(t, Scores{}, snap.Scores)

	// The same stone wins again.
	again := e.AttemptMove(4, 0)
	assert.True(t, again.Won)
	assert.Equal(t, Scores{Black: 1}, e.Scores())
}

func TestResetClearsBoardKeepsScores(t *testing.T) {
	e := newTestEngine(t)
	winBlack(t, e)

	e.Reset()

	snap := e.Snapshot()
	for row := 0; row < snap.Board.Side(); row++ {
		for col := 0; col < snap.Board.Side(); col++ {
			require.Equal(t, Empty, snap.Board.At(col, row))
		}
	}
	assert.Empty(t, snap.History)
	assert.Equal(t, Black, snap.CurrentPlayer)
	assert.Equal(t, InProgress, snap.Phase)
	assert.Equal(t, Scores{Black: 1}, snap.Scores)
}

func TestClearScores(t *testing.T) {
	e := newTestEngine(t)
	winBlack(t, e)
	e.ClearScores()
	assert.Equal(t, Scores{}, e.Scores())
	assert.Equal(t, Won, e.Phase())
}

func TestDrawOnFullBoard(t *testing.T) {
	e, err := NewEngine(Options{BoardSize: 2, WinLength: 3})
	require.NoError(t, err)

	res := play(t, e,
		Cell{0, 0}, Cell{1, 0},
		Cell{2, 0}, Cell{1, 1},
		Cell{0, 1}, Cell{0, 2},
		Cell{2, 1}, Cell{2, 2},
		Cell{1, 2},
	)
	assert.True(t, res.Draw)
	assert.False(t, res.Won)
	assert.Equal(t, Draw, e.Phase())
	assert.Equal(t, Scores{}, e.Scores())

	rej := e.AttemptMove(0, 0)
	assert.ErrorIs(t, rej.Reason, ErrGameOver)

	require.True(t, e.Undo().Accepted)
	assert.Equal(t, InProgress, e.Phase())
}

func TestSubscribeEvents(t *testing.T) {
	e := newTestEngine(t)
	rec := &recorder{}
	unsubscribe := e.Subscribe(rec)

	play(t, e, Cell{7, 7})
	require.Equal(t, []EventType{EventStone, EventTurn}, rec.types())
	assert.Equal(t, Event{Type: EventStone, Col: 7, Row: 7, Color: Black, Seq: 1}, rec.events[0])
	assert.Equal(t, White, rec.events[1].Player)

	rec.events = nil
	e.AttemptMove(7, 7) // occupied: no events
	assert.Empty(t, rec.events)

	e.Undo()
	assert.Equal(t, []EventType{EventUndo, EventTurn}, rec.types())

	rec.events = nil
	e.Reset()
	assert.Equal(t, []EventType{EventReset, EventTurn}, rec.types())

	unsubscribe()
	rec.events = nil
	play(t, e, Cell{1, 1})
	assert.Empty(t, rec.events)
}

func TestWinEvents(t *testing.T) {
	e := newTestEngine(t)
	rec := &recorder{}
	e.Subscribe(rec)

	winBlack(t, e)
	n := len(rec.events)
	require.GreaterOrEqual(t, n, 4)
	assert.Equal(t, []EventType{EventStone, EventTurn, EventWin, EventScores}, rec.types()[n-4:])

	win := rec.events[n-2]
	assert.Equal(t, Black, win.Winner)
	require.NotNil(t, win.Scores)
	assert.Equal(t, 1, win.Scores.Black)
}

func TestReasonCode(t *testing.T) {
	assert.Equal(t, "", ReasonCode(nil))
	assert.Equal(t, "occupied", ReasonCode(ErrOccupied))
	assert.Equal(t, "out_of_bounds", ReasonCode(fmt.Errorf("move 3: %w", ErrOutOfBounds)))
	assert.Equal(t, "busy", ReasonCode(ErrBusy))
	assert.Equal(t, "error", ReasonCode(ErrReplayCancelled))
}

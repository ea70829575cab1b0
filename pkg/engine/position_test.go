package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardBounds(t *testing.T) {
	b := NewBoard(14)
	assert.Equal(t, 14, b.Size())
	assert.Equal(t, 15, b.Side())
	assert.True(t, b.InBounds(0, 0))
	assert.True(t, b.InBounds(14, 14))
	assert.False(t, b.InBounds(15, 0))
	assert.False(t, b.InBounds(0, -1))
	assert.Equal(t, Empty, b.At(-3, 99))
}

func TestBoardGridRoundTrip(t *testing.T) {
	b := NewBoard(3)
	b.set(0, 1, Black)
	b.set(3, 2, White)

	grid := b.Grid()
	require.Len(t, grid, 4)
	assert.Equal(t, Black, grid[1][0])
	assert.Equal(t, White, grid[2][3])

	back, err := BoardFromGrid(grid)
	require.NoError(t, err)
	assert.True(t, EqualBoards(b, back))

	// The grid is a copy.
	grid[0][0] = White
	assert.Equal(t, Empty, b.At(0, 0))
}

func TestBoardFromGridRejectsBadShapes(t *testing.T) {
	_, err := BoardFromGrid(nil)
	assert.Error(t, err)

	_, err = BoardFromGrid([][]Color{{Empty, Empty}, {Empty}})
	assert.Error(t, err)

	_, err = BoardFromGrid([][]Color{{Color(7)}})
	assert.Error(t, err)
}

func TestBoardFullAndClear(t *testing.T) {
	b := NewBoard(1)
	for _, c := range []Cell{{0, 0}, {1, 0}, {0, 1}} {
		b.set(c.Col, c.Row, Black)
	}
	assert.False(t, b.Full())
	b.set(1, 1, White)
	assert.True(t, b.Full())

	b.Clear()
	assert.Zero(t, b.Count())
}

func TestColorText(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("W")))
	assert.Equal(t, White, c)
	require.NoError(t, c.UnmarshalText([]byte("black")))
	assert.Equal(t, Black, c)
	assert.Error(t, c.UnmarshalText([]byte("red")))

	assert.Equal(t, White, Black.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}

func TestEventJSON(t *testing.T) {
	scores := Scores{Black: 2}
	data, err := json.Marshal(Event{Type: EventWin, Winner: Black, Scores: &scores})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"win","col":0,"row":0,"winner":"black","scores":{"black":2,"white":0}}`,
		string(data))

	var back Event
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, EventWin, back.Type)
	assert.Equal(t, Black, back.Winner)

	var et EventType
	assert.Error(t, et.UnmarshalText([]byte("explode")))
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{InProgress, Won, Draw} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var back Phase
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}
	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("paused")))
}

func TestSnapshotLastMove(t *testing.T) {
	e := newTestEngine(t)
	_, ok := e.Snapshot().LastMove()
	assert.False(t, ok)

	play(t, e, Cell{2, 3})
	m, ok := e.Snapshot().LastMove()
	require.True(t, ok)
	assert.Equal(t, Move{Col: 2, Row: 3, Color: Black, Seq: 1}, m)
}

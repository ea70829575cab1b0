package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(t *testing.T, n int, stones map[Cell]Color) *Board {
	t.Helper()
	b := NewBoard(n)
	for c, color := range stones {
		require.True(t, b.InBounds(c.Col, c.Row))
		b.set(c.Col, c.Row, color)
	}
	return b
}

func TestCountDirection(t *testing.T) {
	b := boardWith(t, 14, map[Cell]Color{
		{3, 3}: Black, {4, 3}: Black, {5, 3}: Black, {6, 3}: White,
	})

	assert.Equal(t, 3, CountDirection(b, 3, 3, 1, 0))
	assert.Equal(t, 1, CountDirection(b, 3, 3, -1, 0))
	assert.Equal(t, 1, CountDirection(b, 3, 3, 0, 1))
	assert.Equal(t, 0, CountDirection(b, 0, 0, 1, 0), "empty origin")
	assert.Equal(t, 1, CountDirection(b, 6, 3, 1, 0))
}

func TestCountDirectionStopsAtEdge(t *testing.T) {
	b := boardWith(t, 4, map[Cell]Color{
		{2, 0}: White, {3, 0}: White, {4, 0}: White,
	})
	assert.Equal(t, 3, CountDirection(b, 2, 0, 1, 0))
	assert.Equal(t, 1, CountDirection(b, 4, 0, 1, 1))
}

func TestCheckWinLineOrder(t *testing.T) {
	b := boardWith(t, 14, map[Cell]Color{
		{2, 6}: Black, {3, 5}: Black, {4, 4}: Black, {5, 3}: Black, {6, 2}: Black,
	})
	won, line := CheckWin(b, 4, 4, 5)
	require.True(t, won)
	assert.Equal(t, []Cell{{2, 6}, {3, 5}, {4, 4}, {5, 3}, {6, 2}}, line)
}

func TestCheckWinShortLength(t *testing.T) {
	b := boardWith(t, 14, map[Cell]Color{{1, 1}: White, {1, 2}: White, {1, 3}: White})

	won, _ := CheckWin(b, 1, 2, 3)
	assert.True(t, won)
	won, _ = CheckWin(b, 1, 2, 4)
	assert.False(t, won)
	won, _ = CheckWin(b, 9, 9, 1)
	assert.False(t, won, "empty cell never wins")
}

func TestCheckWinPrefersLongestAxis(t *testing.T) {
	b := boardWith(t, 14, map[Cell]Color{
		// five horizontally through (7, 7)
		{5, 7}: Black, {6, 7}: Black, {7, 7}: Black, {8, 7}: Black, {9, 7}: Black,
		// six vertically through (7, 7)
		{7, 2}: Black, {7, 3}: Black, {7, 4}: Black, {7, 5}: Black, {7, 6}: Black,
	})
	won, line := CheckWin(b, 7, 7, 5)
	require.True(t, won)
	assert.Len(t, line, 6)
	assert.Equal(t, Cell{7, 2}, line[0])
}

func TestLineLength(t *testing.T) {
	b := boardWith(t, 14, map[Cell]Color{{0, 0}: Black, {1, 1}: Black, {2, 2}: Black})
	assert.Equal(t, 1, LineLength(b, 1, 1, 0))
	assert.Equal(t, 3, LineLength(b, 1, 1, 2))
	assert.Equal(t, 0, LineLength(b, 5, 5, 2))
}

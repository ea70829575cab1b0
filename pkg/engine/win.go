package engine

// DefaultWinLength is the number of stones in a row needed to win.
const DefaultWinLength = 5

// axes lists the four line directions as pairs of opposite unit steps:
// horizontal, vertical and the two diagonals.
var axes = [4][2]Cell{
	{{Col: -1, Row: 0}, {Col: 1, Row: 0}},
	{{Col: 0, Row: -1}, {Col: 0, Row: 1}},
	{{Col: -1, Row: -1}, {Col: 1, Row: 1}},
	{{Col: -1, Row: 1}, {Col: 1, Row: -1}},
}

// CountDirection counts consecutive stones of the origin's color starting at
// (col, row) and stepping by (dc, dr). The origin itself counts as 1; an empty
// origin counts 0. Counting stops at the first other color or the board edge.
func CountDirection(b *Board, col, row, dc, dr int) int {
	c := b.At(col, row)
	if c == Empty {
		return 0
	}
	n := 0
	for b.InBounds(col, row) && b.At(col, row) == c {
		n++
		col += dc
		row += dr
	}
	return n
}

// LineLength returns the length of the run through (col, row) along the
// given axis index (0..3), counting the origin once.
func LineLength(b *Board, col, row, axis int) int {
	left := CountDirection(b, col, row, axes[axis][0].Col, axes[axis][0].Row)
	if left == 0 {
		return 0
	}
	right := CountDirection(b, col, row, axes[axis][1].Col, axes[axis][1].Row)
	return left + right - 1
}

// CheckWin reports whether the stone at (col, row) completes a line of at
// least winLength stones on any axis. Longer lines also win. When several
// axes qualify, the longest run is returned (first axis on ties).
func CheckWin(b *Board, col, row, winLength int) (bool, []Cell) {
	if b.At(col, row) == Empty {
		return false, nil
	}
	best, bestLen := -1, 0
	for axis := range axes {
		if n := LineLength(b, col, row, axis); n >= winLength && n > bestLen {
			best, bestLen = axis, n
		}
	}
	if best < 0 {
		return false, nil
	}
	return true, lineCells(b, col, row, best)
}

// lineCells lists the run through (col, row) along an axis, ordered from the
// first direction's far end to the second direction's far end.
func lineCells(b *Board, col, row, axis int) []Cell {
	back, fwd := axes[axis][0], axes[axis][1]
	left := CountDirection(b, col, row, back.Col, back.Row)
	right := CountDirection(b, col, row, fwd.Col, fwd.Row)

	cells := make([]Cell, 0, left+right-1)
	for i := left - 1; i > 0; i-- {
		cells = append(cells, Cell{Col: col + back.Col*i, Row: row + back.Row*i})
	}
	for i := 0; i < right; i++ {
		cells = append(cells, Cell{Col: col + fwd.Col*i, Row: row + fwd.Row*i})
	}
	return cells
}

package external

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// Coordinates are written as a column letter followed by a 1-based row
// number: "a1" is (0, 0) and "h8" is (7, 7). Letters run a..z, so every
// board up to engine.MaxBoardSize can be addressed.

// ParseCoord parses a coordinate such as "h8" for a board of size n.
func ParseCoord(s string, n int) (engine.Cell, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return engine.Cell{}, fmt.Errorf("invalid coordinate %q", s)
	}
	letter := s[0]
	if letter < 'a' || letter > 'z' {
		return engine.Cell{}, fmt.Errorf("invalid column in %q", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return engine.Cell{}, fmt.Errorf("invalid row in %q", s)
	}

	c := engine.Cell{Col: int(letter - 'a'), Row: row - 1}
	if c.Col > n || c.Row < 0 || c.Row > n {
		return c, fmt.Errorf("coordinate %q: %w", s, engine.ErrOutOfBounds)
	}
	return c, nil
}

// FormatCoord formats a cell as a coordinate such as "h8".
func FormatCoord(c engine.Cell) string {
	if c.Col < 0 || c.Col > 25 || c.Row < 0 {
		return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
	}
	return fmt.Sprintf("%c%d", 'a'+c.Col, c.Row+1)
}

// FormatLine formats a list of cells as space-separated coordinates.
func FormatLine(cells []engine.Cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = FormatCoord(c)
	}
	return strings.Join(parts, " ")
}

// FormatBoard renders a board as text, row 1 at the top:
//
//	    a b c
//	  1 X . .
//	  2 . O .
//	  3 . . .
func FormatBoard(b *engine.Board) string {
	var sb strings.Builder
	side := b.Side()

	sb.WriteString("   ")
	for col := 0; col < side; col++ {
		sb.WriteByte(' ')
		sb.WriteByte(byte('a' + col))
	}
	sb.WriteByte('\n')

	for row := 0; row < side; row++ {
		fmt.Fprintf(&sb, "%3d", row+1)
		for col := 0; col < side; col++ {
			sb.WriteByte(' ')
			sb.WriteByte(stoneChar(b.At(col, row)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stoneChar(c engine.Color) byte {
	switch c {
	case engine.Black:
		return 'X'
	case engine.White:
		return 'O'
	}
	return '.'
}

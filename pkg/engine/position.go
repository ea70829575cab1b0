// Package engine provides the rules core of the Gomoku game: board model,
// move validation, win detection, score and undo/replay history.
package engine

import "fmt"

// Color is the content of a board intersection.
type Color uint8

const (
	Empty Color = iota
	Black
	White
)

// Opponent returns the other player's color. Empty has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// MarshalText encodes the color as "black", "white" or "empty".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText plus "b"/"w" and "".
func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "black", "b", "B":
		*c = Black
	case "white", "w", "W":
		*c = White
	case "empty", "":
		*c = Empty
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

// Cell addresses a board intersection.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Board is a square grid of Size()+1 intersections per side.
// Cells are stored row-major, i.e. grid[row][col].
type Board struct {
	size  int
	cells []Color
}

// NewBoard creates an empty board for the configured size n (side n+1).
func NewBoard(n int) *Board {
	if n < 0 {
		n = 0
	}
	side := n + 1
	return &Board{size: n, cells: make([]Color, side*side)}
}

// Size returns N, the largest valid index on either axis.
func (b *Board) Size() int { return b.size }

// Side returns the number of intersections per side (N+1).
func (b *Board) Side() int { return b.size + 1 }

// InBounds reports whether (col, row) lies within [0, N] on both axes.
func (b *Board) InBounds(col, row int) bool {
	return col >= 0 && col <= b.size && row >= 0 && row <= b.size
}

// At returns the color at (col, row), or Empty outside the board.
func (b *Board) At(col, row int) Color {
	if !b.InBounds(col, row) {
		return Empty
	}
	return b.cells[row*b.Side()+col]
}

func (b *Board) set(col, row int, c Color) {
	b.cells[row*b.Side()+col] = c
}

// Clear empties every intersection.
func (b *Board) Clear() {
	for i := range b.cells {
		b.cells[i] = Empty
	}
}

// Count returns the number of stones on the board.
func (b *Board) Count() int {
	n := 0
	for _, c := range b.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// Full reports whether no empty intersection remains.
func (b *Board) Full() bool {
	return b.Count() == len(b.cells)
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{size: b.size, cells: make([]Color, len(b.cells))}
	copy(c.cells, b.cells)
	return c
}

// Grid returns a copy of the board as grid[row][col].
func (b *Board) Grid() [][]Color {
	side := b.Side()
	grid := make([][]Color, side)
	for row := 0; row < side; row++ {
		grid[row] = make([]Color, side)
		copy(grid[row], b.cells[row*side:(row+1)*side])
	}
	return grid
}

// BoardFromGrid builds a board from grid[row][col]. The grid must be square.
func BoardFromGrid(grid [][]Color) (*Board, error) {
	side := len(grid)
	if side == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	b := NewBoard(side - 1)
	for row, line := range grid {
		if len(line) != side {
			return nil, fmt.Errorf("row %d has %d cells, want %d", row, len(line), side)
		}
		for col, c := range line {
			if c > White {
				return nil, fmt.Errorf("invalid color %d at (%d,%d)", c, col, row)
			}
			b.set(col, row, c)
		}
	}
	return b, nil
}

// EqualBoards returns true if two boards have the same size and contents
func EqualBoards(b1, b2 *Board) bool {
	if b1.size != b2.size {
		return false
	}
	for i := range b1.cells {
		if b1.cells[i] != b2.cells[i] {
			return false
		}
	}
	return true
}

// Move is one placement in the game history.
type Move struct {
	Col   int   `json:"col"`
	Row   int   `json:"row"`
	Color Color `json:"color"`
	Seq   int   `json:"seq"` // 1-based position in the history
}

// Cell returns the intersection the move was played on.
func (m Move) Cell() Cell { return Cell{Col: m.Col, Row: m.Row} }

// Phase is the lifecycle stage of a game.
type Phase int

const (
	InProgress Phase = iota
	Won
	Draw // board filled without a winner
)

func (p Phase) String() string {
	switch p {
	case Won:
		return "won"
	case Draw:
		return "draw"
	}
	return "in_progress"
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, v := range []Phase{InProgress, Won, Draw} {
		if v.String() == string(text) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Scores counts wins per color across rounds.
type Scores struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// Of returns the score of the given color.
func (s Scores) Of(c Color) int {
	switch c {
	case Black:
		return s.Black
	case White:
		return s.White
	}
	return 0
}

func (s *Scores) add(c Color, delta int) {
	switch c {
	case Black:
		s.Black += delta
	case White:
		s.White += delta
	}
}

// GameState is the mutable game state owned by an Engine.
type GameState struct {
	CurrentPlayer Color
	History       []Move
	Scores        Scores
	Phase         Phase
	Winner        Color  // set while Phase == Won
	WinLine       []Cell // cells of the winning run while Phase == Won

	scored bool // the win was added to Scores
}

// newGameState returns the state of a fresh round.
func newGameState(scores Scores) GameState {
	return GameState{
		CurrentPlayer: Black,
		History:       make([]Move, 0, 64),
		Scores:        scores,
		Phase:         InProgress,
	}
}

// Snapshot is a read-only copy of the engine state for presentation code.
type Snapshot struct {
	BoardSize     int
	WinLength     int
	Board         *Board
	CurrentPlayer Color
	Phase         Phase
	Winner        Color
	WinLine       []Cell
	Scores        Scores
	History       []Move
	Replaying     bool
}

// LastMove returns the most recent move, if any.
func (s *Snapshot) LastMove() (Move, bool) {
	if len(s.History) == 0 {
		return Move{}, false
	}
	return s.History[len(s.History)-1], true
}

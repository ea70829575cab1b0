// Package record provides game record import/export for Gomoku games.
// Records are stored in SGF (Smart Game Format, GM[4]).
package record

import (
	"errors"
	"fmt"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// Result is the outcome of a recorded game.
type Result int

const (
	ResultNone  Result = iota // unfinished
	ResultBlack               // black won
	ResultWhite               // white won
	ResultDraw                // board filled
)

// SGF returns the RE property value, or "" for an unfinished game.
func (r Result) SGF() string {
	switch r {
	case ResultBlack:
		return "B+"
	case ResultWhite:
		return "W+"
	case ResultDraw:
		return "0"
	}
	return ""
}

func (r Result) String() string {
	switch r {
	case ResultBlack:
		return "black"
	case ResultWhite:
		return "white"
	case ResultDraw:
		return "draw"
	}
	return "none"
}

// Record is a complete Gomoku game.
type Record struct {
	BoardSize   int    // N; the board has N+1 intersections per side
	PlayerBlack string // PB
	PlayerWhite string // PW
	Date        string // DT, YYYY-MM-DD
	Event       string // EV
	Comment     string // GC
	Result      Result
	Moves       []engine.Move
}

// New creates an empty record for a board of size n.
func New(n int) *Record {
	return &Record{BoardSize: n, Moves: make([]engine.Move, 0)}
}

// FromSnapshot records the game shown by snap.
func FromSnapshot(snap *engine.Snapshot) *Record {
	r := New(snap.BoardSize)
	r.Moves = append(r.Moves, snap.History...)
	switch {
	case snap.Phase == engine.Won && snap.Winner == engine.Black:
		r.Result = ResultBlack
	case snap.Phase == engine.Won && snap.Winner == engine.White:
		r.Result = ResultWhite
	case snap.Phase == engine.Draw:
		r.Result = ResultDraw
	}
	return r
}

// AddMove appends a stone for the given color.
func (r *Record) AddMove(color engine.Color, col, row int) {
	r.Moves = append(r.Moves, engine.Move{
		Col:   col,
		Row:   row,
		Color: color,
		Seq:   len(r.Moves) + 1,
	})
}

// ErrSizeMismatch is returned by Apply when the record and engine boards differ.
var ErrSizeMismatch = errors.New("board size mismatch")

// Apply replaces e's round with the record's moves. The moves are checked
// against the game rules before e changes, so a rejected record leaves e as
// it was. Scores are not touched.
func (r *Record) Apply(e *engine.Engine) error {
	if r.BoardSize != e.BoardSize() {
		return fmt.Errorf("%w: record %d, engine %d", ErrSizeMismatch, r.BoardSize, e.BoardSize())
	}
	return e.Load(r.Moves)
}

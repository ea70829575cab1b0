package engine

import "errors"

// Reasons a move, undo or replay request is rejected. Rejections are no-ops:
// the engine state is unchanged.
var (
	ErrOutOfBounds      = errors.New("cell out of bounds")
	ErrOccupied         = errors.New("cell occupied")
	ErrGameOver         = errors.New("game over")
	ErrEmptyHistory     = errors.New("no move to undo")
	ErrBusy             = errors.New("engine busy replaying")
	ErrReplayInProgress = errors.New("replay already in progress")
)

// MoveResult reports the outcome of AttemptMove.
type MoveResult struct {
	Accepted bool
	Won      bool
	Draw     bool
	Winner   Color  // set when Won
	Move     Move   // the placed stone when Accepted
	Line     []Cell // winning run when Won
	Reason   error  // why the move was rejected
}

// UndoResult reports the outcome of Undo.
type UndoResult struct {
	Accepted bool
	Move     Move  // the removed stone when Accepted
	Reason   error // why the undo was rejected
}

// AttemptMove places the current player's stone at (col, row).
//
// The move is rejected with a reason, leaving all state untouched, while a
// replay runs, once the round is over, outside [0, N] or on an occupied cell.
// A winning move ends the round and scores a point for the mover, who stays
// the current player; any other move passes the turn.
func (e *Engine) AttemptMove(col, row int) MoveResult {
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	res, events := e.attemptMoveLocked(col, row)
	sinks := e.sinksLocked()
	e.mu.Unlock()

	deliver(sinks, events)
	return res
}

func (e *Engine) attemptMoveLocked(col, row int) (MoveResult, []Event) {
	switch {
	case e.replay != nil:
		return MoveResult{Reason: ErrBusy}, nil
	case e.state.Phase != InProgress:
		return MoveResult{Reason: ErrGameOver}, nil
	case !e.board.InBounds(col, row):
		return MoveResult{Reason: ErrOutOfBounds}, nil
	case e.board.At(col, row) != Empty:
		return MoveResult{Reason: ErrOccupied}, nil
	}

	color := e.state.CurrentPlayer
	m := Move{Col: col, Row: row, Color: color, Seq: len(e.state.History) + 1}
	e.board.set(col, row, color)
	e.state.History = append(e.state.History, m)

	res := MoveResult{Accepted: true, Move: m}
	events := []Event{{Type: EventStone, Col: col, Row: row, Color: color, Seq: m.Seq}}

	if won, line := CheckWin(e.board, col, row, e.opts.WinLength); won {
		e.state.Phase = Won
		e.state.Winner = color
		e.state.WinLine = line
		e.state.Scores.add(color, 1)
		e.state.scored = true
		scores := e.state.Scores

		res.Won, res.Winner, res.Line = true, color, line
		events = append(events,
			Event{Type: EventTurn, Player: color},
			Event{Type: EventWin, Winner: color, Line: line, Scores: &scores},
			Event{Type: EventScores, Scores: &scores},
		)
		e.log.Printf("%s wins with %d stones at %d,%d (move %d)", color, len(line), col, row, m.Seq)
		return res, events
	}

	if e.board.Full() {
		e.state.Phase = Draw
		res.Draw = true
		events = append(events,
			Event{Type: EventTurn, Player: color},
			Event{Type: EventDraw},
		)
		return res, events
	}

	e.state.CurrentPlayer = color.Opponent()
	events = append(events, Event{Type: EventTurn, Player: e.state.CurrentPlayer})
	return res, events
}

// Undo removes the most recent stone and gives the turn back to the player
// who placed it. Undoing a winning move reopens the round and withdraws the
// point it scored.
func (e *Engine) Undo() UndoResult {
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	res, events := e.undoLocked()
	sinks := e.sinksLocked()
	e.mu.Unlock()

	deliver(sinks, events)
	return res
}

func (e *Engine) undoLocked() (UndoResult, []Event) {
	if e.replay != nil {
		return UndoResult{Reason: ErrBusy}, nil
	}
	n := len(e.state.History)
	if n == 0 {
		return UndoResult{Reason: ErrEmptyHistory}, nil
	}

	m := e.state.History[n-1]
	e.state.History = e.state.History[:n-1]
	e.board.set(m.Col, m.Row, Empty)

	events := []Event{{Type: EventUndo, Col: m.Col, Row: m.Row, Color: m.Color, Seq: m.Seq}}
	if e.state.Phase == Won && e.state.scored {
		e.state.Scores.add(e.state.Winner, -1)
		scores := e.state.Scores
		events = append(events, Event{Type: EventScores, Scores: &scores})
	}
	e.state.Phase = InProgress
	e.state.scored = false
	e.state.Winner = Empty
	e.state.WinLine = nil
	e.state.CurrentPlayer = m.Color
	events = append(events, Event{Type: EventTurn, Player: m.Color})

	return UndoResult{Accepted: true, Move: m}, events
}

// ReasonCode returns a stable identifier for a rejection reason, for use in
// wire protocols. It returns "" for nil and "error" for unknown errors.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrOccupied):
		return "occupied"
	case errors.Is(err, ErrGameOver):
		return "game_over"
	case errors.Is(err, ErrEmptyHistory):
		return "empty_history"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrReplayInProgress):
		return "replay_in_progress"
	}
	return "error"
}

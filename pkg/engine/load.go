package engine

import "fmt"

// Load replaces the current round with moves, played in order under the
// normal rules. Every move is checked before the engine changes, and the new
// board and state are swapped in together, so a rejected load leaves the
// game as it was. Scores are kept: a loaded win ends the round but does not
// score, and undoing it withdraws nothing.
//
// Load returns ErrBusy while a replay runs. Subscribers receive a single
// load event.
func (e *Engine) Load(moves []Move) error {
	opts := e.opts
	opts.Logger = nil
	scratch, err := NewEngine(opts)
	if err != nil {
		return err
	}
	for i, m := range moves {
		if want := scratch.state.CurrentPlayer; m.Color != want {
			return fmt.Errorf("move %d: %s to play, got %s", i+1, want, m.Color)
		}
		if res, _ := scratch.attemptMoveLocked(m.Col, m.Row); !res.Accepted {
			return fmt.Errorf("move %d at %d,%d: %w", i+1, m.Col, m.Row, res.Reason)
		}
	}

	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	if e.replay != nil {
		e.mu.Unlock()
		return ErrBusy
	}
	state := scratch.state
	state.Scores = e.state.Scores
	state.scored = false
	e.board = scratch.board
	e.state = state

	scores := state.Scores
	ev := Event{
		Type:   EventLoad,
		Total:  len(state.History),
		Player: state.CurrentPlayer,
		Winner: state.Winner,
		Line:   state.WinLine,
		Scores: &scores,
	}
	sinks := e.sinksLocked()
	e.mu.Unlock()

	e.log.Printf("loaded %d moves (%s)", len(moves), state.Phase)
	deliver(sinks, []Event{ev})
	return nil
}

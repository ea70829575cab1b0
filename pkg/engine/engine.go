package engine

import (
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"sync"
)

const (
	// DefaultBoardSize is N for a 15x15 board.
	DefaultBoardSize = 14
	// MaxBoardSize keeps coordinates within single letters a..z.
	MaxBoardSize = 25
)

// Engine owns one game: its board, turn state, history and scores.
// All methods are safe for concurrent use.
type Engine struct {
	opts Options
	log  *log.Logger

	// mutateMu serializes mutations together with the delivery of the events
	// they produce, so sinks observe events in mutation order.
	mutateMu sync.Mutex

	// mu guards the fields below.
	mu      sync.Mutex
	board   *Board
	state   GameState
	replay  *ReplayTask
	sinks   map[int]Sink
	nextSub int
}

// Options configures an Engine.
type Options struct {
	BoardSize int         // N; the board has N+1 intersections per side (0 = default 14)
	WinLength int         // Stones in a row needed to win (0 = default 5)
	Logger    *log.Logger // Optional; nil disables engine logging
}

// DefaultOptions returns the standard 15x15 five-in-a-row setup.
func DefaultOptions() Options {
	return Options{
		BoardSize: DefaultBoardSize,
		WinLength: DefaultWinLength,
	}
}

// NewEngine creates an engine with an empty board, Black to move.
func NewEngine(opts Options) (*Engine, error) {
	if opts.BoardSize == 0 {
		opts.BoardSize = DefaultBoardSize
	}
	if opts.WinLength == 0 {
		opts.WinLength = DefaultWinLength
	}
	if opts.BoardSize < 1 || opts.BoardSize > MaxBoardSize {
		return nil, fmt.Errorf("board size %d out of range [1, %d]", opts.BoardSize, MaxBoardSize)
	}
	if opts.WinLength < 2 || opts.WinLength > opts.BoardSize+1 {
		return nil, fmt.Errorf("win length %d out of range [2, %d]", opts.WinLength, opts.BoardSize+1)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		opts:  opts,
		log:   logger,
		board: NewBoard(opts.BoardSize),
		state: newGameState(Scores{}),
		sinks: make(map[int]Sink),
	}, nil
}

// BoardSize returns N.
func (e *Engine) BoardSize() int { return e.opts.BoardSize }

// WinLength returns the configured winning run length.
func (e *Engine) WinLength() int { return e.opts.WinLength }

// CurrentPlayer returns the color to move (the winner once the round is won).
func (e *Engine) CurrentPlayer() Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentPlayer
}

// Phase returns the current game phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Phase
}

// Scores returns the cumulative scores.
func (e *Engine) Scores() Scores {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Scores
}

// Replaying reports whether a replay currently holds the engine.
func (e *Engine) Replaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replay != nil
}

// Snapshot returns a deep copy of the game for rendering.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	history := make([]Move, len(e.state.History))
	copy(history, e.state.History)
	var line []Cell
	if e.state.WinLine != nil {
		line = make([]Cell, len(e.state.WinLine))
		copy(line, e.state.WinLine)
	}

	return &Snapshot{
		BoardSize:     e.opts.BoardSize,
		WinLength:     e.opts.WinLength,
		Board:         e.board.Clone(),
		CurrentPlayer: e.state.CurrentPlayer,
		Phase:         e.state.Phase,
		Winner:        e.state.Winner,
		WinLine:       line,
		Scores:        e.state.Scores,
		History:       history,
		Replaying:     e.replay != nil,
	}
}

// Subscribe registers a sink for engine events and returns a function that
// removes it. After the returned function completes the sink is not called
// again. It must not be called from inside a sink.
func (e *Engine) Subscribe(s Sink) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.sinks[id] = s
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mutateMu.Lock()
			defer e.mutateMu.Unlock()
			e.mu.Lock()
			delete(e.sinks, id)
			e.mu.Unlock()
		})
	}
}

// Reset clears the board and history for a new round. Scores are kept.
// A running replay is cancelled first; it stops after its current step.
func (e *Engine) Reset() {
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	var (
		replay      *ReplayTask
		replayDone  []Event
		replaySinks []Sink
	)
	if t := e.replay; t != nil {
		replay = t
		replaySinks = t.sinksLocked()
		replayDone = []Event{e.finishReplayLocked(t, ErrReplayCancelled)}
	}
	e.board.Clear()
	e.state = newGameState(e.state.Scores)
	scores := e.state.Scores
	e.log.Printf("reset (black %d, white %d)", scores.Black, scores.White)
	sinks := e.sinksLocked()
	e.mu.Unlock()

	deliver(replaySinks, replayDone)
	if replay != nil {
		close(replay.done)
	}
	deliver(sinks, []Event{
		{Type: EventReset, Scores: &scores},
		{Type: EventTurn, Player: Black},
	})
}

// ClearScores sets both scores back to zero.
func (e *Engine) ClearScores() {
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	e.state.Scores = Scores{}
	scores := e.state.Scores
	sinks := e.sinksLocked()
	e.mu.Unlock()

	deliver(sinks, []Event{{Type: EventScores, Scores: &scores}})
}

// sinksLocked returns the registered sinks in subscription order.
func (e *Engine) sinksLocked() []Sink {
	if len(e.sinks) == 0 {
		return nil
	}
	out := make([]Sink, 0, len(e.sinks))
	for _, id := range slices.Sorted(maps.Keys(e.sinks)) {
		out = append(out, e.sinks[id])
	}
	return out
}

// deliver sends events to sinks in order. Callers hold mutateMu but not mu.
func deliver(sinks []Sink, events []Event) {
	for _, ev := range events {
		for _, s := range sinks {
			s.Notify(ev)
		}
	}
}

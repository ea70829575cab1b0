package engine

import (
	"context"
	"errors"
	"iter"
	"time"
)

// DefaultReplayDelay is the pause between replayed stones.
const DefaultReplayDelay = 500 * time.Millisecond

// ErrReplayCancelled is returned by ReplayTask.Wait when the replay was
// cancelled through Cancel or Reset.
var ErrReplayCancelled = errors.New("replay cancelled")

// Replay is a copy of the move history taken when Replay was called.
type Replay struct {
	moves []Move
}

// Replay captures the current history. Later moves do not affect it.
func (e *Engine) Replay() Replay {
	e.mu.Lock()
	defer e.mu.Unlock()
	moves := make([]Move, len(e.state.History))
	copy(moves, e.state.History)
	return Replay{moves: moves}
}

// Len returns the number of moves in the replay.
func (r Replay) Len() int { return len(r.moves) }

// All yields the moves in history order. The sequence is lazy and can be
// iterated any number of times.
func (r Replay) All() iter.Seq[Move] {
	return func(yield func(Move) bool) {
		for _, m := range r.moves {
			if !yield(m) {
				return
			}
		}
	}
}

// ReplayTask is a running replay started with StartReplay.
type ReplayTask struct {
	e      *Engine
	moves  []Move
	delay  time.Duration
	sink   Sink
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// guarded by e.mu
	steps    int
	finished bool
	err      error
}

// StartReplay replays the current history to the subscribed sinks (and to
// sink, when non-nil), one stone every delay. Until the task ends the engine
// rejects moves and undo with ErrBusy. Replay never changes the board, the
// turn or the scores.
//
// It returns ErrReplayInProgress if another replay is running. The task
// stops when ctx is cancelled, on Cancel, or on Reset; cancellation only
// takes effect between steps.
func (e *Engine) StartReplay(ctx context.Context, delay time.Duration, sink Sink) (*ReplayTask, error) {
	if delay < 0 {
		delay = 0
	}

	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	if e.replay != nil {
		e.mu.Unlock()
		return nil, ErrReplayInProgress
	}
	moves := make([]Move, len(e.state.History))
	copy(moves, e.state.History)

	tctx, cancel := context.WithCancel(ctx)
	t := &ReplayTask{
		e:      e,
		moves:  moves,
		delay:  delay,
		sink:   sink,
		ctx:    tctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	e.replay = t
	sinks := t.sinksLocked()
	e.mu.Unlock()

	e.log.Printf("replay started: %d moves, %v apart", len(moves), delay)
	deliver(sinks, []Event{{Type: EventReplayStart, Total: len(moves)}})

	go t.run()
	return t, nil
}

// CancelReplay cancels the running replay, if any, and reports whether one
// was running. The replay ends asynchronously after its current step.
func (e *Engine) CancelReplay() bool {
	e.mu.Lock()
	t := e.replay
	e.mu.Unlock()
	if t == nil {
		return false
	}
	t.Cancel()
	return true
}

// Cancel stops the replay after the step in progress, if any.
func (t *ReplayTask) Cancel() {
	t.cancel()
}

// Done is closed when the replay has ended and its replay_done event has
// been delivered.
func (t *ReplayTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the replay ends. It returns nil when every stone was
// replayed, ErrReplayCancelled after Cancel or Reset, or the context's error.
func (t *ReplayTask) Wait() error {
	<-t.done
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	return t.err
}

// Steps returns how many stones have been replayed so far.
func (t *ReplayTask) Steps() int {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	return t.steps
}

// Total returns the number of stones the replay will show.
func (t *ReplayTask) Total() int {
	return len(t.moves)
}

func (t *ReplayTask) run() {
	defer t.cancel()

	timer := time.NewTimer(t.delay)
	defer timer.Stop()

	for i, m := range t.moves {
		if i > 0 {
			timer.Reset(t.delay)
			select {
			case <-timer.C:
			case <-t.ctx.Done():
				t.stop()
				return
			}
		}
		if !t.step(i, m) {
			return
		}
	}
	t.stop()
}

// step emits one replayed stone. It reports false once the task has ended.
func (t *ReplayTask) step(i int, m Move) bool {
	e := t.e
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	if t.finished {
		e.mu.Unlock()
		return false
	}
	if t.ctx.Err() != nil {
		done := e.finishReplayLocked(t, t.cause())
		sinks := t.sinksLocked()
		e.mu.Unlock()
		deliver(sinks, []Event{done})
		close(t.done)
		return false
	}
	t.steps = i + 1
	sinks := t.sinksLocked()
	e.mu.Unlock()

	deliver(sinks, []Event{{
		Type:  EventReplayStep,
		Col:   m.Col,
		Row:   m.Row,
		Color: m.Color,
		Seq:   m.Seq,
		Total: len(t.moves),
	}})
	return true
}

// stop ends the task after the last step or on cancellation.
func (t *ReplayTask) stop() {
	e := t.e
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()

	e.mu.Lock()
	if t.finished {
		e.mu.Unlock()
		return
	}
	var err error
	if t.ctx.Err() != nil {
		err = t.cause()
	}
	done := e.finishReplayLocked(t, err)
	sinks := t.sinksLocked()
	e.mu.Unlock()

	deliver(sinks, []Event{done})
	close(t.done)
}

// cause maps the end of the task context to the error reported by Wait.
func (t *ReplayTask) cause() error {
	if err := context.Cause(t.ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ErrReplayCancelled
}

// sinksLocked returns the engine sinks plus the task's own sink.
func (t *ReplayTask) sinksLocked() []Sink {
	sinks := t.e.sinksLocked()
	if t.sink != nil {
		sinks = append(sinks, t.sink)
	}
	return sinks
}

// finishReplayLocked marks t as ended, releases the engine and returns the
// replay_done event. Callers hold e.mu and close t.done once the event has
// been delivered.
func (e *Engine) finishReplayLocked(t *ReplayTask, err error) Event {
	t.finished = true
	t.err = err
	if e.replay == t {
		e.replay = nil
	}
	t.cancel()

	if err != nil {
		e.log.Printf("replay stopped after %d/%d moves: %v", t.steps, len(t.moves), err)
	}
	return Event{
		Type:      EventReplayDone,
		Seq:       t.steps,
		Total:     len(t.moves),
		Cancelled: err != nil,
	}
}
